// Package script emits Azure Data Factory Data Flow Script lines and the
// dataflow, pipeline, and migration report envelope documents.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/disambiguate"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/expression"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/graph"
)

// Generator emits script lines and envelope documents for translated
// mappings. DatasetMapping carries production-validated dataset names; names
// not present fall back to prefix-derived defaults.
type Generator struct {
	DatasetMapping map[string]string
}

// NewGenerator builds a generator with an optional dataset name mapping.
func NewGenerator(datasetMapping map[string]string) *Generator {
	return &Generator{DatasetMapping: datasetMapping}
}

// SourceScript emits the declaration block for one source.
//
//	source(output(
//			col as string,
//			col2 as integer
//		),
//		allowSchemaDrift: true,
//		validateSchema: false,
//		ignoreNoFilesFound: false) ~> SourceName
func (g *Generator) SourceScript(src domain.Source) []string {
	lines := []string{"source(output("}
	for i, f := range src.Fields {
		sep := ","
		if i == len(src.Fields)-1 {
			sep = ""
		}
		lines = append(lines, fmt.Sprintf("\t\t%s as %s%s", f.Name, adfFieldType(f.Datatype), sep))
	}
	lines = append(lines,
		"\t),",
		"\tallowSchemaDrift: true,",
		"\tvalidateSchema: false,",
		fmt.Sprintf("\tignoreNoFilesFound: false) ~> %s", src.Name),
	)
	return lines
}

// SinkScript emits the sink block, fed by the last step in execution order.
func (g *Generator) SinkScript(sink domain.Target, previous string) []string {
	return []string{
		fmt.Sprintf("%s sink(", previous),
		"\tallowSchemaDrift: true,",
		"\tvalidateSchema: false,",
		"\tskipDuplicateMapInputs: true,",
		fmt.Sprintf("\tskipDuplicateMapOutputs: true) ~> %s", sink.Name),
	}
}

// NodeScript emits the script block for one transformation node. previous is
// the preceding step in execution order; active holds the disambiguation
// maps of every lookup already emitted.
func (g *Generator) NodeScript(node *domain.Node, previous string, active []domain.DisambiguationMap, diags *domain.Diagnostics) []string {
	switch node.Type {
	case domain.NodeDerivedColumn:
		return g.derivedColumnScript(node, previous, active, diags)
	case domain.NodeFilter:
		return g.filterScript(node, previous, active, diags)
	case domain.NodeAggregate:
		return g.aggregateScript(node, previous, active, diags)
	case domain.NodeJoin:
		return g.joinScript(node, diags)
	case domain.NodeSort:
		return g.sortScript(node, previous)
	case domain.NodeConditionalSplit:
		return g.conditionalSplitScript(node, previous, active, diags)
	case domain.NodeLookup:
		return g.lookupScript(node, previous)
	case domain.NodeAlterRow:
		return g.alterRowScript(node, previous, active)
	default:
		diags.Warnf(domain.DiagUnsupportedConstruct, node.Name,
			"no script emitter for kind %q", node.Type)
		return []string{fmt.Sprintf("%s ~> %s", previous, node.Name)}
	}
}

func (g *Generator) derivedColumnScript(node *domain.Node, previous string, active []domain.DisambiguationMap, diags *domain.Diagnostics) []string {
	lines := []string{fmt.Sprintf("%s derive(", previous)}

	// A column whose expression is exactly its own name is a redundant
	// passthrough; the target declares nothing for it.
	var columns []domain.DerivedColumn
	for _, col := range node.DerivedColumn.Columns {
		if strings.TrimSpace(col.Expression) == col.Name {
			continue
		}
		columns = append(columns, col)
	}

	for i, col := range columns {
		expr := disambiguate.Rewrite(col.Expression, active...)
		g.checkExpression(node.Name, col.Name, expr, diags)

		sep := ","
		if i == len(columns)-1 {
			sep = ""
		}
		lines = append(lines, fmt.Sprintf("\t\t%s = %s%s", col.Name, expr, sep))
	}

	lines = append(lines, fmt.Sprintf("\t) ~> %s", node.Name))
	return lines
}

func (g *Generator) filterScript(node *domain.Node, previous string, active []domain.DisambiguationMap, diags *domain.Diagnostics) []string {
	condition := node.Filter.Condition
	if condition == "" {
		condition = "true()"
	}
	condition = disambiguate.Rewrite(condition, active...)
	g.checkExpression(node.Name, "", condition, diags)

	return []string{
		fmt.Sprintf("%s filter(", previous),
		fmt.Sprintf("\t%s", condition),
		fmt.Sprintf(") ~> %s", node.Name),
	}
}

func (g *Generator) aggregateScript(node *domain.Node, previous string, active []domain.DisambiguationMap, diags *domain.Diagnostics) []string {
	cfg := node.Aggregate

	var lines []string
	if len(cfg.GroupBy) > 0 {
		groupBy := make([]string, len(cfg.GroupBy))
		for i, col := range cfg.GroupBy {
			groupBy[i] = disambiguate.Rewrite(col, active...)
		}
		lines = append(lines, fmt.Sprintf("%s aggregate(groupBy(%s),", previous, strings.Join(groupBy, ", ")))
	} else {
		lines = append(lines, fmt.Sprintf("%s aggregate(", previous))
	}

	if len(cfg.Aggregates) == 0 {
		lines[len(lines)-1] = strings.TrimSuffix(lines[len(lines)-1], ",")
		lines = append(lines, fmt.Sprintf("     ) ~> %s", node.Name))
		return lines
	}

	for i, agg := range cfg.Aggregates {
		expr := disambiguate.Rewrite(agg.Expression, active...)
		g.checkExpression(node.Name, agg.Name, expr, diags)
		expr = lowercaseAggregateFunctions(expr)

		// The target grammar rejects a bare column assignment inside
		// aggregate(); passthroughs become first(column).
		if strings.TrimSpace(expr) == agg.Name {
			expr = fmt.Sprintf("first(%s)", expr)
		}

		if i == len(cfg.Aggregates)-1 {
			lines = append(lines, fmt.Sprintf("     %s = %s) ~> %s", agg.Name, expr, node.Name))
		} else {
			lines = append(lines, fmt.Sprintf("     %s = %s,", agg.Name, expr))
		}
	}
	return lines
}

func (g *Generator) joinScript(node *domain.Node, diags *domain.Diagnostics) []string {
	cfg := node.Join

	// Inputs come exclusively from the resolver; unresolved sides get visible
	// placeholders so the defect is obvious in the emitted script.
	left := node.Inputs.Left
	right := node.Inputs.Right
	if left == "" {
		left = graph.MissingLeftInput
	}
	if right == "" {
		right = graph.MissingRightInput
	}
	if left == right {
		diags.Warnf(domain.DiagInconsistentResolution, node.Name,
			"both join sides read from %q, possible unintended self-join", left)
	}

	var lines []string
	if len(cfg.Conditions) > 0 {
		first := cfg.Conditions[0]
		lines = append(lines, fmt.Sprintf("%s, %s join(%s@%s == %s@%s,",
			left, right, left, first.LeftColumn, right, first.RightColumn))
		for _, cond := range cfg.Conditions[1:] {
			lines = append(lines, fmt.Sprintf("     %s@%s == %s@%s,",
				left, cond.LeftColumn, right, cond.RightColumn))
		}
	} else {
		lines = append(lines, fmt.Sprintf("%s, %s join(", left, right))
	}

	lines = append(lines,
		fmt.Sprintf("     joinType:'%s',", cfg.JoinType),
		fmt.Sprintf("     broadcast: 'auto')~> %s", node.Name),
	)
	return lines
}

func (g *Generator) sortScript(node *domain.Node, previous string) []string {
	lines := []string{fmt.Sprintf("%s sort(", previous)}
	for i, key := range node.Sort.OrderBy {
		sep := ","
		if i == len(node.Sort.OrderBy)-1 {
			sep = ""
		}
		lines = append(lines, fmt.Sprintf("\t%s(%s, true)%s", key.Order, key.Name, sep))
	}
	lines = append(lines, fmt.Sprintf(") ~> %s", node.Name))
	return lines
}

func (g *Generator) conditionalSplitScript(node *domain.Node, previous string, active []domain.DisambiguationMap, diags *domain.Diagnostics) []string {
	cfg := node.ConditionalSplit

	var lines []string
	var streams []string
	if len(cfg.Conditions) > 0 {
		first := cfg.Conditions[0]
		streams = append(streams, first.Name)
		expr := disambiguate.Rewrite(first.Expression, active...)
		g.checkExpression(node.Name, first.Name, expr, diags)
		lines = append(lines, fmt.Sprintf("%s split(%s,", previous, expr))

		for _, cond := range cfg.Conditions[1:] {
			streams = append(streams, cond.Name)
			expr := disambiguate.Rewrite(cond.Expression, active...)
			g.checkExpression(node.Name, cond.Name, expr, diags)
			lines = append(lines, fmt.Sprintf("     %s,", expr))
		}
	} else {
		lines = append(lines, fmt.Sprintf("%s split(", previous))
	}

	defaultStream := cfg.DefaultStream
	if defaultStream == "" {
		defaultStream = "default"
	}
	if len(streams) > 0 {
		lines = append(lines, fmt.Sprintf("     disjoint: false) ~> %s@(%s, %s)",
			node.Name, strings.Join(streams, ", "), defaultStream))
	} else {
		lines = append(lines, fmt.Sprintf("     disjoint: false) ~> %s@(%s)", node.Name, defaultStream))
	}
	return lines
}

func (g *Generator) lookupScript(node *domain.Node, previous string) []string {
	cfg := node.Lookup

	main := node.Inputs.Main
	if main == "" {
		main = previous
	}
	side := cfg.Dataset
	if side == "" {
		side = "UnknownLookupSource"
	}

	var lines []string
	if len(cfg.Conditions) > 0 {
		// The source convention is lookupColumn = mainColumn; the target wants
		// main@col == lookup@col, so operands invert. Numeric collision
		// suffixes apply to output names only and are stripped from condition
		// column identifiers.
		first := cfg.Conditions[0]
		lines = append(lines, fmt.Sprintf("%s, %s lookup(%s@%s == %s@%s,",
			main, side,
			main, stripNumericSuffix(first.RightColumn),
			side, stripNumericSuffix(first.LeftColumn)))
		for _, cond := range cfg.Conditions[1:] {
			lines = append(lines, fmt.Sprintf("     %s@%s == %s@%s,",
				main, stripNumericSuffix(cond.RightColumn),
				side, stripNumericSuffix(cond.LeftColumn)))
		}
	} else {
		lines = append(lines, fmt.Sprintf("%s, %s lookup(", main, side))
	}

	lines = append(lines,
		"     multiple: false,",
		fmt.Sprintf("     pickup: 'any')~> %s", node.Name),
	)
	return lines
}

func (g *Generator) alterRowScript(node *domain.Node, previous string, active []domain.DisambiguationMap) []string {
	cfg := node.AlterRow
	condition := cfg.Condition
	if condition == "" {
		condition = "true()"
	}
	condition = disambiguate.Rewrite(condition, active...)
	return []string{
		fmt.Sprintf("%s alterRow(%sIf(%s)) ~> %s", previous, cfg.Action, condition, node.Name),
	}
}

func (g *Generator) checkExpression(nodeName, column, expr string, diags *domain.Diagnostics) {
	errs := expression.Validate(expr)
	for _, msg := range errs {
		if column != "" {
			diags.Warnf(domain.DiagUntranslatedConstruct, nodeName, "column %q: %s", column, msg)
		} else {
			diags.Warnf(domain.DiagUntranslatedConstruct, nodeName, "%s", msg)
		}
	}
}

var aggregateFunctionRe = regexp.MustCompile(`(?i)\b(SUM|AVG|COUNT|MIN|MAX|FIRST|LAST|STDDEV|VARIANCE|MEDIAN|PERCENTILE|COUNT_DISTINCT|COLLECT_LIST|COLLECT_SET)\b`)

// lowercaseAggregateFunctions lowers aggregate function names only; column
// name case is preserved.
func lowercaseAggregateFunctions(expr string) string {
	return aggregateFunctionRe.ReplaceAllStringFunc(expr, strings.ToLower)
}

var trailingDigitsRe = regexp.MustCompile(`^(.+?)\d+$`)

// stripNumericSuffix removes a trailing collision suffix: PROMO_ID2 becomes
// PROMO_ID.
func stripNumericSuffix(col string) string {
	if m := trailingDigitsRe.FindStringSubmatch(col); m != nil {
		return m[1]
	}
	return col
}
