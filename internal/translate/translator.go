// Package translate converts parsed PowerCenter mappings into Data Flow
// nodes, resolves the flow graph and produces the emission-ready Flow.
package translate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/expression"
)

// joinTypes maps PowerCenter joiner types to Data Flow joinType tokens.
var joinTypes = map[string]string{
	"Normal":            "inner",
	"Normal Join":       "inner",
	"Master Outer Join": "left",
	"Master Outer":      "left",
	"Detail Outer Join": "right",
	"Detail Outer":      "right",
	"Full Outer Join":   "outer",
	"Full Outer":        "outer",
}

// alterRowActions maps update strategy constants (and their numeric codes) to
// alterRow actions.
var alterRowActions = map[string]domain.AlterRowAction{
	"DD_INSERT": domain.AlterRowInsert,
	"0":         domain.AlterRowInsert,
	"DD_UPDATE": domain.AlterRowUpdate,
	"1":         domain.AlterRowUpdate,
	"DD_DELETE": domain.AlterRowDelete,
	"2":         domain.AlterRowDelete,
	"DD_REJECT": domain.AlterRowDelete,
}

var conditionSplitRe = regexp.MustCompile(`(?i)\s+AND\s+`)

// TranslateNode converts one raw transformation into a Data Flow node.
// Source Qualifiers dissolve into the graph and return nil; unknown kinds
// return nil with an UnsupportedConstruct warning.
func TranslateNode(t *domain.Transformation, diags *domain.Diagnostics) *domain.Node {
	node := &domain.Node{Name: t.Name, Description: t.Description}

	switch t.Type {
	case "Source Qualifier":
		// Dissolved by stream resolution; sources feed consumers directly.
		return nil
	case "Expression":
		node.Type = domain.NodeDerivedColumn
		node.DerivedColumn = translateExpression(t, diags)
	case "Filter":
		node.Type = domain.NodeFilter
		node.Filter = translateFilter(t, diags)
	case "Aggregator":
		node.Type = domain.NodeAggregate
		node.Aggregate = translateAggregator(t, diags)
	case "Joiner":
		node.Type = domain.NodeJoin
		node.Join = translateJoiner(t, diags)
	case "Sorter":
		node.Type = domain.NodeSort
		node.Sort = translateSorter(t)
	case "Router":
		node.Type = domain.NodeConditionalSplit
		node.ConditionalSplit = translateRouter(t, diags)
	case "Lookup", "Lookup Procedure":
		node.Type = domain.NodeLookup
		node.Lookup = translateLookup(t, diags)
	case "Update Strategy":
		node.Type = domain.NodeAlterRow
		node.AlterRow = translateUpdateStrategy(t, diags)
	default:
		diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
			"transformation kind %q has no Data Flow equivalent, skipped", t.Type)
		return nil
	}
	return node
}

// translateColumn runs one expression through the dialect translator. An
// untranslatable construct drops the column with an error diagnostic; the
// rest of the node still emits.
func translateColumn(nodeName, column, expr string, diags *domain.Diagnostics) (string, bool) {
	out, err := expression.Translate(expr)
	if err != nil {
		var uc *expression.UntranslatedConstructError
		if errors.As(err, &uc) {
			diags.Errorf(domain.DiagUntranslatedConstruct, nodeName,
				"column %q: construct %q could not be translated", column, uc.Token)
		} else {
			diags.Errorf(domain.DiagUntranslatedConstruct, nodeName,
				"column %q: %v", column, err)
		}
		return "", false
	}
	return out, true
}

func translateExpression(t *domain.Transformation, diags *domain.Diagnostics) *domain.DerivedColumnConfig {
	cfg := &domain.DerivedColumnConfig{}
	for _, f := range t.Fields {
		if f.Expression == "" {
			continue
		}
		expr, ok := translateColumn(t.Name, f.Name, f.Expression, diags)
		if !ok {
			continue
		}
		cfg.Columns = append(cfg.Columns, domain.DerivedColumn{Name: f.Name, Expression: expr})
	}
	return cfg
}

func translateFilter(t *domain.Transformation, diags *domain.Diagnostics) *domain.FilterConfig {
	cfg := &domain.FilterConfig{}
	if t.Filter == nil || t.Filter.Condition == "" {
		return cfg
	}
	if cond, ok := translateColumn(t.Name, "", t.Filter.Condition, diags); ok {
		cfg.Condition = cond
	}
	return cfg
}

func translateAggregator(t *domain.Transformation, diags *domain.Diagnostics) *domain.AggregateConfig {
	cfg := &domain.AggregateConfig{}
	if t.Aggregator == nil {
		return cfg
	}
	if t.Aggregator.SortedInput {
		diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
			"sorted input hint has no Data Flow equivalent and is ignored")
	}
	cfg.GroupBy = append(cfg.GroupBy, t.Aggregator.GroupByFields...)
	for _, agg := range t.Aggregator.AggregateExpressions {
		expr, ok := translateColumn(t.Name, agg.Name, agg.Expression, diags)
		if !ok {
			continue
		}
		cfg.Aggregates = append(cfg.Aggregates, domain.AggregateColumn{Name: agg.Name, Expression: expr})
	}
	return cfg
}

func translateJoiner(t *domain.Transformation, diags *domain.Diagnostics) *domain.JoinConfig {
	cfg := &domain.JoinConfig{JoinType: "inner"}
	if t.Joiner == nil {
		return cfg
	}
	if t.Joiner.SortedInput {
		diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
			"sorted input hint has no Data Flow equivalent and is ignored")
	}
	if jt, ok := joinTypes[t.Joiner.JoinType]; ok {
		cfg.JoinType = jt
	} else if t.Joiner.JoinType != "" {
		diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
			"join type %q is unknown, using inner", t.Joiner.JoinType)
	}
	cfg.Conditions = parseConditionPairs(t.Name, t.Joiner.JoinCondition, diags)
	return cfg
}

// parseConditionPairs splits a condition of the form "A = B AND C = D" into
// column pairs. Anything that is not a plain equality conjunction is skipped
// with a warning.
func parseConditionPairs(nodeName, condition string, diags *domain.Diagnostics) []domain.JoinCondition {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil
	}

	var pairs []domain.JoinCondition
	for _, clause := range conditionSplitRe.Split(condition, -1) {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			diags.Warnf(domain.DiagUnsupportedConstruct, nodeName,
				"condition clause %q is not an equality, skipped", strings.TrimSpace(clause))
			continue
		}
		left := strings.TrimSpace(parts[0])
		right := strings.TrimSpace(parts[1])
		if left == "" || right == "" {
			diags.Warnf(domain.DiagUnsupportedConstruct, nodeName,
				"condition clause %q is malformed, skipped", strings.TrimSpace(clause))
			continue
		}
		pairs = append(pairs, domain.JoinCondition{LeftColumn: left, RightColumn: right})
	}
	return pairs
}

func translateSorter(t *domain.Transformation) *domain.SortConfig {
	cfg := &domain.SortConfig{}
	if t.Sorter == nil {
		return cfg
	}
	cfg.Distinct = t.Sorter.Distinct
	for _, key := range t.Sorter.SortKeys {
		order := "asc"
		if strings.EqualFold(key.Direction, "DESCENDING") {
			order = "desc"
		}
		cfg.OrderBy = append(cfg.OrderBy, domain.OrderByColumn{Name: key.Name, Order: order})
	}
	return cfg
}

func translateRouter(t *domain.Transformation, diags *domain.Diagnostics) *domain.ConditionalSplitConfig {
	cfg := &domain.ConditionalSplitConfig{}
	if t.Router == nil {
		return cfg
	}
	cfg.DefaultStream = t.Router.DefaultGroup
	for _, group := range t.Router.Groups {
		if strings.EqualFold(group.Type, "DEFAULT") || group.Expression == "" {
			if cfg.DefaultStream == "" {
				cfg.DefaultStream = group.Name
			}
			continue
		}
		expr, ok := translateColumn(t.Name, group.Name, group.Expression, diags)
		if !ok {
			continue
		}
		cfg.Conditions = append(cfg.Conditions, domain.SplitCondition{Name: group.Name, Expression: expr})
	}
	return cfg
}

func translateLookup(t *domain.Transformation, diags *domain.Diagnostics) *domain.LookupConfig {
	cfg := &domain.LookupConfig{}
	if t.Lookup == nil {
		return cfg
	}
	cfg.Dataset = t.Lookup.TableName
	cfg.SourceType = t.Lookup.SourceType
	cfg.Conditions = parseConditionPairs(t.Name, t.Lookup.Condition, diags)
	if t.Lookup.SQLOverride != "" {
		diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
			"lookup SQL override is not carried over, the reference dataset reads the full table")
	}
	for _, f := range t.Lookup.ReturnFields {
		cfg.ReturnFields = append(cfg.ReturnFields, f.Name)
	}
	for _, f := range t.Fields {
		cfg.Outputs = append(cfg.Outputs, f.Name)
	}
	return cfg
}

func translateUpdateStrategy(t *domain.Transformation, diags *domain.Diagnostics) *domain.AlterRowConfig {
	cfg := &domain.AlterRowConfig{Action: domain.AlterRowInsert}
	if t.UpdateStrategy == nil {
		return cfg
	}
	expr := strings.TrimSpace(t.UpdateStrategy.Expression)
	if expr == "" {
		return cfg
	}

	if action, ok := alterRowActions[strings.ToUpper(expr)]; ok {
		cfg.Action = action
		return cfg
	}

	// IIF(cond, DD_X [, DD_Y]) becomes the DD_X action guarded by cond; the
	// else branch cannot be expressed in a single alterRow block.
	m := strategyIif3Re.FindStringSubmatch(expr)
	if m == nil {
		if m = strategyIif2Re.FindStringSubmatch(expr); m != nil {
			m = append(m, "")
		}
	}
	if m != nil {
		if action, ok := alterRowActions[strings.ToUpper(m[2])]; ok {
			cfg.Action = action
			if cond, ok := translateColumn(t.Name, "", m[1], diags); ok {
				cfg.Condition = cond
			}
			if m[3] != "" && !strings.EqualFold(m[3], "DD_REJECT") {
				diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
					"else branch %s of the strategy expression is dropped", m[3])
			}
			return cfg
		}
	}

	diags.Warnf(domain.DiagUnsupportedConstruct, t.Name,
		"update strategy expression %q is not a recognized pattern, applying insert unconditionally", expr)
	return cfg
}

var (
	strategyIif3Re = regexp.MustCompile(`(?i)^IIF\s*\((.+),\s*(DD_\w+)\s*,\s*(DD_\w+)\s*\)$`)
	strategyIif2Re = regexp.MustCompile(`(?i)^IIF\s*\((.+),\s*(DD_\w+)\s*\)$`)
)
