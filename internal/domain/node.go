package domain

// NodeType identifies a Data Flow transformation kind.
type NodeType string

const (
	NodeDerivedColumn    NodeType = "DerivedColumn"
	NodeFilter           NodeType = "Filter"
	NodeAggregate        NodeType = "Aggregate"
	NodeJoin             NodeType = "Join"
	NodeSort             NodeType = "Sort"
	NodeConditionalSplit NodeType = "ConditionalSplit"
	NodeLookup           NodeType = "Lookup"
	NodeAlterRow         NodeType = "AlterRow"
)

// Node is one translated transformation. Exactly one config pointer is set,
// matching Type. Inputs is populated by the graph resolver (multi-input
// kinds) and the ordering pass (single-input kinds).
type Node struct {
	Name        string
	Type        NodeType
	Description string

	DerivedColumn    *DerivedColumnConfig
	Filter           *FilterConfig
	Aggregate        *AggregateConfig
	Join             *JoinConfig
	Sort             *SortConfig
	ConditionalSplit *ConditionalSplitConfig
	Lookup           *LookupConfig
	AlterRow         *AlterRowConfig

	Inputs ResolvedInputs
}

// DerivedColumnConfig holds the computed columns of a derivedColumn step.
type DerivedColumnConfig struct {
	Columns []DerivedColumn
}

// DerivedColumn is one column assignment with its translated expression.
type DerivedColumn struct {
	Name       string
	Expression string
}

// FilterConfig holds the translated filter condition.
type FilterConfig struct {
	Condition string
}

// AggregateConfig holds group-by columns and aggregate assignments.
type AggregateConfig struct {
	GroupBy    []string
	Aggregates []AggregateColumn
}

// AggregateColumn is one aggregate assignment with its translated expression.
type AggregateColumn struct {
	Name       string
	Expression string
}

// JoinConfig holds the join type and the equality condition column pairs.
type JoinConfig struct {
	JoinType   string
	Conditions []JoinCondition
}

// JoinCondition is one left/right column equality pair.
type JoinCondition struct {
	LeftColumn  string
	RightColumn string
}

// SortConfig holds the sort clauses in declared order.
type SortConfig struct {
	OrderBy  []OrderByColumn
	Distinct bool
}

// OrderByColumn is one sort clause; Order is "asc" or "desc".
type OrderByColumn struct {
	Name  string
	Order string
}

// ConditionalSplitConfig holds the ordered split conditions and the default
// stream name.
type ConditionalSplitConfig struct {
	Conditions    []SplitCondition
	DefaultStream string
}

// SplitCondition is one named output stream with its translated condition.
type SplitCondition struct {
	Name       string
	Expression string
}

// LookupConfig holds the reference dataset, the lookup condition pairs and
// the output port names used for column disambiguation. Condition pairs keep
// the source convention (left is the lookup-side column, right the
// main-stream column); the generator inverts them on emission.
type LookupConfig struct {
	Dataset        string
	SourceType     string
	Conditions     []JoinCondition
	ReturnFields   []string
	Outputs        []string
	Disambiguation DisambiguationMap
}

// AlterRowAction selects which alterRow condition block is emitted.
type AlterRowAction string

const (
	AlterRowInsert AlterRowAction = "insert"
	AlterRowUpdate AlterRowAction = "update"
	AlterRowDelete AlterRowAction = "delete"
	AlterRowUpsert AlterRowAction = "upsert"
)

// AlterRowConfig holds the row action and its guarding condition.
type AlterRowConfig struct {
	Action    AlterRowAction
	Condition string
}

// ResolvedInputs names the upstream stream(s) feeding a node. Single-input
// kinds use Main; Join uses Left and Right; Lookup uses Main plus the
// configured lookup dataset as its side input.
type ResolvedInputs struct {
	Main  string
	Left  string
	Right string
}

// DisambiguationMap maps a collided short column name to its stream-qualified
// replacement, scoped to one Lookup node.
type DisambiguationMap map[string]string
