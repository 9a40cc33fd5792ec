package domain

// Field is one column of a source, target, or transformation port list.
// Immutable after parse.
type Field struct {
	Name        string
	Datatype    string
	Precision   int
	Scale       int
	Expression  string
	Description string
}

// Source is a data source instance in the mapping graph.
type Source struct {
	Name         string
	DatabaseType string
	TableName    string
	Fields       []Field
}

// Target is a sink instance in the mapping graph.
type Target struct {
	Name         string
	DatabaseType string
	TableName    string
	Fields       []Field
}

// Transformation is a raw PowerCenter transformation as extracted from the
// export markup. Exactly one of the per-kind property pointers is set,
// matching Type; kinds without extra properties leave all of them nil.
type Transformation struct {
	Name        string
	Type        string
	Description string
	Fields      []Field

	Aggregator     *AggregatorProperties
	Joiner         *JoinerProperties
	Sorter         *SorterProperties
	Filter         *FilterProperties
	Router         *RouterProperties
	Lookup         *LookupProperties
	UpdateStrategy *UpdateStrategyProperties
}

// AggregatorProperties carries group-by ports and aggregate output ports.
type AggregatorProperties struct {
	GroupByFields        []string
	AggregateExpressions []AggregateExpression
	SortedInput          bool
}

// AggregateExpression is one aggregate output port of an Aggregator.
type AggregateExpression struct {
	Name       string
	Expression string
	Datatype   string
}

// JoinerProperties carries the join condition and master/detail port split.
type JoinerProperties struct {
	JoinType      string
	JoinCondition string
	MasterFields  []string
	DetailFields  []string
	SortedInput   bool
}

// SorterProperties carries sort keys in declared key order.
type SorterProperties struct {
	SortKeys      []SortKey
	Distinct      bool
	CaseSensitive bool
}

// SortKey is one sort port with its direction (ASCENDING or DESCENDING).
type SortKey struct {
	Name      string
	Direction string
	Order     int
}

// FilterProperties carries the filter condition expression.
type FilterProperties struct {
	Condition string
}

// RouterProperties carries the router output groups.
type RouterProperties struct {
	Groups       []RouterGroup
	DefaultGroup string
}

// RouterGroup is one output group of a Router; default groups have an empty
// expression.
type RouterGroup struct {
	Name       string
	Type       string
	Expression string
}

// LookupProperties carries the lookup table attributes and return ports.
type LookupProperties struct {
	TableName           string
	SourceType          string
	Condition           string
	SQLOverride         string
	CacheEnabled        bool
	MultipleMatchPolicy string
	ReturnFields        []Field
}

// UpdateStrategyProperties carries the row strategy expression (DD_INSERT,
// DD_UPDATE, DD_DELETE or an expression evaluating to one of them).
type UpdateStrategyProperties struct {
	Expression string
}

// Connector is a directed field-level edge between two instances. Multiple
// connectors may exist between the same pair of instances, one per field.
type Connector struct {
	FromInstance string
	ToInstance   string
	FromFields   []string
	ToFields     []string
}

// MappingMetadata is the complete parsed representation of one PowerCenter
// mapping. Built once by the parser and read-only afterwards.
type MappingMetadata struct {
	Name            string
	Description     string
	Version         string
	Sources         []Source
	Targets         []Target
	Transformations []Transformation
	Connectors      []Connector
}

// SourceNames returns the set of source instance names.
func (m *MappingMetadata) SourceNames() map[string]bool {
	names := make(map[string]bool, len(m.Sources))
	for _, s := range m.Sources {
		names[s.Name] = true
	}
	return names
}
