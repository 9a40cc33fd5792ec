// Package parser reads PowerCenter repository export XML into the mapping
// metadata model.
package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// Shadow structs for the export markup. Attribute names are the repository
// export's upper-case vocabulary; table-level settings arrive as
// TABLEATTRIBUTE name/value pairs.
type xmlDocument struct {
	Repository xmlRepository `xml:"REPOSITORY"`
	Folder     xmlFolder     `xml:"FOLDER"`
	Version    string        `xml:"VERSION,attr"`
}

type xmlRepository struct {
	Folders []xmlFolder `xml:"FOLDER"`
	Version string      `xml:"VERSION,attr"`
}

type xmlFolder struct {
	Sources         []xmlSource         `xml:"SOURCE"`
	Targets         []xmlTarget         `xml:"TARGET"`
	Mappings        []xmlMapping        `xml:"MAPPING"`
	Transformations []xmlTransformation `xml:"TRANSFORMATION"`
}

type xmlSource struct {
	Name         string     `xml:"NAME,attr"`
	DatabaseType string     `xml:"DATABASETYPE,attr"`
	TableName    string     `xml:"TABLENAME,attr"`
	Fields       []xmlField `xml:"SOURCEFIELD"`
}

type xmlTarget struct {
	Name         string     `xml:"NAME,attr"`
	DatabaseType string     `xml:"DATABASETYPE,attr"`
	TableName    string     `xml:"TABLENAME,attr"`
	Fields       []xmlField `xml:"TARGETFIELD"`
}

type xmlMapping struct {
	Name            string              `xml:"NAME,attr"`
	Description     string              `xml:"DESCRIPTION,attr"`
	Transformations []xmlTransformation `xml:"TRANSFORMATION"`
	Connectors      []xmlConnector      `xml:"CONNECTOR"`
}

type xmlTransformation struct {
	Name            string              `xml:"NAME,attr"`
	Type            string              `xml:"TYPE,attr"`
	Description     string              `xml:"DESCRIPTION,attr"`
	JoinType        string              `xml:"JOINTYPE,attr"`
	JoinCondition   string              `xml:"JOINCONDITION,attr"`
	FilterCondition string              `xml:"FILTERCONDITION,attr"`
	Fields          []xmlField          `xml:"TRANSFORMFIELD"`
	Groups          []xmlGroup          `xml:"GROUP"`
	TableAttributes []xmlTableAttribute `xml:"TABLEATTRIBUTE"`
}

type xmlField struct {
	Name           string `xml:"NAME,attr"`
	Datatype       string `xml:"DATATYPE,attr"`
	Precision      int    `xml:"PRECISION,attr"`
	Scale          int    `xml:"SCALE,attr"`
	Expression     string `xml:"EXPRESSION,attr"`
	ExpressionType string `xml:"EXPRESSIONTYPE,attr"`
	Description    string `xml:"DESCRIPTION,attr"`
	PortType       string `xml:"PORTTYPE,attr"`
	GroupBy        string `xml:"GROUPBY,attr"`
	IsSortKey      string `xml:"ISSORTKEY,attr"`
	SortDirection  string `xml:"SORTDIRECTION,attr"`
	SortOrder      int    `xml:"SORTORDER,attr"`
	Group          string `xml:"GROUP,attr"`
}

type xmlGroup struct {
	Name       string `xml:"NAME,attr"`
	Type       string `xml:"TYPE,attr"`
	Expression string `xml:"EXPRESSION,attr"`
}

type xmlTableAttribute struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:"VALUE,attr"`
}

type xmlConnector struct {
	FromInstance string        `xml:"FROMINSTANCE,attr"`
	ToInstance   string        `xml:"TOINSTANCE,attr"`
	FieldMaps    []xmlFieldMap `xml:"FIELDMAP"`
	FromField    string        `xml:"FROMFIELD,attr"`
	ToField      string        `xml:"TOFIELD,attr"`
}

type xmlFieldMap struct {
	FromField string `xml:"FROMFIELD,attr"`
	ToField   string `xml:"TOFIELD,attr"`
}

// ParseFile reads one export file.
func ParseFile(path string) (*domain.MappingMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads one export document. The first MAPPING element found is the
// mapping; sources and targets are collected folder-wide because the export
// declares them outside the mapping body.
func Parse(r io.Reader) (*domain.MappingMetadata, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse export XML: %w", err)
	}

	folders := doc.Repository.Folders
	if len(folders) == 0 {
		folders = []xmlFolder{doc.Folder}
	}

	meta := &domain.MappingMetadata{Name: "UnknownMapping", Version: doc.Repository.Version}
	if meta.Version == "" {
		meta.Version = "10.x"
	}

	for _, folder := range folders {
		for _, src := range folder.Sources {
			meta.Sources = append(meta.Sources, convertSource(src))
		}
		for _, tgt := range folder.Targets {
			meta.Targets = append(meta.Targets, convertTarget(tgt))
		}
		for i := range folder.Transformations {
			meta.Transformations = append(meta.Transformations, convertTransformation(&folder.Transformations[i]))
		}
		for _, mapping := range folder.Mappings {
			if meta.Name == "UnknownMapping" {
				meta.Name = mapping.Name
				meta.Description = mapping.Description
			}
			for i := range mapping.Transformations {
				meta.Transformations = append(meta.Transformations, convertTransformation(&mapping.Transformations[i]))
			}
			for _, conn := range mapping.Connectors {
				meta.Connectors = append(meta.Connectors, convertConnector(conn))
			}
		}
	}
	return meta, nil
}

func convertSource(src xmlSource) domain.Source {
	out := domain.Source{
		Name:         src.Name,
		DatabaseType: orDefault(src.DatabaseType, "Unknown"),
		TableName:    src.TableName,
	}
	for _, f := range src.Fields {
		out.Fields = append(out.Fields, convertField(f))
	}
	return out
}

func convertTarget(tgt xmlTarget) domain.Target {
	out := domain.Target{
		Name:         tgt.Name,
		DatabaseType: orDefault(tgt.DatabaseType, "Unknown"),
		TableName:    tgt.TableName,
	}
	for _, f := range tgt.Fields {
		out.Fields = append(out.Fields, convertField(f))
	}
	return out
}

func convertField(f xmlField) domain.Field {
	return domain.Field{
		Name:        f.Name,
		Datatype:    orDefault(f.Datatype, "string"),
		Precision:   f.Precision,
		Scale:       f.Scale,
		Expression:  f.Expression,
		Description: f.Description,
	}
}

func convertConnector(c xmlConnector) domain.Connector {
	out := domain.Connector{FromInstance: c.FromInstance, ToInstance: c.ToInstance}
	for _, fm := range c.FieldMaps {
		out.FromFields = append(out.FromFields, fm.FromField)
		out.ToFields = append(out.ToFields, fm.ToField)
	}
	// Field-level exports put the pair on the connector element itself.
	if len(out.FromFields) == 0 && c.FromField != "" {
		out.FromFields = append(out.FromFields, c.FromField)
		out.ToFields = append(out.ToFields, c.ToField)
	}
	return out
}

func convertTransformation(t *xmlTransformation) domain.Transformation {
	out := domain.Transformation{
		Name:        t.Name,
		Type:        t.Type,
		Description: t.Description,
	}
	for _, f := range t.Fields {
		out.Fields = append(out.Fields, convertField(f))
	}

	attrs := tableAttributes(t.TableAttributes)

	switch t.Type {
	case "Aggregator":
		out.Aggregator = parseAggregator(t, attrs)
	case "Joiner":
		out.Joiner = parseJoiner(t, attrs)
	case "Sorter":
		out.Sorter = parseSorter(t, attrs)
	case "Filter":
		out.Filter = parseFilter(t, attrs)
	case "Router":
		out.Router = parseRouter(t)
	case "Lookup", "Lookup Procedure":
		out.Lookup = parseLookup(t, attrs)
	case "Update Strategy":
		out.UpdateStrategy = &domain.UpdateStrategyProperties{
			Expression: attrs["Update Strategy Expression"],
		}
	}
	return out
}

func tableAttributes(attrs []xmlTableAttribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}

func parseAggregator(t *xmlTransformation, attrs map[string]string) *domain.AggregatorProperties {
	props := &domain.AggregatorProperties{SortedInput: yes(attrs["Sorted Input"])}
	for _, f := range t.Fields {
		if f.GroupBy == "YES" || f.ExpressionType == "GROUPBY" {
			props.GroupByFields = append(props.GroupByFields, f.Name)
			continue
		}
		if f.Expression != "" && strings.Contains(f.PortType, "OUTPUT") {
			props.AggregateExpressions = append(props.AggregateExpressions, domain.AggregateExpression{
				Name:       f.Name,
				Expression: f.Expression,
				Datatype:   f.Datatype,
			})
		}
	}
	return props
}

func parseJoiner(t *xmlTransformation, attrs map[string]string) *domain.JoinerProperties {
	props := &domain.JoinerProperties{
		JoinType:      orDefault(attrs["Join Type"], orDefault(t.JoinType, "Normal")),
		JoinCondition: orDefault(attrs["Join Condition"], t.JoinCondition),
		SortedInput:   yes(attrs["Sorted Input"]),
	}
	for _, f := range t.Fields {
		if strings.Contains(f.PortType, "MASTER") {
			props.MasterFields = append(props.MasterFields, f.Name)
		} else {
			props.DetailFields = append(props.DetailFields, f.Name)
		}
	}
	return props
}

func parseSorter(t *xmlTransformation, attrs map[string]string) *domain.SorterProperties {
	props := &domain.SorterProperties{
		Distinct:      yes(attrs["Distinct"]),
		CaseSensitive: yes(attrs["Case Sensitive"]),
	}
	for _, f := range t.Fields {
		if f.IsSortKey != "YES" {
			continue
		}
		props.SortKeys = append(props.SortKeys, domain.SortKey{
			Name:      f.Name,
			Direction: orDefault(f.SortDirection, "ASCENDING"),
			Order:     f.SortOrder,
		})
	}
	return props
}

func parseFilter(t *xmlTransformation, attrs map[string]string) *domain.FilterProperties {
	return &domain.FilterProperties{
		Condition: orDefault(attrs["Filter Condition"], t.FilterCondition),
	}
}

func parseRouter(t *xmlTransformation) *domain.RouterProperties {
	props := &domain.RouterProperties{}
	for _, g := range t.Groups {
		if g.Type == "INPUT" {
			continue
		}
		if strings.Contains(g.Type, "DEFAULT") {
			props.DefaultGroup = g.Name
			continue
		}
		props.Groups = append(props.Groups, domain.RouterGroup{
			Name:       g.Name,
			Type:       g.Type,
			Expression: g.Expression,
		})
	}
	return props
}

func parseLookup(t *xmlTransformation, attrs map[string]string) *domain.LookupProperties {
	props := &domain.LookupProperties{
		TableName:           attrs["Lookup table name"],
		SourceType:          attrs["Source Type"],
		Condition:           attrs["Lookup condition"],
		SQLOverride:         attrs["Lookup Sql Override"],
		CacheEnabled:        yes(attrs["Lookup caching enabled"]),
		MultipleMatchPolicy: attrs["Lookup policy on multiple match"],
	}
	for _, f := range t.Fields {
		if strings.Contains(f.PortType, "LOOKUP") && strings.Contains(f.PortType, "OUTPUT") {
			props.ReturnFields = append(props.ReturnFields, convertField(f))
		}
	}
	return props
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func yes(value string) bool {
	return strings.EqualFold(value, "YES")
}
