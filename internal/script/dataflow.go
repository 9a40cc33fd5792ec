package script

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/disambiguate"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// Flow is one fully translated mapping, ready for emission. Nodes are in
// topological order with ResolvedInputs assigned.
type Flow struct {
	Name        string
	Description string
	Sources     []domain.Source
	Nodes       []*domain.Node
	Sinks       []domain.Target
}

// DatasetReference points a source or sink at its dataset definition.
type DatasetReference struct {
	ReferenceName string `json:"referenceName"`
	Type          string `json:"type"`
}

type flowEndpoint struct {
	Name    string           `json:"name"`
	Dataset DatasetReference `json:"dataset"`
}

type flowTransformation struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type dataflowTypeProperties struct {
	Sources         []flowEndpoint       `json:"sources"`
	Transformations []flowTransformation `json:"transformations"`
	Sinks           []flowEndpoint       `json:"sinks"`
	ScriptLines     []string             `json:"scriptLines"`
}

type dataflowProperties struct {
	Description    string                 `json:"description"`
	Type           string                 `json:"type"`
	TypeProperties dataflowTypeProperties `json:"typeProperties"`
}

// DataflowDocument is the dataflow resource envelope.
type DataflowDocument struct {
	Name       string             `json:"name"`
	Properties dataflowProperties `json:"properties"`
	Type       string             `json:"type"`
}

// Dataflow assembles the script lines and the dataflow envelope for a flow.
// Duplicate source names are a hard error; orphan sources and transformations
// shadowing a source name are skipped with diagnostics.
func (g *Generator) Dataflow(flow *Flow, diags *domain.Diagnostics) (*DataflowDocument, error) {
	var scriptLines []string
	var sources []flowEndpoint
	sourceNames := make(map[string]bool)

	validSources := g.validSources(flow)

	for _, src := range flow.Sources {
		if sourceNames[src.Name] {
			return nil, fmt.Errorf("duplicate source %q", src.Name)
		}
		if !validSources[src.Name] {
			diags.Warnf(domain.DiagOrphanSource, src.Name,
				"source has no valid connections in the flow, omitted")
			continue
		}
		sourceNames[src.Name] = true
		sources = append(sources, flowEndpoint{
			Name:    src.Name,
			Dataset: DatasetReference{ReferenceName: g.NormalizeDatasetName(src.Name, true), Type: "DatasetReference"},
		})
		scriptLines = append(scriptLines, g.SourceScript(src)...)
	}

	// Flat-file lookups read their reference data as a second source stream;
	// declare it when the mapping itself does not.
	for _, node := range flow.Nodes {
		if node.Type != domain.NodeLookup || node.Lookup == nil {
			continue
		}
		cfg := node.Lookup
		if cfg.SourceType != "Flat File" || cfg.Dataset == "" || sourceNames[cfg.Dataset] {
			continue
		}
		sourceNames[cfg.Dataset] = true
		sources = append(sources, flowEndpoint{
			Name:    cfg.Dataset,
			Dataset: DatasetReference{ReferenceName: g.NormalizeDatasetName(cfg.Dataset, true), Type: "DatasetReference"},
		})
		scriptLines = append(scriptLines,
			"source(output(",
			"\t),",
			"\tallowSchemaDrift: true,",
			"\tvalidateSchema: false,",
			fmt.Sprintf("\tignoreNoFilesFound: false) ~> %s", cfg.Dataset),
		)
	}

	var transformations []flowTransformation
	var activeMaps []domain.DisambiguationMap
	previous := ""
	if len(sources) > 0 {
		previous = sources[0].Name
	}

	for _, node := range flow.Nodes {
		// A transformation aliasing a source name means qualifier resolution
		// collided; emitting both would redeclare the stream.
		if sourceNames[node.Name] {
			diags.Errorf(domain.DiagDuplicateInstance, node.Name,
				"transformation name collides with a source, dropped")
			continue
		}

		upstream := node.Inputs.Main
		if upstream == "" {
			upstream = previous
		}
		transformations = append(transformations, flowTransformation{
			Name: node.Name,
			Type: adfTransformType(node.Type),
		})
		scriptLines = append(scriptLines, g.NodeScript(node, upstream, activeMaps, diags)...)

		if node.Type == domain.NodeLookup && node.Lookup != nil {
			if m := disambiguate.MapLookup(node); m != nil {
				node.Lookup.Disambiguation = m
				activeMaps = append(activeMaps, m)
			}
		}
		previous = node.Name
	}

	var sinks []flowEndpoint
	for _, sink := range flow.Sinks {
		sinks = append(sinks, flowEndpoint{
			Name:    sink.Name,
			Dataset: DatasetReference{ReferenceName: g.NormalizeDatasetName(sink.Name, false), Type: "DatasetReference"},
		})
		scriptLines = append(scriptLines, g.SinkScript(sink, previous)...)
	}

	return &DataflowDocument{
		Name: "dataflow_" + flow.Name,
		Properties: dataflowProperties{
			Description: flow.Description,
			Type:        "MappingDataFlow",
			TypeProperties: dataflowTypeProperties{
				Sources:         sources,
				Transformations: transformations,
				Sinks:           sinks,
				ScriptLines:     scriptLines,
			},
		},
		Type: "Microsoft.DataFactory/factories/dataflows",
	}, nil
}

// validSources reports which sources participate in the flow. A source with
// no transformations and no sinks downstream is orphaned. The check is
// all-or-nothing over the flow, not per-source reachability, so a mixed flow
// where one source feeds nothing still counts that source as valid.
func (g *Generator) validSources(flow *Flow) map[string]bool {
	valid := make(map[string]bool)
	if len(flow.Nodes) == 0 && len(flow.Sinks) == 0 {
		return valid
	}
	for _, src := range flow.Sources {
		valid[src.Name] = true
	}
	return valid
}

// PipelineDocument is the pipeline resource envelope wrapping an
// ExecuteDataFlow activity.
type PipelineDocument struct {
	Name       string             `json:"name"`
	Properties pipelineProperties `json:"properties"`
}

type pipelineProperties struct {
	Description string             `json:"description"`
	Activities  []pipelineActivity `json:"activities"`
	Annotations []string           `json:"annotations"`
}

type pipelineActivity struct {
	Name           string                 `json:"name"`
	Type           string                 `json:"type"`
	DependsOn      []string               `json:"dependsOn"`
	Policy         activityPolicy         `json:"policy"`
	TypeProperties activityTypeProperties `json:"typeProperties"`
}

type activityPolicy struct {
	Timeout                string `json:"timeout"`
	Retry                  int    `json:"retry"`
	RetryIntervalInSeconds int    `json:"retryIntervalInSeconds"`
	SecureOutput           bool   `json:"secureOutput"`
	SecureInput            bool   `json:"secureInput"`
}

type activityTypeProperties struct {
	DataFlow dataFlowReference `json:"dataFlow"`
	Compute  computeProperties `json:"compute"`
}

type dataFlowReference struct {
	ReferenceName string `json:"referenceName"`
	Type          string `json:"type"`
}

type computeProperties struct {
	CoreCount   int    `json:"coreCount"`
	ComputeType string `json:"computeType"`
}

// Pipeline builds the pipeline envelope for a flow.
func (g *Generator) Pipeline(flow *Flow) *PipelineDocument {
	return &PipelineDocument{
		Name: "pipeline_" + flow.Name,
		Properties: pipelineProperties{
			Description: flow.Description,
			Activities: []pipelineActivity{{
				Name:      "ExecuteDataFlow",
				Type:      "ExecuteDataFlow",
				DependsOn: []string{},
				Policy: activityPolicy{
					Timeout:                "1.00:00:00",
					Retry:                  0,
					RetryIntervalInSeconds: 30,
				},
				TypeProperties: activityTypeProperties{
					DataFlow: dataFlowReference{
						ReferenceName: "dataflow_" + flow.Name,
						Type:          "DataFlowReference",
					},
					Compute: computeProperties{CoreCount: 8, ComputeType: "General"},
				},
			}},
			Annotations: []string{
				"Migrated from PowerCenter - " + time.Now().Format("2006-01-02"),
			},
		},
	}
}

// NormalizeDatasetName maps an instance name to its dataset name. Exact
// entries from the production mapping win; otherwise lookups get ds_lkp_,
// other sources ds_source_, and sinks ds_.
func (g *Generator) NormalizeDatasetName(name string, isSource bool) string {
	if mapped, ok := g.DatasetMapping[name]; ok {
		return mapped
	}
	if isSource {
		if strings.HasPrefix(name, "lkp_") || strings.Contains(strings.ToLower(name), "lookup") {
			return "ds_lkp_" + strings.TrimPrefix(name, "lkp_")
		}
		return "ds_source_" + name
	}
	return "ds_" + name
}

// adfTransformType maps a node kind to the envelope's type token.
func adfTransformType(t domain.NodeType) string {
	switch t {
	case domain.NodeDerivedColumn:
		return "derivedColumn"
	case domain.NodeFilter:
		return "filter"
	case domain.NodeAggregate:
		return "aggregate"
	case domain.NodeJoin:
		return "join"
	case domain.NodeSort:
		return "sort"
	case domain.NodeConditionalSplit:
		return "conditionalSplit"
	case domain.NodeLookup:
		return "lookup"
	case domain.NodeAlterRow:
		return "alterRow"
	default:
		return strings.ToLower(string(t))
	}
}

// adfFieldType maps a source field datatype (native or already normalized) to
// the script's schema type token.
func adfFieldType(datatype string) string {
	switch strings.ToLower(datatype) {
	case "string", "varchar", "varchar2", "nvarchar", "char", "nstring", "text":
		return "string"
	case "int32", "integer", "int", "smallint", "number", "number(p,s)":
		return "integer"
	case "int64", "bigint":
		return "long"
	case "double", "float", "real":
		return "double"
	case "decimal", "numeric", "money":
		return "decimal"
	case "datetime", "timestamp", "date/time":
		return "timestamp"
	case "date":
		return "date"
	case "boolean", "bit":
		return "boolean"
	case "binary", "raw":
		return "binary"
	default:
		return "string"
	}
}

// MarshalDocument renders an envelope document as indented JSON.
func MarshalDocument(doc any) (json.RawMessage, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}
