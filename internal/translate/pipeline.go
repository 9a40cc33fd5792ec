package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/disambiguate"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/graph"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/script"
)

// Output is the complete result of translating one mapping.
type Output struct {
	MappingName string
	ScriptLines []string
	Dataflow    json.RawMessage
	Pipeline    json.RawMessage
	Report      json.RawMessage
	Diagnostics domain.Diagnostics
}

// Run translates one parsed mapping end to end: node translation, input
// resolution, ordering, disambiguation and document emission. Diagnostics
// accumulate across every stage; only a malformed flow aborts with an error.
func Run(meta *domain.MappingMetadata, datasetMapping map[string]string) (*Output, error) {
	var diags domain.Diagnostics

	sourceNames := meta.SourceNames()
	var nodes []*domain.Node
	for i := range meta.Transformations {
		node := TranslateNode(&meta.Transformations[i], &diags)
		if node == nil {
			continue
		}
		// A node reusing a source's name would redeclare its stream.
		if sourceNames[node.Name] {
			diags.Errorf(domain.DiagDuplicateInstance, node.Name,
				"transformation name collides with a source, dropped")
			continue
		}
		nodes = append(nodes, node)
	}

	resolver := graph.NewResolver(meta)
	resolver.Resolve(nodes, &diags)
	ordered := graph.Order(nodes, &diags)

	// Single-input nodes the connector graph could not place chain to their
	// predecessor in execution order.
	previous := ""
	if len(meta.Sources) > 0 {
		previous = meta.Sources[0].Name
	}
	for _, node := range ordered {
		if node.Type != domain.NodeJoin && node.Inputs.Main == "" {
			node.Inputs.Main = previous
		}
		previous = node.Name
	}

	// The case table is built for its conflict diagnostics; the qualified
	// references produced by lookup disambiguation use original spellings.
	disambiguate.BuildCaseTable(meta.Sources, &diags)

	flow := &script.Flow{
		Name:        meta.Name,
		Description: meta.Description,
		Sources:     meta.Sources,
		Nodes:       ordered,
		Sinks:       meta.Targets,
	}

	gen := script.NewGenerator(datasetMapping)
	dataflowDoc, err := gen.Dataflow(flow, &diags)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataflow for %s: %w", meta.Name, err)
	}
	pipelineDoc := gen.Pipeline(flow)
	report := script.BuildReport(flow, dataflowDoc, diags)

	dataflowJSON, err := script.MarshalDocument(dataflowDoc)
	if err != nil {
		return nil, err
	}
	pipelineJSON, err := script.MarshalDocument(pipelineDoc)
	if err != nil {
		return nil, err
	}
	reportJSON, err := script.MarshalDocument(report)
	if err != nil {
		return nil, err
	}

	return &Output{
		MappingName: meta.Name,
		ScriptLines: dataflowDoc.Properties.TypeProperties.ScriptLines,
		Dataflow:    dataflowJSON,
		Pipeline:    pipelineJSON,
		Report:      reportJSON,
		Diagnostics: diags,
	}, nil
}

// RunAll translates a batch of mappings concurrently. Results keep the input
// order; the first hard failure cancels the rest.
func RunAll(ctx context.Context, metas []*domain.MappingMetadata, datasetMapping map[string]string) ([]*Output, error) {
	outputs := make([]*Output, len(metas))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, meta := range metas {
		g.Go(func() error {
			out, err := Run(meta, datasetMapping)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
