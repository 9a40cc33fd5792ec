package translate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

func testMapping() *domain.MappingMetadata {
	return &domain.MappingMetadata{
		Name:        "m_LOAD_SALES",
		Description: "Loads the sales fact from the orders feed",
		Sources: []domain.Source{
			{
				Name: "ORDERS",
				Fields: []domain.Field{
					{Name: "ORDER_ID", Datatype: "number"},
					{Name: "STATUS", Datatype: "varchar2"},
					{Name: "AMOUNT", Datatype: "decimal"},
				},
			},
		},
		Targets: []domain.Target{{Name: "FACT_SALES"}},
		Transformations: []domain.Transformation{
			{Name: "SQ_ORDERS", Type: "Source Qualifier"},
			{
				Name:   "FIL_ACTIVE",
				Type:   "Filter",
				Filter: &domain.FilterProperties{Condition: "STATUS = 'A'"},
			},
			{
				Name: "EXP_CALC",
				Type: "Expression",
				Fields: []domain.Field{
					{Name: "NET_AMOUNT", Expression: "AMOUNT * 0.81"},
				},
			},
		},
		Connectors: []domain.Connector{
			{FromInstance: "ORDERS", ToInstance: "SQ_ORDERS"},
			{FromInstance: "SQ_ORDERS", ToInstance: "FIL_ACTIVE"},
			{FromInstance: "FIL_ACTIVE", ToInstance: "EXP_CALC"},
			{FromInstance: "EXP_CALC", ToInstance: "FACT_SALES"},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	out, err := Run(testMapping(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.MappingName != "m_LOAD_SALES" {
		t.Errorf("mapping name = %q", out.MappingName)
	}
	if out.Diagnostics.HasErrors() {
		t.Errorf("unexpected errors: %v", out.Diagnostics.Errors())
	}

	joined := strings.Join(out.ScriptLines, "\n")
	for _, want := range []string{
		"~> ORDERS",
		"ORDERS filter(",
		"\tSTATUS == 'A'",
		") ~> FIL_ACTIVE",
		"FIL_ACTIVE derive(",
		"\t\tNET_AMOUNT = AMOUNT * 0.81",
		"\t) ~> EXP_CALC",
		"EXP_CALC sink(",
		") ~> FACT_SALES",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("script lines missing %q:\n%s", want, joined)
		}
	}

	var dataflow map[string]any
	if err := json.Unmarshal(out.Dataflow, &dataflow); err != nil {
		t.Fatalf("dataflow envelope: %v", err)
	}
	if dataflow["name"] != "dataflow_m_LOAD_SALES" {
		t.Errorf("dataflow name = %v", dataflow["name"])
	}

	var pipeline map[string]any
	if err := json.Unmarshal(out.Pipeline, &pipeline); err != nil {
		t.Fatalf("pipeline envelope: %v", err)
	}
	if pipeline["name"] != "pipeline_m_LOAD_SALES" {
		t.Errorf("pipeline name = %v", pipeline["name"])
	}

	var report map[string]any
	if err := json.Unmarshal(out.Report, &report); err != nil {
		t.Fatalf("report: %v", err)
	}
	if report["mapping_name"] != "m_LOAD_SALES" {
		t.Errorf("report mapping name = %v", report["mapping_name"])
	}
}

func TestRunDropsTransformationShadowingSource(t *testing.T) {
	meta := testMapping()
	meta.Transformations = append(meta.Transformations, domain.Transformation{
		Name:   "ORDERS",
		Type:   "Filter",
		Filter: &domain.FilterProperties{Condition: "1 = 1"},
	})

	out, err := Run(meta, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, d := range out.Diagnostics.Errors() {
		if d.Code == domain.DiagDuplicateInstance {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate instance error, got %v", out.Diagnostics)
	}
	for _, line := range out.ScriptLines {
		if line == ") ~> ORDERS" {
			t.Errorf("shadowing transformation emitted: %q", line)
		}
	}
}

func TestRunAllKeepsInputOrder(t *testing.T) {
	first := testMapping()
	second := testMapping()
	second.Name = "m_LOAD_RETURNS"

	outputs, err := RunAll(context.Background(), []*domain.MappingMetadata{first, second}, nil)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("outputs = %d", len(outputs))
	}
	if outputs[0].MappingName != "m_LOAD_SALES" || outputs[1].MappingName != "m_LOAD_RETURNS" {
		t.Errorf("order not preserved: %s, %s", outputs[0].MappingName, outputs[1].MappingName)
	}
}
