package graph

import (
	"testing"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

func testMetadata() *domain.MappingMetadata {
	return &domain.MappingMetadata{
		Name: "m_TEST",
		Sources: []domain.Source{
			{Name: "ORDERS"},
			{Name: "CUSTOMERS"},
		},
		Transformations: []domain.Transformation{
			{Name: "SQ_ORDERS", Type: "Source Qualifier"},
			{Name: "SQ_CUSTOMERS", Type: "Source Qualifier"},
			{Name: "JNR_ORDERS_CUSTOMERS", Type: "Joiner"},
			{Name: "LKP_DIM_PROMO", Type: "Lookup Procedure"},
		},
		Connectors: []domain.Connector{
			{FromInstance: "ORDERS", ToInstance: "SQ_ORDERS"},
			{FromInstance: "CUSTOMERS", ToInstance: "SQ_CUSTOMERS"},
			// One connector per joined column; both collapse to one edge pair.
			{FromInstance: "SQ_ORDERS", ToInstance: "JNR_ORDERS_CUSTOMERS"},
			{FromInstance: "SQ_ORDERS", ToInstance: "JNR_ORDERS_CUSTOMERS"},
			{FromInstance: "SQ_CUSTOMERS", ToInstance: "JNR_ORDERS_CUSTOMERS"},
			{FromInstance: "JNR_ORDERS_CUSTOMERS", ToInstance: "LKP_DIM_PROMO"},
		},
	}
}

func TestAdjacencyDeduplicates(t *testing.T) {
	adj := Adjacency(testMetadata().Connectors)
	from := adj["JNR_ORDERS_CUSTOMERS"]
	if len(from) != 2 {
		t.Fatalf("join adjacency = %v, want 2 unique instances", from)
	}
	if from[0] != "SQ_ORDERS" || from[1] != "SQ_CUSTOMERS" {
		t.Errorf("join adjacency order = %v, want first-seen order", from)
	}
}

func TestResolveJoinCollapsesQualifiers(t *testing.T) {
	meta := testMetadata()
	r := NewResolver(meta)
	node := &domain.Node{Name: "JNR_ORDERS_CUSTOMERS", Type: domain.NodeJoin, Join: &domain.JoinConfig{}}

	var diags domain.Diagnostics
	r.Resolve([]*domain.Node{node}, &diags)

	if node.Inputs.Left != "ORDERS" || node.Inputs.Right != "CUSTOMERS" {
		t.Errorf("join inputs = %q/%q, want ORDERS/CUSTOMERS", node.Inputs.Left, node.Inputs.Right)
	}
	if diags.HasErrors() {
		t.Errorf("unexpected errors: %v", diags.Errors())
	}
}

func TestResolveJoinInconsistentResolution(t *testing.T) {
	// Both qualifiers reach the same source: a silent self-join.
	meta := &domain.MappingMetadata{
		Sources: []domain.Source{{Name: "ORDERS"}},
		Transformations: []domain.Transformation{
			{Name: "SQ_A", Type: "Source Qualifier"},
			{Name: "SQ_B", Type: "Source Qualifier"},
		},
		Connectors: []domain.Connector{
			{FromInstance: "ORDERS", ToInstance: "SQ_A"},
			{FromInstance: "ORDERS", ToInstance: "SQ_B"},
			{FromInstance: "SQ_A", ToInstance: "JNR_SELF"},
			{FromInstance: "SQ_B", ToInstance: "JNR_SELF"},
		},
	}
	r := NewResolver(meta)
	node := &domain.Node{Name: "JNR_SELF", Type: domain.NodeJoin, Join: &domain.JoinConfig{}}

	var diags domain.Diagnostics
	r.Resolve([]*domain.Node{node}, &diags)

	if node.Inputs.Left != "SQ_A" || node.Inputs.Right != "SQ_B" {
		t.Errorf("inputs = %q/%q, want raw names SQ_A/SQ_B", node.Inputs.Left, node.Inputs.Right)
	}
	found := false
	for _, d := range diags.Errors() {
		if d.Code == domain.DiagInconsistentResolution && d.Node == "JNR_SELF" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected InconsistentResolution error, got %v", diags)
	}
}

func TestResolveJoinUnderConnected(t *testing.T) {
	meta := testMetadata()
	meta.Connectors = meta.Connectors[:3] // drop the customer-side edges
	r := NewResolver(meta)
	node := &domain.Node{Name: "JNR_ORDERS_CUSTOMERS", Type: domain.NodeJoin, Join: &domain.JoinConfig{}}

	var diags domain.Diagnostics
	r.Resolve([]*domain.Node{node}, &diags)

	if node.Inputs.Left != "" || node.Inputs.Right != "" {
		t.Errorf("inputs = %q/%q, want unset", node.Inputs.Left, node.Inputs.Right)
	}
	if !diags.HasErrors() {
		t.Error("expected UnresolvedInput error")
	}
}

func TestResolveLookupMainInput(t *testing.T) {
	meta := testMetadata()
	r := NewResolver(meta)
	node := &domain.Node{Name: "LKP_DIM_PROMO", Type: domain.NodeLookup,
		Lookup: &domain.LookupConfig{Dataset: "DIM_PROMO"}}

	var diags domain.Diagnostics
	r.Resolve([]*domain.Node{node}, &diags)

	if node.Inputs.Main != "JNR_ORDERS_CUSTOMERS" {
		t.Errorf("lookup main input = %q, want JNR_ORDERS_CUSTOMERS", node.Inputs.Main)
	}
}

func TestResolveSingleInputThroughQualifier(t *testing.T) {
	meta := testMetadata()
	meta.Connectors = append(meta.Connectors,
		domain.Connector{FromInstance: "SQ_ORDERS", ToInstance: "FIL_ACTIVE"})
	r := NewResolver(meta)
	node := &domain.Node{Name: "FIL_ACTIVE", Type: domain.NodeFilter,
		Filter: &domain.FilterConfig{Condition: "true()"}}

	var diags domain.Diagnostics
	r.Resolve([]*domain.Node{node}, &diags)

	if node.Inputs.Main != "ORDERS" {
		t.Errorf("filter main input = %q, want ORDERS", node.Inputs.Main)
	}
}

func TestResolveStreamFallsBackToQualifierName(t *testing.T) {
	meta := &domain.MappingMetadata{
		Transformations: []domain.Transformation{{Name: "SQ_LOST", Type: "Source Qualifier"}},
	}
	r := NewResolver(meta)

	var diags domain.Diagnostics
	got := r.ResolveStream("SQ_LOST", &diags)

	if got != "SQ_LOST" {
		t.Errorf("got %q, want the qualifier's own name", got)
	}
	if len(diags.Warnings()) == 0 {
		t.Error("expected a warning for the unresolved qualifier")
	}
}
