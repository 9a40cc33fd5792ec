// Package graph resolves transformation inputs from the mapping's connector
// edge list and orders nodes for emission.
package graph

import (
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// Placeholder stream names emitted when a multi-input node cannot resolve its
// upstream. Visible in the generated script on purpose.
const (
	MissingLeftInput  = "MISSING_LEFT_INPUT"
	MissingRightInput = "MISSING_RIGHT_INPUT"
	MissingMainInput  = "MISSING_MAIN_INPUT"
)

// Adjacency builds a to-instance -> from-instances map from connectors,
// deduplicated to unique instance pairs in first-seen order. Field-level
// connectors collapse to one edge per pair.
func Adjacency(connectors []domain.Connector) map[string][]string {
	adj := make(map[string][]string)
	seen := make(map[[2]string]bool)

	for _, c := range connectors {
		key := [2]string{c.FromInstance, c.ToInstance}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[c.ToInstance] = append(adj[c.ToInstance], c.FromInstance)
	}
	return adj
}

// Resolver resolves multi-input transformation nodes against the connector
// graph, collapsing source-qualifier indirection to real source names.
type Resolver struct {
	adjacency  map[string][]string
	sources    map[string]bool
	qualifiers map[string]bool
}

// NewResolver builds a resolver for one mapping.
func NewResolver(meta *domain.MappingMetadata) *Resolver {
	qualifiers := make(map[string]bool)
	for _, t := range meta.Transformations {
		if t.Type == "Source Qualifier" {
			qualifiers[t.Name] = true
		}
	}
	return &Resolver{
		adjacency:  Adjacency(meta.Connectors),
		sources:    meta.SourceNames(),
		qualifiers: qualifiers,
	}
}

// ResolveStream collapses a source-qualifier instance to the Source reachable
// one hop upstream. When no source is reachable the qualifier's own name is
// kept with a warning; anything else passes through unchanged.
func (r *Resolver) ResolveStream(name string, diags *domain.Diagnostics) string {
	if !r.qualifiers[name] {
		return name
	}
	for _, from := range r.adjacency[name] {
		if r.sources[from] {
			return from
		}
	}
	diags.Warnf(domain.DiagUnresolvedInput, name,
		"source qualifier has no upstream source, keeping its own name")
	return name
}

// Resolve populates ResolvedInputs from the connector graph. Single-input
// kinds with no connector edge are left empty; the pipeline chains those to
// their predecessor after topological ordering.
func (r *Resolver) Resolve(nodes []*domain.Node, diags *domain.Diagnostics) {
	for _, node := range nodes {
		switch node.Type {
		case domain.NodeJoin:
			r.resolveJoin(node, diags)
		case domain.NodeLookup:
			r.resolveLookup(node, diags)
		default:
			if raw := r.adjacency[node.Name]; len(raw) > 0 {
				node.Inputs.Main = r.ResolveStream(raw[0], diags)
			}
		}
	}
}

func (r *Resolver) resolveJoin(node *domain.Node, diags *domain.Diagnostics) {
	raw := r.adjacency[node.Name]
	if len(raw) < 2 {
		diags.Errorf(domain.DiagUnresolvedInput, node.Name,
			"join has %d unique upstream instance(s), need 2", len(raw))
		return
	}

	left := r.ResolveStream(raw[0], diags)
	right := r.ResolveStream(raw[1], diags)

	// Two distinct raw inputs collapsing onto one resolved name would emit a
	// silent self-join. Keep the raw names and record the inconsistency.
	if left == right && raw[0] != raw[1] {
		diags.Errorf(domain.DiagInconsistentResolution, node.Name,
			"inputs %q and %q both resolve to %q, keeping raw names", raw[0], raw[1], left)
		node.Inputs.Left = raw[0]
		node.Inputs.Right = raw[1]
		return
	}

	node.Inputs.Left = left
	node.Inputs.Right = right
}

func (r *Resolver) resolveLookup(node *domain.Node, diags *domain.Diagnostics) {
	raw := r.adjacency[node.Name]
	if len(raw) == 0 {
		diags.Errorf(domain.DiagUnresolvedInput, node.Name,
			"lookup has no upstream instance")
		return
	}
	// The lookup-side input is the configured reference dataset; only the
	// main pipeline input comes from the connector graph.
	node.Inputs.Main = r.ResolveStream(raw[0], diags)
}
