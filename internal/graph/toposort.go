package graph

import (
	"sort"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// Order sorts nodes so that every resolved input precedes its consumers.
// Dependency edges come from each node's Main/Left/Right inputs, restricted
// to names inside the node set. Ties break lexicographically so two runs over
// the same graph produce identical output. A cycle degrades to the original
// declaration order with a CycleDetected warning.
func Order(nodes []*domain.Node, diags *domain.Diagnostics) []*domain.Node {
	byName := make(map[string]*domain.Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}

	dependents := make(map[string][]string, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.Name] = 0
	}

	for _, n := range nodes {
		for _, dep := range dependencies(n) {
			if _, ok := byName[dep]; !ok {
				continue
			}
			dependents[dep] = append(dependents[dep], n.Name)
			inDegree[n.Name]++
		}
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	var orderedNames []string
	for len(queue) > 0 {
		sort.Strings(queue)
		name := queue[0]
		queue = queue[1:]
		orderedNames = append(orderedNames, name)

		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(orderedNames) != len(nodes) {
		diags.Warnf(domain.DiagCycleDetected, "",
			"dependency cycle detected, keeping declaration order")
		return nodes
	}

	ordered := make([]*domain.Node, 0, len(nodes))
	for _, name := range orderedNames {
		ordered = append(ordered, byName[name])
	}
	return ordered
}

// dependencies lists the upstream names a node contributes as edges. Unset
// inputs contribute nothing.
func dependencies(n *domain.Node) []string {
	var deps []string
	seen := make(map[string]bool)
	for _, name := range []string{n.Inputs.Main, n.Inputs.Left, n.Inputs.Right} {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	return deps
}
