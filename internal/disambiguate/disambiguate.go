// Package disambiguate rewrites expressions that reference columns a lookup
// step re-exported under collision-suffixed names, replacing them with
// explicit stream-qualified references.
package disambiguate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

var numericSuffixRe = regexp.MustCompile(`^(.+?)(\d+)$`)

// BuildCaseTable maps lowercased column names from all source schemas to
// their original spelling. The same lowercase name appearing with two
// spellings is a non-fatal conflict; the first spelling wins. The table is
// built once per mapping and read-only afterwards.
func BuildCaseTable(sources []domain.Source, diags *domain.Diagnostics) map[string]string {
	table := make(map[string]string)
	for _, src := range sources {
		for _, f := range src.Fields {
			key := strings.ToLower(f.Name)
			if existing, ok := table[key]; ok {
				if existing != f.Name {
					diags.Warnf(domain.DiagNameConflict, src.Name,
						"column %q conflicts with existing spelling %q", f.Name, existing)
				}
				continue
			}
			table[key] = f.Name
		}
	}
	return table
}

// MapLookup builds the disambiguation map for one Lookup node from its
// return fields. A return field named base+digits marks a collision the
// upstream renamer suffixed: it maps to lookupDataset@base. When the bare
// base also appears among the node's outputs, the pre-lookup stream's own
// column is ambiguous too and maps to mainInput@base.
func MapLookup(node *domain.Node) domain.DisambiguationMap {
	if node.Lookup == nil {
		return nil
	}
	cfg := node.Lookup

	m := make(domain.DisambiguationMap)
	suffixedBases := make(map[string]bool)

	for _, name := range cfg.ReturnFields {
		match := numericSuffixRe.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		base := match[1]
		m[name] = cfg.Dataset + "@" + base
		suffixedBases[base] = true
	}

	if len(suffixedBases) > 0 && node.Inputs.Main != "" {
		for _, name := range cfg.Outputs {
			if suffixedBases[name] {
				m[name] = node.Inputs.Main + "@" + name
			}
		}
	}

	if len(m) == 0 {
		return nil
	}
	return m
}

// Rewrite applies the active disambiguation maps to an expression. Matching
// is whole-identifier only and never touches references already qualified
// with @. Longer original names apply first so DISCOUNT10 is never partially
// matched by a rule for DISCOUNT1.
func Rewrite(expr string, maps ...domain.DisambiguationMap) string {
	merged := make(domain.DisambiguationMap)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return expr
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		// (^|[^@\w]) stands in for a lookbehind: the name must not continue
		// a longer identifier or follow a stream qualifier.
		re := regexp.MustCompile(`(^|[^@\w])` + regexp.QuoteMeta(k) + `\b`)
		expr = re.ReplaceAllString(expr, `${1}`+merged[k])
	}
	return expr
}
