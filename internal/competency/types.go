// Package competency models occupational competencies grouped by
// element type and measurement scale.
package competency

import "sort"

// Entry is one competency observation: an element measured on one scale.
// DataValue is nil when the survey carries no numeric value for the
// observation; consumers render that as "N/A".
type Entry struct {
	ElementName string   `json:"element_name"`
	DataValue   *float64 `json:"data_value"`
	ElementID   string   `json:"element_id"`
	ScaleID     string   `json:"scale_id"`
}

// Grouped is a two-level competency structure: element type ("Skill",
// "Ability") to scale name ("Importance", "Level") to entries sorted
// descending by value. The element types are not fixed; any type
// present in the catalog appears as a top-level key.
type Grouped map[string]map[string][]Entry

// Add appends an entry under the given element type and scale.
func (g Grouped) Add(elementType, scaleName string, e Entry) {
	scales, ok := g[elementType]
	if !ok {
		scales = make(map[string][]Entry)
		g[elementType] = scales
	}
	scales[scaleName] = append(scales[scaleName], e)
}

// ElementTypes returns the top-level keys in sorted order. Catalog
// queries order rows by element type then scale name, so sorted key
// order matches the order the structure was built in.
func (g Grouped) ElementTypes() []string {
	types := make([]string, 0, len(g))
	for t := range g {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ScaleNames returns the scale keys under an element type in sorted order.
func (g Grouped) ScaleNames(elementType string) []string {
	scales := g[elementType]
	names := make([]string, 0, len(scales))
	for n := range scales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortDescending orders every scale list by descending value, entries
// without a value last. The sort is stable so equal values keep their
// catalog order.
func (g Grouped) SortDescending() {
	for _, scales := range g {
		for _, entries := range scales {
			sortEntries(entries)
		}
	}
}

// FilterTop returns a new structure with each scale list truncated to
// its top n entries by value. Filtering an already-filtered structure
// is a no-op.
func (g Grouped) FilterTop(n int) Grouped {
	filtered := make(Grouped, len(g))
	for elementType, scales := range g {
		for scaleName, entries := range scales {
			top := make([]Entry, len(entries))
			copy(top, entries)
			sortEntries(top)
			if len(top) > n {
				top = top[:n]
			}
			filtered[elementType] = appendScale(filtered[elementType], scaleName, top)
		}
	}
	return filtered
}

func appendScale(scales map[string][]Entry, name string, entries []Entry) map[string][]Entry {
	if scales == nil {
		scales = make(map[string][]Entry)
	}
	scales[name] = entries
	return scales
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].DataValue, entries[j].DataValue
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
