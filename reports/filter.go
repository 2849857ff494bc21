package reports

import "strings"

// CategoryAll is the sentinel the category filter uses for "unconstrained".
// An empty category filter is NOT unconstrained: it matches rows whose
// category is empty. Calling code relies on this asymmetry, so it stays.
const CategoryAll = "all"

// Searchable is implemented by the list views (patients, medicines, report
// rows) that SearchFiltered operates on.
type Searchable interface {
	// SearchTargets returns the fields the free-text search matches against,
	// ORed together.
	SearchTargets() []string
	// FilterCategory returns the value compared against FilterSpec.Category.
	FilterCategory() string
	// FilterDate returns the value compared against FilterSpec.DatePrefix.
	FilterDate() string
}

// FilterSpec is the shared multi-field filter. Provided fields are ANDed;
// within the free-text search the item's targets are ORed. Empty string
// means "no constraint" for Search and DatePrefix; Category uses the
// CategoryAll sentinel instead.
type FilterSpec struct {
	Search     string
	Category   string
	DatePrefix string
}

// SearchFiltered applies spec to items and returns the survivors in input
// order.
func SearchFiltered[T Searchable](items []T, spec FilterSpec) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, spec) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item Searchable, spec FilterSpec) bool {
	if spec.Search != "" {
		lower := strings.ToLower(spec.Search)
		hit := false
		for _, target := range item.SearchTargets() {
			if strings.Contains(strings.ToLower(target), lower) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if spec.Category != CategoryAll && !strings.EqualFold(item.FilterCategory(), spec.Category) {
		return false
	}
	if spec.DatePrefix != "" && !strings.HasPrefix(item.FilterDate(), spec.DatePrefix) {
		return false
	}
	return true
}
