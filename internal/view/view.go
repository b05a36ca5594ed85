// Package view derives filtered rows, category counts, and pill state
// from the working set. Everything here is a pure function of its inputs.
package view

import (
	"sort"
	"strings"

	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/taxonomy"
)

// Category filter sentinels. Any other value is a concrete category name.
const (
	FilterAll       = "all"
	FilterImportant = "--important"
)

// View-status filter values.
const (
	StatusAll      = "all-status"
	StatusUnviewed = "unviewed"
	StatusViewed   = "viewed"
)

// Filters is the current filter state.
type Filters struct {
	Category      string // FilterAll, FilterImportant, or a category name
	ViewStatus    string // StatusAll, StatusUnviewed, or StatusViewed
	Search        string // case-insensitive substring over title/summary/url
	SortAscending bool   // default newest first
}

// DefaultFilters returns the initial filter state.
func DefaultFilters() Filters {
	return Filters{Category: FilterAll, ViewStatus: StatusAll}
}

// Pill is one category filter button.
type Pill struct {
	ID    string // filter value: FilterAll, FilterImportant, or category
	Count int
}

// Projection is the derived view over a working set.
type Projection struct {
	Rows   []model.Item   // filtered and sorted
	Counts map[string]int // over the unfiltered set, keyed by category
	Total  int            // len(Rows), the "N results found" figure
	Pills  []Pill
}

// Apply computes the projection for items under the given taxonomy and
// filters. Filter order is fixed: view status, then category/importance,
// then search.
func Apply(items []model.Item, tax taxonomy.Snapshot, f Filters) Projection {
	counts := Counts(items, tax)

	filtered := make([]model.Item, 0, len(items))
	query := strings.ToLower(f.Search)
	for _, item := range items {
		if f.ViewStatus == StatusUnviewed && item.IsViewed {
			continue
		}
		if f.ViewStatus == StatusViewed && !item.IsViewed {
			continue
		}

		switch f.Category {
		case FilterAll:
		case FilterImportant:
			if !item.IsImportant {
				continue
			}
		default:
			if !contains(item.Categories, f.Category) {
				continue
			}
		}

		if query != "" && !matchesSearch(item, query) {
			continue
		}

		filtered = append(filtered, item)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if f.SortAscending {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		return filtered[j].CreatedAt.Before(filtered[i].CreatedAt)
	})

	return Projection{
		Rows:   filtered,
		Counts: counts,
		Total:  len(filtered),
		Pills:  Pills(counts, tax),
	}
}

// Counts tallies the unfiltered working set: "all" is the total, each
// current taxonomy category counts items carrying it, and "--important"
// counts flagged items. Categories deleted from the taxonomy get no key;
// items referencing only deleted categories still count under "all".
func Counts(items []model.Item, tax taxonomy.Snapshot) map[string]int {
	counts := make(map[string]int, len(tax.Categories)+2)
	for _, c := range tax.Categories {
		counts[c] = 0
	}
	counts[FilterAll] = len(items)

	important := 0
	for _, item := range items {
		for _, c := range item.Categories {
			if tax.Has(c) {
				counts[c]++
			}
		}
		if item.IsImportant {
			important++
		}
	}
	counts[FilterImportant] = important

	return counts
}

// Pills derives the visible filter pills: "all" always, "--important"
// only when non-zero, then current categories sorted case-insensitively,
// visible when non-zero except "Other" which always shows.
func Pills(counts map[string]int, tax taxonomy.Snapshot) []Pill {
	pills := []Pill{{ID: FilterAll, Count: counts[FilterAll]}}

	if counts[FilterImportant] > 0 {
		pills = append(pills, Pill{ID: FilterImportant, Count: counts[FilterImportant]})
	}

	sorted := append([]string(nil), tax.Categories...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})
	for _, c := range sorted {
		if counts[c] > 0 || c == taxonomy.Other {
			pills = append(pills, Pill{ID: c, Count: counts[c]})
		}
	}

	return pills
}

// Badges returns the categories to display for an item: stored categories
// filtered to the current taxonomy, or ["Other"] when none survive. The
// item's stored data is never mutated.
func Badges(item model.Item, tax taxonomy.Snapshot) []string {
	var badges []string
	for _, c := range item.Categories {
		if tax.Has(c) {
			badges = append(badges, c)
		}
	}
	if len(badges) == 0 {
		badges = []string{taxonomy.Other}
	}
	return badges
}

func matchesSearch(item model.Item, query string) bool {
	return strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.Summary), query) ||
		strings.Contains(strings.ToLower(item.URL), query)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
