// Package search fuzzy-matches working-set items by title for the quick
// search path.
package search

import (
	"github.com/nikbrunner/sift/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result is one matched item. MatchedIndexes are title rune positions for
// highlighting; higher Score ranks earlier.
type Result struct {
	Item           *model.Item
	MatchedIndexes []int
	Score          int
}

// byTitle adapts an item slice to fuzzy.Source.
type byTitle []model.Item

func (t byTitle) String(i int) string { return t[i].Title }
func (t byTitle) Len() int            { return len(t) }

// FuzzySearchItems ranks items whose title fuzzy-matches query, best match
// first. An empty query matches nothing.
func FuzzySearchItems(items []model.Item, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, byTitle(items))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Item:           &items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
