// Package reconcile splits an enumeration of bookmarks into already
// classified items and pending work.
package reconcile

import (
	"github.com/nikbrunner/sift/internal/model"
)

// Split partitions bookmarks against the cache: bookmarks with a cache
// entry merge into items (the initial working set), the rest are pending
// classification. Duplicate URLs keep the first occurrence. Classification
// of pending bookmarks only happens on an explicit scan, never here.
func Split(bookmarks []model.Bookmark, entries map[string]model.CacheEntry) (items []model.Item, pending []model.Bookmark) {
	seen := make(map[string]struct{}, len(bookmarks))
	for _, b := range bookmarks {
		if _, ok := seen[b.URL]; ok {
			continue
		}
		seen[b.URL] = struct{}{}

		if entry, ok := entries[b.URL]; ok {
			items = append(items, model.MergeBookmark(b, entry))
		} else {
			pending = append(pending, b)
		}
	}
	return items, pending
}
