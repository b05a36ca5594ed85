// Package source provides the bookmark store capability.
package source

import (
	"context"
	"strings"

	"github.com/nikbrunner/sift/internal/model"
)

// Source defines the interface for the underlying bookmark store.
type Source interface {
	// Enumerate returns all bookmarks, deduplicated by URL (first
	// occurrence wins) and excluding non-http(s) URLs.
	Enumerate(ctx context.Context) ([]model.Bookmark, error)
	// Create stores a new bookmark and returns it with id and timestamp.
	Create(ctx context.Context, params model.NewBookmarkParams) (model.Bookmark, error)
	// Remove deletes the bookmark with the given id.
	Remove(ctx context.Context, id string) error
	// Search returns bookmarks whose URL matches exactly. Used to detect
	// "already bookmarked".
	Search(ctx context.Context, url string) ([]model.Bookmark, error)
}

// BookmarkableURL reports whether url uses a scheme worth triaging.
// Browser-internal and file schemes are excluded.
func BookmarkableURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Dedup filters bookmarks to bookmarkable URLs, keeping the first
// occurrence of each URL.
func Dedup(bookmarks []model.Bookmark) []model.Bookmark {
	seen := make(map[string]struct{}, len(bookmarks))
	result := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if !BookmarkableURL(b.URL) {
			continue
		}
		if _, ok := seen[b.URL]; ok {
			continue
		}
		seen[b.URL] = struct{}{}
		result = append(result, b)
	}
	return result
}
