package model

import "time"

// CacheEntry is the persisted classification record for one URL.
type CacheEntry struct {
	Categories  []string `json:"categories"`
	Summary     string   `json:"summary"`
	IsImportant bool     `json:"isImportant"`
	IsViewed    bool     `json:"isViewed"`
}

// Item is one bookmark merged with its classification and user flags.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
	Categories  []string  `json:"categories"`
	Summary     string    `json:"summary"`
	IsImportant bool      `json:"isImportant"`
	IsViewed    bool      `json:"isViewed"`
}

// MergeBookmark joins a bookmark with its cache entry into an Item.
//
// Field precedence:
//   - id, title, url, createdAt always come from the bookmark
//   - categories, summary, isImportant, isViewed always come from the entry
//
// Flags absent from an older entry are false by zero value.
func MergeBookmark(b Bookmark, e CacheEntry) Item {
	return Item{
		ID:          b.ID,
		Title:       b.Title,
		URL:         b.URL,
		CreatedAt:   b.CreatedAt,
		Categories:  e.Categories,
		Summary:     e.Summary,
		IsImportant: e.IsImportant,
		IsViewed:    e.IsViewed,
	}
}
