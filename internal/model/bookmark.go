package model

import "time"

// Bookmark is one saved link as enumerated from the bookmark source.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"` // zero = unknown, sorts as oldest
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title string
	URL   string
}

// NewBookmark creates a Bookmark with generated UUID and creation timestamp.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		ID:        generateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		CreatedAt: time.Now(),
	}
}
