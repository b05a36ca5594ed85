package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nikbrunner/sift/internal/model"
)

func TestMergeBookmark_FieldPrecedence(t *testing.T) {
	createdAt := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	b := model.Bookmark{
		ID:        "b1",
		Title:     "TanStack Router",
		URL:       "https://tanstack.com/router",
		CreatedAt: createdAt,
	}
	e := model.CacheEntry{
		Categories:  []string{"Programming", "Reference"},
		Summary:     "Type-safe router for React applications.",
		IsImportant: true,
		IsViewed:    true,
	}

	item := model.MergeBookmark(b, e)

	// Identity fields come from the bookmark
	if item.ID != "b1" {
		t.Errorf("ID mismatch: got %q, want %q", item.ID, "b1")
	}
	if item.Title != b.Title {
		t.Errorf("Title mismatch: got %q, want %q", item.Title, b.Title)
	}
	if item.URL != b.URL {
		t.Errorf("URL mismatch: got %q, want %q", item.URL, b.URL)
	}
	if !item.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", item.CreatedAt, createdAt)
	}

	// Classification fields come from the entry
	if len(item.Categories) != 2 || item.Categories[0] != "Programming" {
		t.Errorf("Categories mismatch: got %v", item.Categories)
	}
	if item.Summary != e.Summary {
		t.Errorf("Summary mismatch: got %q", item.Summary)
	}
	if !item.IsImportant || !item.IsViewed {
		t.Errorf("flags not taken from entry: important=%v viewed=%v", item.IsImportant, item.IsViewed)
	}
}

func TestMergeBookmark_FlagsDefaultFalse(t *testing.T) {
	// Older cache entries have no flags; they must default to false.
	var e model.CacheEntry
	if err := json.Unmarshal([]byte(`{"categories":["Other"],"summary":"s"}`), &e); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	item := model.MergeBookmark(model.Bookmark{ID: "b1", URL: "https://example.com"}, e)

	if item.IsImportant || item.IsViewed {
		t.Errorf("expected flags false, got important=%v viewed=%v", item.IsImportant, item.IsViewed)
	}
}

func TestNewBookmark(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		Title: "Hacker News",
		URL:   "https://news.ycombinator.com",
	})

	if b.ID == "" {
		t.Error("expected generated ID")
	}
	if b.CreatedAt.IsZero() {
		t.Error("expected creation timestamp")
	}
	if b.Title != "Hacker News" || b.URL != "https://news.ycombinator.com" {
		t.Errorf("unexpected bookmark: %+v", b)
	}
}
