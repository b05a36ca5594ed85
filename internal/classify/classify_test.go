package classify_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/nikbrunner/sift/internal/ai"
	"github.com/nikbrunner/sift/internal/cache"
	"github.com/nikbrunner/sift/internal/classify"
	"github.com/nikbrunner/sift/internal/kv"
	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/taxonomy"
)

// fakeSession returns canned results keyed by URL.
type fakeSession struct {
	classify func(req ai.Request) (*ai.Result, error)
	closed   bool
}

func (s *fakeSession) Classify(_ context.Context, req ai.Request) (*ai.Result, error) {
	return s.classify(req)
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeClassifier tracks session opens and can fail the Nth one.
type fakeClassifier struct {
	classify   func(req ai.Request) (*ai.Result, error)
	opens      int
	failOpenAt int // fail the Nth open, 0 = never
	sessions   []*fakeSession
}

func (c *fakeClassifier) Open(_ context.Context, _ chan<- ai.ProgressEvent) (ai.Session, error) {
	c.opens++
	if c.failOpenAt > 0 && c.opens == c.failOpenAt {
		return nil, errors.New("model unavailable")
	}
	s := &fakeSession{classify: c.classify}
	c.sessions = append(c.sessions, s)
	return s, nil
}

func loadTaxonomy(t *testing.T, categories ...string) *taxonomy.Store {
	t.Helper()
	store := kv.NewMemory()
	data, _ := json.Marshal(categories)
	if err := store.Set(taxonomy.StorageKey, data); err != nil {
		t.Fatal(err)
	}
	return taxonomy.Load(store)
}

func newBatch(t *testing.T, classifier ai.Classifier, categories ...string) (*classify.Batch, *cache.Cache, kv.Store) {
	t.Helper()
	store := kv.NewMemory()
	c, err := cache.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	tax := loadTaxonomy(t, categories...)
	return &classify.Batch{
		Classifier: classifier,
		Cache:      c,
		Snapshot:   tax.Snapshot,
	}, c, store
}

func pendingN(n int) []model.Bookmark {
	out := make([]model.Bookmark, n)
	for i := range out {
		out[i] = model.Bookmark{
			ID:    fmt.Sprintf("b%d", i+1),
			Title: fmt.Sprintf("t%d", i+1),
			URL:   fmt.Sprintf("https://example.com/%d", i+1),
		}
	}
	return out
}

func TestNormalize(t *testing.T) {
	tax := loadTaxonomy(t, "AI", taxonomy.Other).Snapshot()

	tests := []struct {
		name           string
		result         *ai.Result
		wantCategories []string
		wantSummary    string
	}{
		{
			name:           "valid categories filtered to taxonomy",
			result:         &ai.Result{Categories: []string{"AI", "Bogus"}, Summary: "s"},
			wantCategories: []string{"AI"},
			wantSummary:    "s",
		},
		{
			name:           "all categories bogus falls back to Other",
			result:         &ai.Result{Categories: []string{"Bogus"}, Summary: "s"},
			wantCategories: []string{taxonomy.Other},
			wantSummary:    "s",
		},
		{
			name:           "nil result yields fallback entry",
			result:         nil,
			wantCategories: []string{taxonomy.Other},
			wantSummary:    classify.FallbackSummary,
		},
		{
			name:           "empty categories keeps returned summary",
			result:         &ai.Result{Summary: "partial"},
			wantCategories: []string{taxonomy.Other},
			wantSummary:    "partial",
		},
		{
			name:           "empty summary yields fallback",
			result:         &ai.Result{Categories: []string{"AI"}},
			wantCategories: []string{taxonomy.Other},
			wantSummary:    classify.FallbackSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := classify.Normalize(tt.result, tax)

			if len(entry.Categories) != len(tt.wantCategories) {
				t.Fatalf("categories = %v, want %v", entry.Categories, tt.wantCategories)
			}
			for i, c := range tt.wantCategories {
				if entry.Categories[i] != c {
					t.Errorf("categories = %v, want %v", entry.Categories, tt.wantCategories)
				}
			}
			if entry.Summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", entry.Summary, tt.wantSummary)
			}
			if entry.IsImportant || entry.IsViewed {
				t.Error("fresh entries must have false flags")
			}
		})
	}
}

func TestNormalize_OnlyOtherInTaxonomy(t *testing.T) {
	tax := loadTaxonomy(t, taxonomy.Other).Snapshot()

	entry := classify.Normalize(&ai.Result{Categories: []string{"Bogus"}, Summary: "s"}, tax)

	if len(entry.Categories) != 1 || entry.Categories[0] != taxonomy.Other {
		t.Errorf("categories = %v, want [Other]", entry.Categories)
	}
	if entry.Summary != "s" {
		t.Errorf("summary = %q, want s", entry.Summary)
	}
}

func TestBatch_WritesThroughAfterEachItem(t *testing.T) {
	classifier := &fakeClassifier{
		classify: func(req ai.Request) (*ai.Result, error) {
			return &ai.Result{Categories: []string{"AI"}, Summary: "summary of " + req.URL}, nil
		},
	}
	batch, c, store := newBatch(t, classifier, "AI", taxonomy.Other)

	var inserted []model.Item
	err := batch.Run(context.Background(), pendingN(3), func(item model.Item) {
		inserted = append(inserted, item)
	})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	if len(inserted) != 3 {
		t.Fatalf("expected 3 inserts, got %d", len(inserted))
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 cache entries, got %d", c.Len())
	}

	// The full map must be persisted, not just held in memory.
	reloaded, err := cache.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 3 {
		t.Errorf("expected 3 persisted entries, got %d", reloaded.Len())
	}

	if classifier.opens != 1 {
		t.Errorf("expected 1 session for a small batch, got %d", classifier.opens)
	}
	if !classifier.sessions[0].closed {
		t.Error("session not closed after batch")
	}
}

func TestBatch_PerItemFailureDoesNotAbort(t *testing.T) {
	classifier := &fakeClassifier{
		classify: func(req ai.Request) (*ai.Result, error) {
			if req.URL == "https://example.com/2" {
				return nil, errors.New("model exploded")
			}
			return &ai.Result{Categories: []string{"AI"}, Summary: "s"}, nil
		},
	}
	batch, c, _ := newBatch(t, classifier, "AI", taxonomy.Other)

	var inserted []model.Item
	err := batch.Run(context.Background(), pendingN(5), func(item model.Item) {
		inserted = append(inserted, item)
	})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	if len(inserted) != 5 {
		t.Fatalf("expected all 5 items processed, got %d", len(inserted))
	}
	if c.Len() != 5 {
		t.Fatalf("expected 5 cache entries, got %d", c.Len())
	}

	degraded, ok := c.Get("https://example.com/2")
	if !ok {
		t.Fatal("failed item missing from cache")
	}
	if degraded.Summary != classify.FallbackSummary {
		t.Errorf("summary = %q, want fallback", degraded.Summary)
	}
	if len(degraded.Categories) != 1 || degraded.Categories[0] != taxonomy.Other {
		t.Errorf("categories = %v, want [Other]", degraded.Categories)
	}

	healthy, _ := c.Get("https://example.com/3")
	if healthy.Summary != "s" {
		t.Errorf("item after the failure got %q", healthy.Summary)
	}
}

func TestBatch_RecyclesSessionAtThreshold(t *testing.T) {
	classifier := &fakeClassifier{
		classify: func(req ai.Request) (*ai.Result, error) {
			return &ai.Result{Categories: []string{"AI"}, Summary: "s"}, nil
		},
	}
	batch, c, _ := newBatch(t, classifier, "AI", taxonomy.Other)

	err := batch.Run(context.Background(), pendingN(classify.SessionRecycleAfter+1), func(model.Item) {})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	// One reopen after exactly SessionRecycleAfter processed items
	if classifier.opens != 2 {
		t.Errorf("expected 2 session opens for %d items, got %d",
			classify.SessionRecycleAfter+1, classifier.opens)
	}
	if !classifier.sessions[0].closed {
		t.Error("recycled session not closed")
	}
	if c.Len() != classify.SessionRecycleAfter+1 {
		t.Errorf("expected %d entries, got %d", classify.SessionRecycleAfter+1, c.Len())
	}
}

func TestBatch_NoRecycleAtExactThreshold(t *testing.T) {
	classifier := &fakeClassifier{
		classify: func(req ai.Request) (*ai.Result, error) {
			return &ai.Result{Categories: []string{"AI"}, Summary: "s"}, nil
		},
	}
	batch, _, _ := newBatch(t, classifier, "AI", taxonomy.Other)

	err := batch.Run(context.Background(), pendingN(classify.SessionRecycleAfter), func(model.Item) {})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if classifier.opens != 1 {
		t.Errorf("expected 1 session open for %d items, got %d",
			classify.SessionRecycleAfter, classifier.opens)
	}
}

func TestBatch_OpenFailureIsFatal(t *testing.T) {
	classifier := &fakeClassifier{failOpenAt: 1}
	batch, c, _ := newBatch(t, classifier, taxonomy.Other)

	err := batch.Run(context.Background(), pendingN(3), func(model.Item) {
		t.Error("sink called despite open failure")
	})
	if err == nil {
		t.Fatal("expected error from session open failure")
	}
	if c.Len() != 0 {
		t.Errorf("expected no cache writes, got %d", c.Len())
	}
}

func TestBatch_ReopenFailureAbortsRemainder(t *testing.T) {
	classifier := &fakeClassifier{
		classify: func(req ai.Request) (*ai.Result, error) {
			return &ai.Result{Categories: []string{"AI"}, Summary: "s"}, nil
		},
		failOpenAt: 2,
	}
	batch, c, _ := newBatch(t, classifier, "AI", taxonomy.Other)

	err := batch.Run(context.Background(), pendingN(classify.SessionRecycleAfter+5), func(model.Item) {})
	if err == nil {
		t.Fatal("expected error from reopen failure")
	}

	// Everything before the recycle point survived
	if c.Len() != classify.SessionRecycleAfter {
		t.Errorf("expected %d entries before abort, got %d", classify.SessionRecycleAfter, c.Len())
	}
	if !classifier.sessions[0].closed {
		t.Error("aborting batch must close the open session")
	}
}

func TestBatch_EmptyPending(t *testing.T) {
	classifier := &fakeClassifier{}
	batch, _, _ := newBatch(t, classifier, taxonomy.Other)

	if err := batch.Run(context.Background(), nil, func(model.Item) {}); err != nil {
		t.Fatalf("empty batch errored: %v", err)
	}
	if classifier.opens != 0 {
		t.Error("session opened for empty batch")
	}
}

func TestBatch_ReportsProgress(t *testing.T) {
	classifier := &fakeClassifier{
		classify: func(req ai.Request) (*ai.Result, error) {
			return &ai.Result{Categories: []string{"AI"}, Summary: "s"}, nil
		},
	}
	batch, _, _ := newBatch(t, classifier, "AI", taxonomy.Other)

	var seen []int
	batch.Progress = func(done, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		seen = append(seen, done)
	}

	if err := batch.Run(context.Background(), pendingN(3), func(model.Item) {}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("progress sequence = %v, want [1 2 3]", seen)
	}
}
