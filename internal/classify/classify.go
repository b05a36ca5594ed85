// Package classify drives the language model over pending bookmarks and
// normalizes its output against the current taxonomy.
package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikbrunner/sift/internal/ai"
	"github.com/nikbrunner/sift/internal/cache"
	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/pagetext"
	"github.com/nikbrunner/sift/internal/taxonomy"
)

// SessionRecycleAfter is the number of classifications after which the
// model session is closed and reopened, bounding context growth in
// long-lived sessions.
const SessionRecycleAfter = 30

// FallbackSummary is stored when the model fails to produce a usable result.
const FallbackSummary = "Unable to analyze this link."

// Batch runs sequential classification over pending bookmarks. The model
// session is stateful and single-flight, so items are processed strictly
// in order, writing through to the cache after each one so partial
// progress survives interruption.
type Batch struct {
	Classifier ai.Classifier
	Cache      *cache.Cache
	Snapshot   func() taxonomy.Snapshot
	Pages      pagetext.Provider // optional prompt enrichment, may be nil
	Logger     *slog.Logger      // optional, defaults to slog.Default

	// Progress, when set, receives (processed, total) after each item.
	Progress func(done, total int)
	// Events, when set, receives model download/load events.
	Events chan<- ai.ProgressEvent
}

// Run classifies every pending bookmark in input order. Each result is
// written to the cache and handed to sink (front-insertion into the
// working set plus view recompute are the sink's job). Per-item failures
// degrade to the fallback entry and never stop the batch; a failure to
// open or reopen a session aborts it.
func (b *Batch) Run(ctx context.Context, pending []model.Bookmark, sink func(model.Item)) error {
	if len(pending) == 0 {
		return nil
	}

	session, err := b.Classifier.Open(ctx, b.Events)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		// session is nil when a mid-batch reopen failed.
		if session != nil {
			_ = session.Close()
		}
	}()

	total := len(pending)
	counter := 0

	for i, bookmark := range pending {
		if counter >= SessionRecycleAfter {
			_ = session.Close()
			session, err = b.Classifier.Open(ctx, b.Events)
			if err != nil {
				return fmt.Errorf("reopen session: %w", err)
			}
			counter = 0
		}

		entry := b.One(ctx, session, bookmark)

		if err := b.Cache.Put(bookmark.URL, entry); err != nil {
			// In-memory state already has the entry; keep going.
			b.logger().Warn("cache write failed", "url", bookmark.URL, "error", err)
		}
		sink(model.MergeBookmark(bookmark, entry))

		counter++
		if b.Progress != nil {
			b.Progress(i+1, total)
		}
	}

	return nil
}

// One classifies a single bookmark through an open session, applying the
// same normalization and fallback policy as a batch run. It never fails:
// unusable model output degrades to the fallback entry.
func (b *Batch) One(ctx context.Context, session ai.Session, bookmark model.Bookmark) model.CacheEntry {
	snap := b.Snapshot()

	req := ai.Request{
		Title:      bookmark.Title,
		URL:        bookmark.URL,
		Categories: snap.Categories,
	}
	if b.Pages != nil {
		text, err := b.Pages.Text(ctx, bookmark.URL)
		if err != nil {
			b.logger().Debug("page text unavailable", "url", bookmark.URL, "error", err)
		} else {
			req.PageText = pagetext.Collapse(text)
		}
	}

	result, err := session.Classify(ctx, req)
	if err != nil {
		b.logger().Warn("classification failed", "url", bookmark.URL, "error", err)
		result = nil
	}

	return Normalize(result, snap)
}

// Normalize converts raw model output into a cache entry.
//
// A usable result has a non-empty summary and at least one category;
// categories outside the current taxonomy are dropped, and an empty
// remainder becomes ["Other"]. An unusable result yields the fallback
// entry, keeping the model's summary when it produced one.
func Normalize(result *ai.Result, tax taxonomy.Snapshot) model.CacheEntry {
	if result == nil || result.Summary == "" || len(result.Categories) == 0 {
		summary := FallbackSummary
		if result != nil && result.Summary != "" {
			summary = result.Summary
		}
		return model.CacheEntry{
			Categories: []string{taxonomy.Other},
			Summary:    summary,
		}
	}

	valid := make([]string, 0, len(result.Categories))
	for _, c := range result.Categories {
		if tax.Has(c) {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		valid = []string{taxonomy.Other}
	}

	return model.CacheEntry{
		Categories: valid,
		Summary:    result.Summary,
	}
}

func (b *Batch) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
