// Package app owns the application state: the working set, filter state,
// taxonomy, and cache, plus every user-facing operation over them. No
// other package holds mutable state.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nikbrunner/sift/internal/ai"
	"github.com/nikbrunner/sift/internal/cache"
	"github.com/nikbrunner/sift/internal/classify"
	"github.com/nikbrunner/sift/internal/exporter"
	"github.com/nikbrunner/sift/internal/kv"
	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/pagetext"
	"github.com/nikbrunner/sift/internal/reconcile"
	"github.com/nikbrunner/sift/internal/source"
	"github.com/nikbrunner/sift/internal/taxonomy"
	"github.com/nikbrunner/sift/internal/view"
)

// ThemeKey is the kv key for the theme preference.
const ThemeKey = "themeMode"

// ExportFilename is the default name for JSON exports.
const ExportFilename = "ai_bookmarks_export.json"

var (
	ErrScanInFlight      = errors.New("a scan is already running")
	ErrNothingToExport   = errors.New("no data to export; scan your bookmarks first")
	ErrNotBookmarkable   = errors.New("this page cannot be bookmarked")
	ErrAlreadyBookmarked = errors.New("page is already bookmarked")
	ErrItemNotFound      = errors.New("item not found")
)

// Params holds the capabilities an App is built from.
type Params struct {
	KV         kv.Store
	Source     source.Source
	Classifier ai.Classifier
	Pages      pagetext.Provider // optional
	Logger     *slog.Logger      // optional
}

// App is the single owner of mutable application state. All state lives
// behind one mutex so a running scan and user-driven edits stay
// consistent; user operations are synchronous with respect to each other.
type App struct {
	kv         kv.Store
	source     source.Source
	classifier ai.Classifier
	pages      pagetext.Provider
	logger     *slog.Logger

	mu         sync.Mutex
	taxonomy   *taxonomy.Store
	cache      *cache.Cache
	items      []model.Item // working set, most recently processed first
	pending    []model.Bookmark
	filters    view.Filters
	projection view.Projection
	scanning   bool
}

// New creates an App from its capabilities. Call Load before anything else.
func New(params Params) *App {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		kv:         params.KV,
		source:     params.Source,
		classifier: params.Classifier,
		pages:      params.Pages,
		logger:     logger,
		filters:    view.DefaultFilters(),
	}
}

// Load reads persisted state and reconciles it with the bookmark store:
// bookmarks with a cache entry form the working set, the rest become
// pending. Classification never starts here; that takes an explicit Scan.
func (a *App) Load(ctx context.Context) error {
	bookmarks, err := a.source.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("enumerate bookmarks: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.taxonomy = taxonomy.Load(a.kv)
	a.taxonomy.OnChange = a.recomputeLocked // mutations run under a.mu

	c, err := cache.Load(a.kv)
	if err != nil {
		return err
	}
	a.cache = c

	a.items, a.pending = reconcile.Split(bookmarks, c.Entries())
	a.recomputeLocked()
	return nil
}

// PendingCount returns how many bookmarks still need classification.
func (a *App) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Scanning reports whether a scan is running.
func (a *App) Scanning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scanning
}

// ScanParams carries optional progress reporting for Scan.
type ScanParams struct {
	Progress func(done, total int)
	Events   chan<- ai.ProgressEvent
}

// Scan classifies all pending bookmarks, writing through the cache and
// front-inserting each finished item. Only one scan may run at a time;
// a second call returns ErrScanInFlight. Per-item failures degrade to
// fallback entries; a session open failure aborts the scan.
func (a *App) Scan(ctx context.Context, params ScanParams) error {
	a.mu.Lock()
	if a.scanning {
		a.mu.Unlock()
		return ErrScanInFlight
	}
	a.scanning = true
	pending := append([]model.Bookmark(nil), a.pending...)
	batch := a.newBatchLocked(params)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.scanning = false
		a.mu.Unlock()
	}()

	return batch.Run(ctx, pending, a.insert)
}

// newBatchLocked builds the batch engine; a.mu must be held.
func (a *App) newBatchLocked(params ScanParams) *classify.Batch {
	return &classify.Batch{
		Classifier: a.classifier,
		Cache:      a.cache,
		Snapshot: func() taxonomy.Snapshot {
			a.mu.Lock()
			defer a.mu.Unlock()
			return a.taxonomy.Snapshot()
		},
		Pages:    a.pages,
		Logger:   a.logger,
		Progress: params.Progress,
		Events:   params.Events,
	}
}

// insert front-inserts a freshly classified item and recomputes the view.
func (a *App) insert(item model.Item) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items = append([]model.Item{item}, a.items...)
	for i, b := range a.pending {
		if b.URL == item.URL {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			break
		}
	}
	a.recomputeLocked()
}

// ToggleImportant flips the important flag for the item with the given
// URL, persisting the change. The flip survives in memory even when
// persistence fails; the error is returned for display.
func (a *App) ToggleImportant(url string) error {
	return a.toggleFlag(url, func(item *model.Item, entry *model.CacheEntry) {
		item.IsImportant = !item.IsImportant
		entry.IsImportant = item.IsImportant
	})
}

// ToggleViewed flips the viewed flag for the item with the given URL.
func (a *App) ToggleViewed(url string) error {
	return a.toggleFlag(url, func(item *model.Item, entry *model.CacheEntry) {
		item.IsViewed = !item.IsViewed
		entry.IsViewed = item.IsViewed
	})
}

func (a *App) toggleFlag(url string, flip func(*model.Item, *model.CacheEntry)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i := range a.items {
		if a.items[i].URL == url {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrItemNotFound
	}

	entry, ok := a.cache.Get(url)
	if !ok {
		entry = model.CacheEntry{
			Categories: a.items[idx].Categories,
			Summary:    a.items[idx].Summary,
		}
	}
	flip(&a.items[idx], &entry)
	err := a.cache.Put(url, entry)

	a.recomputeLocked()
	return err
}

// Delete removes the bookmark with the given id from the bookmark store,
// the cache, and the working set. When the store refuses the delete, the
// item is still removed locally so the view stays consistent, and the
// error is returned for display.
func (a *App) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	url := ""
	for _, item := range a.items {
		if item.ID == id {
			url = item.URL
			break
		}
	}
	a.mu.Unlock()
	if url == "" {
		return ErrItemNotFound
	}

	removeErr := a.source.Remove(ctx, id)

	a.mu.Lock()
	defer a.mu.Unlock()

	if removeErr == nil {
		if err := a.cache.Delete(url); err != nil {
			a.logger.Warn("cache delete failed", "url", url, "error", err)
		}
	}

	kept := a.items[:0]
	for _, item := range a.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	a.items = kept
	a.recomputeLocked()

	if removeErr != nil {
		return fmt.Errorf("delete bookmark: %w", removeErr)
	}
	return nil
}

// AddCategory appends a new taxonomy category. The taxonomy store rolls
// back on persistence failure; on success the view recomputes via its
// change hook.
func (a *App) AddCategory(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.taxonomy.Add(name)
}

// RemoveCategory deletes a taxonomy category. Items keep the removed name
// in their stored categories; it just stops counting and rendering.
func (a *App) RemoveCategory(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.taxonomy.Remove(name)
}

// Categories returns the current ordered category list.
func (a *App) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.taxonomy.Snapshot().Categories
}

// AddPage bookmarks the given page and classifies it immediately with a
// one-shot session, using the same fallback policy as a scan. The
// bookmark survives a classification failure; only creation failures and
// session-open failures are returned as errors.
func (a *App) AddPage(ctx context.Context, title, url string) error {
	if !source.BookmarkableURL(url) {
		return ErrNotBookmarkable
	}

	existing, err := a.source.Search(ctx, url)
	if err != nil {
		return fmt.Errorf("search bookmarks: %w", err)
	}
	if len(existing) > 0 {
		return ErrAlreadyBookmarked
	}

	bookmark, err := a.source.Create(ctx, model.NewBookmarkParams{Title: title, URL: url})
	if err != nil {
		return fmt.Errorf("create bookmark: %w", err)
	}

	session, err := a.classifier.Open(ctx, nil)
	if err != nil {
		a.mu.Lock()
		a.pending = append(a.pending, bookmark)
		a.mu.Unlock()
		return fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = session.Close() }()

	a.mu.Lock()
	batch := a.newBatchLocked(ScanParams{})
	a.mu.Unlock()

	entry := batch.One(ctx, session, bookmark)
	if err := a.cache.Put(bookmark.URL, entry); err != nil {
		a.logger.Warn("cache write failed", "url", bookmark.URL, "error", err)
	}
	a.insert(model.MergeBookmark(bookmark, entry))
	return nil
}

// ExportJSON writes the working set as an indented JSON document.
func (a *App) ExportJSON(w io.Writer) error {
	a.mu.Lock()
	items := append([]model.Item(nil), a.items...)
	a.mu.Unlock()

	if err := exporter.WriteJSON(w, items); err != nil {
		if errors.Is(err, exporter.ErrNoData) {
			return ErrNothingToExport
		}
		return err
	}
	return nil
}

// Reset clears the persisted cache and taxonomy so the next Load reseeds
// from scratch. In-memory state is cleared too; callers should Load again.
func (a *App) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.kv.Remove(cache.StorageKey, taxonomy.StorageKey); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	a.items = nil
	a.pending = nil
	a.filters = view.DefaultFilters()
	a.projection = view.Projection{}
	return nil
}

// SetFilters replaces the filter state and recomputes the projection.
func (a *App) SetFilters(f view.Filters) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters = f
	a.recomputeLocked()
}

// Filters returns the current filter state.
func (a *App) Filters() view.Filters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filters
}

// Projection returns the current derived view.
func (a *App) Projection() view.Projection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.projection
}

// Items returns a snapshot of the working set.
func (a *App) Items() []model.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Item(nil), a.items...)
}

// Taxonomy returns the current taxonomy snapshot.
func (a *App) Taxonomy() taxonomy.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.taxonomy.Snapshot()
}

// Theme returns the persisted theme preference, empty when unset.
func (a *App) Theme() string {
	data, ok, err := a.kv.Get(ThemeKey)
	if err != nil || !ok {
		return ""
	}
	return string(data)
}

// SetTheme persists the theme preference ("dark" or "light").
func (a *App) SetTheme(mode string) {
	if err := a.kv.Set(ThemeKey, []byte(mode)); err != nil {
		a.logger.Warn("theme not saved", "error", err)
	}
}

// recomputeLocked rebuilds the projection; a.mu must be held.
func (a *App) recomputeLocked() {
	a.projection = view.Apply(a.items, a.taxonomy.Snapshot(), a.filters)
}
