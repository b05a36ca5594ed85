// Package cache persists classification results keyed by bookmark URL.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nikbrunner/sift/internal/kv"
	"github.com/nikbrunner/sift/internal/model"
)

// StorageKey is the key the full cache map is persisted under.
const StorageKey = "aiBookmarkCache"

// Cache maps bookmark URLs to their classification entries. Every mutation
// rewrites the whole map to the kv store so partial progress survives an
// interrupted batch. On a persistence error the in-memory map keeps the
// mutation and may lead storage until a later write retries it; the error
// is returned for the caller to surface.
//
// Safe for concurrent use: a running scan writes through while user edits
// update flags.
type Cache struct {
	mu      sync.Mutex
	kv      kv.Store
	entries map[string]model.CacheEntry
}

// Load reads the persisted cache map. An absent key yields an empty cache.
func Load(store kv.Store) (*Cache, error) {
	c := &Cache{kv: store, entries: map[string]model.CacheEntry{}}

	data, ok, err := store.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &c.entries); err != nil {
			return nil, fmt.Errorf("decode cache: %w", err)
		}
	}
	return c, nil
}

// Get returns the entry for url, and whether one exists.
func (c *Cache) Get(url string) (model.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	return e, ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entries returns a copied snapshot of the cache map.
func (c *Cache) Entries() map[string]model.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]model.CacheEntry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Put upserts the entry for url and persists the full map.
func (c *Cache) Put(url string, entry model.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = entry
	return c.persist()
}

// Delete removes the entry for url and persists the full map. Deleting a
// missing url is a no-op.
func (c *Cache) Delete(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; !ok {
		return nil
	}
	delete(c.entries, url)
	return c.persist()
}

// Clear removes every entry and the persisted key.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]model.CacheEntry{}
	return c.kv.Remove(StorageKey)
}

func (c *Cache) persist() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return err
	}
	if err := c.kv.Set(StorageKey, data); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}
