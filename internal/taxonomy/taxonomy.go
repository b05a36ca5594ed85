// Package taxonomy owns the mutable set of valid bookmark categories.
package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/sift/internal/kv"
)

// Other is the permanent catch-all category. It is always present and
// cannot be removed.
const Other = "Other"

// StorageKey is the key the category list is persisted under.
const StorageKey = "userCategories"

// defaultCategories seeds the store on first run.
var defaultCategories = []string{
	"AI",
	"Art",
	"Event",
	"Utility",
	"Job",
	"Portfolio",
	"Programming",
	"Reference",
	"Shopping",
	"Social",
	"Devtool",
	"Entertainment",
	"WebDev Agency",
	Other,
}

var (
	ErrEmptyName     = errors.New("category name is empty")
	ErrAlreadyExists = errors.New("category already exists")
	ErrNotFound      = errors.New("category not found")
	ErrRemoveOther   = errors.New(`the "Other" category cannot be removed`)
)

// Snapshot is a read-only view of the taxonomy: the ordered category list
// plus a membership set for O(1) validity checks.
type Snapshot struct {
	Categories []string
	members    map[string]struct{}
}

// Has reports whether name is a current valid category.
func (s Snapshot) Has(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Store holds the category list and persists it through a kv.Store.
// It is not safe for concurrent use; the app drives it from one goroutine.
type Store struct {
	kv         kv.Store
	categories []string

	// OnChange, when set, is called synchronously after every successful
	// Add or Remove so dependents (classifier schema, view counts) can
	// recompute before the mutating call returns.
	OnChange func()
}

// Load reads the persisted category list, seeding and persisting the
// default list when none exists. A storage read error falls back to the
// in-memory default without persisting.
func Load(store kv.Store) *Store {
	s := &Store{kv: store}

	data, ok, err := store.Get(StorageKey)
	if err == nil && ok {
		var list []string
		if json.Unmarshal(data, &list) == nil && len(list) > 0 {
			s.categories = list
			return s
		}
	}

	s.categories = append([]string(nil), defaultCategories...)
	if err == nil && !ok {
		// First run: persist the seed so edits have a base to diff from.
		_ = s.persist()
	}
	return s
}

// Snapshot returns the current ordered list and membership set.
func (s *Store) Snapshot() Snapshot {
	list := append([]string(nil), s.categories...)
	members := make(map[string]struct{}, len(list))
	for _, c := range list {
		members[c] = struct{}{}
	}
	return Snapshot{Categories: list, members: members}
}

// Add appends a new category and persists the list. The in-memory append
// is rolled back if persistence fails.
func (s *Store) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	for _, c := range s.categories {
		if c == name {
			return ErrAlreadyExists
		}
	}

	s.categories = append(s.categories, name)
	if err := s.persist(); err != nil {
		s.categories = s.categories[:len(s.categories)-1]
		return fmt.Errorf("save category %q: %w", name, err)
	}

	s.notify()
	return nil
}

// Remove deletes a category and persists the list. Removing "Other" is
// rejected. The in-memory removal is rolled back if persistence fails.
// Items already classified under the removed name keep it; it simply
// stops being a valid category.
func (s *Store) Remove(name string) error {
	if name == Other {
		return ErrRemoveOther
	}

	idx := -1
	for i, c := range s.categories {
		if c == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	original := s.categories
	s.categories = append(append([]string(nil), original[:idx]...), original[idx+1:]...)
	if err := s.persist(); err != nil {
		s.categories = original
		return fmt.Errorf("delete category %q: %w", name, err)
	}

	s.notify()
	return nil
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.categories)
	if err != nil {
		return err
	}
	return s.kv.Set(StorageKey, data)
}

func (s *Store) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
