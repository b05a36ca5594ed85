// Package kv provides the key-value persistence capability used for the
// taxonomy, the classification cache, and UI preferences.
package kv

import "sync"

// Store defines the minimal key-value contract the app persists through.
type Store interface {
	// Get returns the value for key, and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set writes the value for key, creating it if absent.
	Set(key string, value []byte) error
	// Remove deletes the given keys. Missing keys are not an error.
	Remove(keys ...string) error
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailSet, when non-nil, is returned by every Set call. Lets tests
	// exercise persistence-failure rollback paths.
	FailSet error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
