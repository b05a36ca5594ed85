package kv

import (
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv is a Store backed by a diskv directory, one file per key.
type Diskv struct {
	d *diskv.Diskv
}

// OpenDiskv opens (creating if needed) a diskv-backed store rooted at basePath.
func OpenDiskv(basePath string) (*Diskv, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

// DefaultDataDir returns the default data directory: ~/.config/sift/data
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "sift", "data"), nil
}

func (s *Diskv) Get(key string) ([]byte, bool, error) {
	if !s.d.Has(key) {
		return nil, false, nil
	}
	v, err := s.d.Read(key)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Diskv) Set(key string, value []byte) error {
	return s.d.Write(key, value)
}

func (s *Diskv) Remove(keys ...string) error {
	for _, k := range keys {
		if !s.d.Has(k) {
			continue
		}
		if err := s.d.Erase(k); err != nil {
			return err
		}
	}
	return nil
}
