package kv_test

import (
	"testing"

	"github.com/nikbrunner/sift/internal/kv"
)

func TestDiskv_RoundTrip(t *testing.T) {
	s, err := kv.OpenDiskv(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	if err := s.Set("themeMode", []byte("dark")); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	v, ok, err := s.Get("themeMode")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(v) != "dark" {
		t.Errorf("value = %q, want %q", v, "dark")
	}
}

func TestDiskv_MissingKey(t *testing.T) {
	s, err := kv.OpenDiskv(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	_, ok, err := s.Get("nope")
	if err != nil {
		t.Fatalf("missing key should not error: %v", err)
	}
	if ok {
		t.Error("expected key to be absent")
	}
}

func TestDiskv_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := kv.OpenDiskv(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Set("userCategories", []byte(`["Other"]`)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	s, err = kv.OpenDiskv(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	v, ok, err := s.Get("userCategories")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(v) != `["Other"]` {
		t.Errorf("value = %q", v)
	}
}

func TestDiskv_RemoveIsIdempotent(t *testing.T) {
	s, err := kv.OpenDiskv(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Set("a", []byte("1")); err != nil {
		t.Fatal(err)
	}

	if err := s.Remove("a", "missing"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Error("expected key removed")
	}
	if err := s.Remove("a"); err != nil {
		t.Errorf("second remove should be a no-op, got %v", err)
	}
}
