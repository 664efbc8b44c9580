package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")

	first := NewFile(path)
	if err := first.Set(ctx, "tok123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A new instance over the same path simulates a process restart.
	second := NewFile(path)
	token, err := second.Get(ctx)
	if err != nil {
		t.Fatalf("Get after restart failed: %v", err)
	}
	if token != "tok123" {
		t.Fatalf("expected tok123, got %q", token)
	}
}

func TestFilePermissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")

	store := NewFile(path)
	if err := store.Set(ctx, "tok123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileMissingAndCleared(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")
	store := NewFile(path)

	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing file, got %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on missing file failed: %v", err)
	}

	if err := store.Set(ctx, "tok123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, ""); err != nil {
		t.Fatalf("Set empty failed: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after empty Set, got %v", err)
	}
}
