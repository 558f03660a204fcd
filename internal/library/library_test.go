package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
)

func TestResolveReturnsExistingFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "7")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "ocean.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lib := NewLibrary(zap.NewNop(), root)
	got, err := lib.Resolve(&domain.Video{ID: 7, File: "ocean.mp4"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != path {
		t.Errorf("path: got %s, want %s", got, path)
	}
}

func TestResolveMissingFileFails(t *testing.T) {
	lib := NewLibrary(zap.NewNop(), t.TempDir())

	if _, err := lib.Resolve(&domain.Video{ID: 7, File: "gone.mp4"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveEmptyFileNameFails(t *testing.T) {
	lib := NewLibrary(zap.NewNop(), t.TempDir())

	if _, err := lib.Resolve(&domain.Video{ID: 7}); err == nil {
		t.Error("expected error for record without file")
	}
}

func TestWatcherStartStop(t *testing.T) {
	root := t.TempDir()
	lib := NewLibrary(zap.NewNop(), root)
	w := NewWatcher(zap.NewNop(), lib)
	ctx := context.Background()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second start is a no-op
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	// Give the watch loop something to observe
	path := filepath.Join(root, "tmpfile")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Second stop is a no-op
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestWatcherMissingRootFails(t *testing.T) {
	lib := NewLibrary(zap.NewNop(), filepath.Join(t.TempDir(), "does-not-exist"))
	w := NewWatcher(zap.NewNop(), lib)

	if err := w.Start(context.Background()); err == nil {
		_ = w.Stop(context.Background())
		t.Error("expected error watching a missing directory")
	}
}
