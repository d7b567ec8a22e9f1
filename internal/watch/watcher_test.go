package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "a.go", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "dir/b.go", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "c.go", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "d.go", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "e.go", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "go.mod", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestWatcher_SignalsOnceForBurst(t *testing.T) {
	dir := t.TempDir()
	w := New([]string{dir}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = w.Stop() }()

	if !w.Running() {
		t.Fatal("watcher should be running")
	}
	if err := w.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "x.go"), []byte("package x\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-Go files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change signal received")
	}

	select {
	case <-w.Changes():
		t.Error("burst should coalesce into one signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, 0, nil)
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start = %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop = %v", err)
	}
	if w.Running() {
		t.Error("watcher still running after Stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop = %v", err)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "missing")}, 0, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Error("Start should fail for a missing directory")
		_ = w.Stop()
	}
}
