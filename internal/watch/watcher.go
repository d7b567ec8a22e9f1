// Package watch notifies when Go sources in a set of directories change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the time to wait for rapid file changes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher monitors directories and signals on Changes after edits to .go
// files settle. Signals are coalesced: a slow reader sees at most one
// pending signal.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger

	changes chan struct{}

	running atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// New creates a watcher for dirs. A non-positive debounce uses DefaultDebounce.
func New(dirs []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		logger:   logger.With("component", "watch"),
		changes:  make(chan struct{}, 1),
	}
}

// Changes delivers one signal per settled burst of changes.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching in a background goroutine.
// Returns immediately. Use Stop() to terminate.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return fmt.Errorf("watcher already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	for _, dir := range w.dirs {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	var runCtx context.Context
	runCtx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running.Store(true)

	w.logger.Info("started watching", "dirs", w.dirs)
	go w.runLoop(runCtx, fsWatcher)

	return nil
}

// Stop terminates the watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running.Load() {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	w.cancel()
	<-w.done

	return nil
}

// Running returns whether the watcher is currently active.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

func (w *Watcher) runLoop(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer func() {
		_ = fsWatcher.Close()
		w.running.Store(false)
		close(w.done)
	}()

	var debounceTimer *time.Timer
	var debounceMu sync.Mutex

	trigger := func() {
		debounceMu.Lock()
		defer debounceMu.Unlock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.debounce, w.notify)
	}

	for {
		select {
		case <-ctx.Done():
			debounceMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceMu.Unlock()
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			trigger()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// relevant reports whether event touches a Go source file in a way that can
// change the type graph.
func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".go" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
