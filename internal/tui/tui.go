// Package tui provides the interactive method explorer using bubbletea.
package tui

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/typetree/internal/config"
	"github.com/npratt/typetree/internal/state"
	"github.com/npratt/typetree/internal/typegraph"
)

// TUI is the terminal explorer for a set of root types.
type TUI struct {
	ctx      context.Context
	source   typegraph.Source
	queries  []string
	store    *state.Store
	treeCfg  config.TreeConfig
	watchCfg config.WatchConfig
	logger   *slog.Logger
	onQuit   func()
	out      io.Writer
	copyText func(string) error
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a TUI that explores the types named by queries.
func New(source typegraph.Source, queries []string, opts ...Option) *TUI {
	t := &TUI{
		source:   source,
		queries:  queries,
		treeCfg:  config.Default().Tree,
		logger:   slog.Default(),
		out:      os.Stdout,
		copyText: clipboard.WriteAll,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithStore sets where expansion state is loaded from and saved to.
func WithStore(store *state.Store) Option {
	return func(t *TUI) {
		t.store = store
	}
}

// WithTreeConfig sets row rendering options.
func WithTreeConfig(cfg config.TreeConfig) Option {
	return func(t *TUI) {
		t.treeCfg = cfg
	}
}

// WithWatchConfig enables reloading when explored sources change.
func WithWatchConfig(cfg config.WatchConfig) Option {
	return func(t *TUI) {
		t.watchCfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *TUI) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithOnQuit sets the callback invoked when the user quits.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// WithOutput sets where the non-interactive fallback writes.
func WithOutput(w io.Writer) Option {
	return func(t *TUI) {
		t.out = w
	}
}

// WithClipboard replaces the function used to copy row labels.
func WithClipboard(fn func(string) error) Option {
	return func(t *TUI) {
		if fn != nil {
			t.copyText = fn
		}
	}
}

// Run starts the explorer and blocks until it exits. Without a terminal it
// prints the tree once instead.
func (t *TUI) Run(ctx context.Context) error {
	t.ctx = ctx
	t.logger = t.logger.With("component", "tui")

	if !isTerminal() {
		return t.runSimple(ctx)
	}

	m := newModel(t)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()

	if fm, ok := final.(model); ok && fm.watcher != nil {
		_ = fm.watcher.Stop()
	}
	return err
}
