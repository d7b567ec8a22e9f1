package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/typetree/internal/config"
	"github.com/npratt/typetree/internal/state"
	"github.com/npratt/typetree/internal/tree"
	"github.com/npratt/typetree/internal/typegraph"
	"github.com/npratt/typetree/internal/watch"
)

// model is the bubbletea model for the explorer.
type model struct {
	ctx     context.Context
	source  typegraph.Source
	queries []string
	store   *state.Store
	logger  *slog.Logger
	onQuit  func()

	// Tree state
	engine *tree.Engine
	rows   []tree.Row
	cursor int
	opts   RenderOptions
	loaded bool

	// Loading
	loading bool
	loadID  int // For staleness detection
	err     error
	notice  string

	// Clipboard
	copyText func(string) error

	// Watching
	watchCfg config.WatchConfig
	watcher  *watch.Watcher

	// Widgets
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	spinner  spinner.Model

	// UI state
	width  int
	height int
}

// rootsLoadedMsg carries the result of a root load.
type rootsLoadedMsg struct {
	id     int
	roots  []*tree.Node
	err    error
	reload bool
}

// sourceChangedMsg signals that watched sources changed on disk.
type sourceChangedMsg struct{}

func newModel(t *TUI) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Loading

	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	return model{
		ctx:      ctx,
		source:   t.source,
		queries:  t.queries,
		store:    t.store,
		logger:   t.logger,
		onQuit:   t.onQuit,
		engine:   tree.New(),
		opts:     RenderOptionsFrom(t.treeCfg),
		loading:  true,
		loadID:   1,
		watchCfg: t.watchCfg,
		copyText: t.copyText,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadCmd(m.loadID, false),
	)
}

// StateKey identifies the tree for a set of queries in the state file.
func StateKey(queries []string) string {
	return strings.Join(queries, " ")
}

func (m model) stateKey() string {
	return StateKey(m.queries)
}

// loadCmd resolves the queries in the background.
func (m model) loadCmd(id int, reload bool) tea.Cmd {
	ctx, src, queries := m.ctx, m.source, m.queries
	return func() tea.Msg {
		if reload {
			if r, ok := src.(resetter); ok {
				r.Reset()
			}
		}
		types, err := typegraph.Roots(ctx, src, queries...)
		if err != nil {
			return rootsLoadedMsg{id: id, err: err, reload: reload}
		}
		return rootsLoadedMsg{id: id, roots: typegraph.Forest(types), reload: reload}
	}
}

// waitForChange waits for the next watcher signal.
// Returns nil when the channel is closed.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sourceChangedMsg{}
	}
}

// resetter is implemented by sources that cache loaded types.
type resetter interface {
	Reset()
}

// dirLocator is implemented by sources that know where packages live on disk.
type dirLocator interface {
	PackageDir(pkgPath string) (string, bool)
}

// refresh recomputes the visible rows and moves the cursor to the selection.
// A selection that is no longer visible moves to its nearest visible ancestor.
func (m *model) refresh() {
	m.rows = m.engine.Rows()
	m.cursor = 0

	if sel, ok := m.engine.Selected(); ok {
		if i := m.rowIndex(sel); i >= 0 {
			m.cursor = i
		} else {
			for _, a := range tree.Ancestors(sel) {
				if i := m.rowIndex(a); i >= 0 {
					m.engine.Select(a)
					m.rows = m.engine.Rows()
					m.cursor = i
					break
				}
			}
		}
	}
	m.syncViewport()
}

func (m model) rowIndex(p tree.Path) int {
	for i, r := range m.rows {
		if r.Path.Equal(p) {
			return i
		}
	}
	return -1
}

// currentRow returns the row under the cursor.
func (m model) currentRow() (tree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tree.Row{}, false
	}
	return m.rows[m.cursor], true
}

// moveTo selects the row at index i, clamped to the visible rows.
func (m *model) moveTo(i int) {
	if len(m.rows) == 0 {
		return
	}
	i = max(0, min(i, len(m.rows)-1))
	m.engine.Select(m.rows[i].Path)
	m.refresh()
}

// activate runs the fused select-populate-toggle on p. Failures leave the
// tree unchanged and are reported in the status line.
func (m *model) activate(p tree.Path) {
	if err := m.engine.Activate(p); err != nil {
		m.err = err
		m.logger.Warn("activation failed", "path", p.String(), "error", err)
		return
	}
	m.err = nil
	m.refresh()
}

// copyLabel puts the label of the row under the cursor on the clipboard.
func (m *model) copyLabel(row tree.Row) {
	text := row.Node.Label.String()
	if err := m.copyText(text); err != nil {
		m.err = fmt.Errorf("copy to clipboard: %w", err)
		m.logger.Warn("clipboard write failed", "error", err)
		return
	}
	m.err = nil
	m.notice = "copied " + text
}

// save persists expansion and selection. Errors are logged only.
func (m model) save() {
	if m.store == nil || !m.loaded {
		return
	}
	if err := m.store.Save(m.stateKey(), state.Capture(m.engine)); err != nil {
		m.logger.Warn("failed to save tree state", "error", err)
	}
}

// startWatch begins watching the directories of the explored packages.
func (m *model) startWatch() tea.Cmd {
	if !m.watchCfg.Enabled || m.watcher != nil {
		return nil
	}
	locator, ok := m.source.(dirLocator)
	if !ok {
		return nil
	}
	dirs := packageDirs(locator, m.queries)
	if len(dirs) == 0 {
		return nil
	}
	w := watch.New(dirs, m.watchCfg.Debounce, m.logger)
	if err := w.Start(m.ctx); err != nil {
		m.logger.Warn("failed to start watcher", "error", err)
		return nil
	}
	m.watcher = w
	return waitForChange(w.Changes())
}

func packageDirs(locator dirLocator, queries []string) []string {
	var dirs []string
	for _, query := range queries {
		q, err := typegraph.ParseQuery(query)
		if err != nil {
			continue
		}
		if dir, ok := locator.PackageDir(q.PkgPath); ok && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
