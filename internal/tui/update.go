package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/typetree/internal/state"
	"github.com/npratt/typetree/internal/tree"
)

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case rootsLoadedMsg:
		return m.handleLoaded(msg)

	case sourceChangedMsg:
		m.logger.Info("sources changed, reloading")
		var cmd tea.Cmd
		m, cmd = m.reload()
		var wait tea.Cmd
		if m.watcher != nil {
			wait = waitForChange(m.watcher.Changes())
		}
		return m, tea.Batch(cmd, wait)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleLoaded installs freshly loaded roots. Results of superseded loads
// are dropped.
func (m model) handleLoaded(msg rootsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.loadID {
		m.logger.Debug("ignoring stale load", "id", msg.id, "current", m.loadID)
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		m.logger.Error("failed to load types", "error", msg.err)
		return m, nil
	}

	var saved state.TreeState
	if m.loaded {
		saved = state.Capture(m.engine)
	} else if m.store != nil {
		saved, _ = m.store.Get(m.stateKey())
	}

	// New nodes start unresolved, so the expansion set is rebuilt by Restore,
	// which populates on the way down.
	m.engine.SetRoots(msg.roots)
	m.engine.CollapseAll()
	restored := state.Apply(m.engine, saved)
	if _, ok := m.engine.Selected(); !ok && len(msg.roots) > 0 {
		m.engine.Select(tree.Root(0))
	}

	m.loaded = true
	m.err = nil
	m.refresh()
	m.logger.Info("types loaded", "roots", len(msg.roots), "restored", restored, "reload", msg.reload)

	return m, m.startWatch()
}

// reload starts a fresh load. Any load still in flight becomes stale.
func (m model) reload() (model, tea.Cmd) {
	m.loadID++
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.loadCmd(m.loadID, true))
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.save()
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	}

	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveTo(m.cursor - 1)

	case key.Matches(msg, m.keys.Down):
		m.moveTo(m.cursor + 1)

	case key.Matches(msg, m.keys.Top):
		m.moveTo(0)

	case key.Matches(msg, m.keys.Bottom):
		m.moveTo(len(m.rows) - 1)

	case key.Matches(msg, m.keys.PageUp):
		m.moveTo(m.cursor - max(1, m.viewport.Height))

	case key.Matches(msg, m.keys.PageDown):
		m.moveTo(m.cursor + max(1, m.viewport.Height))

	case key.Matches(msg, m.keys.Activate):
		m.activate(row.Path)

	case key.Matches(msg, m.keys.Toggle):
		if row.Node.Resolved() {
			m.engine.Toggle(row.Path)
			m.refresh()
		} else {
			m.activate(row.Path)
		}

	case key.Matches(msg, m.keys.Expand):
		switch {
		case !row.HasChildren:
		case row.Expanded:
			// Step onto the first child.
			if next := m.cursor + 1; next < len(m.rows) && m.rows[next].Depth > row.Depth {
				m.moveTo(next)
			}
		default:
			m.activate(row.Path)
		}

	case key.Matches(msg, m.keys.Collapse):
		if row.Expanded {
			m.engine.Toggle(row.Path)
			m.refresh()
		} else if parent := row.Path.Parent(); parent != nil {
			m.engine.Select(parent)
			m.refresh()
		}

	case key.Matches(msg, m.keys.Copy):
		m.copyLabel(row)

	case key.Matches(msg, m.keys.CollapseAll):
		m.engine.CollapseAll()
		m.engine.Select(tree.Root(row.Path[0]))
		m.refresh()
	}

	return m, nil
}
