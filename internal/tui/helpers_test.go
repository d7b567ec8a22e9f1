package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/typetree/internal/typegraph"
)

// loadedModel returns a sized model whose roots have been loaded.
func loadedModel(t *testing.T, src typegraph.Source, queries []string, opts ...Option) model {
	t.Helper()
	m := newModel(New(src, queries, opts...))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return update(t, m, m.loadCmd(m.loadID, false)())
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", next)
	}
	return nm
}

// press sends one key to the model.
func press(t *testing.T, m model, k string) model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(t, m, msg)
}

func selected(t *testing.T, m model) string {
	t.Helper()
	p, ok := m.engine.Selected()
	if !ok {
		return ""
	}
	return p.String()
}
