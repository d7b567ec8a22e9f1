package tui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/npratt/typetree/internal/testutil"
	"github.com/npratt/typetree/internal/typegraph"
)

// TestTUILifecycleSmoke verifies the full bubbletea program lifecycle:
// load roots, expand with the keyboard and quit cleanly.
// This test uses teatest to run the TUI headlessly without a real TTY.
func TestTUILifecycleSmoke(t *testing.T) {
	var quitCalled bool
	m := newModel(New(testutil.DemoSource(), demoQuery, WithOnQuit(func() { quitCalled = true })))

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(80, 24),
	)

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("1/1"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Len"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	final, ok := fm.(model)
	if !ok {
		t.Fatalf("FinalModel = %T, want model", fm)
	}

	if !quitCalled {
		t.Error("quit callback was not invoked")
	}
	if len(final.rows) != 4 {
		t.Errorf("final rows = %d, want 4", len(final.rows))
	}
	if got := selected(t, final); got != "0.child_0" {
		t.Errorf("final selection = %q, want %q", got, "0.child_0")
	}
}

// TestTUILifecycleReflect explores a runtime type end to end.
func TestTUILifecycleReflect(t *testing.T) {
	src := typegraph.NewReflectSource(typegraph.DefaultOptions())
	m := newModel(New(src, []string{"time.Time"}))

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("time.Time"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("AddDate"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	final := fm.(model)
	if len(final.rows) < 10 {
		t.Errorf("final rows = %d, want the methods of time.Time", len(final.rows))
	}
}
