package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/typetree/internal/testutil"
)

func TestView_BeforeSize(t *testing.T) {
	m := newModel(New(testutil.DemoSource(), demoQuery))
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q, want %q", got, "Loading...")
	}
}

func TestView_TooSmall(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	view := m.View()
	if !strings.Contains(view, "Terminal too small") {
		t.Errorf("view should report small terminal:\n%s", view)
	}
	if strings.Contains(view, "demo.Outer") {
		t.Error("tree should not be rendered when too small")
	}
}

func TestView_LoadingShowsSpinnerText(t *testing.T) {
	m := newModel(New(testutil.DemoSource(), demoQuery))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	if view := m.View(); !strings.Contains(view, "Loading types...") {
		t.Errorf("view should show loading text:\n%s", view)
	}
}

func TestView_RendersRows(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	m = press(t, m, "enter")
	m = press(t, m, "down")

	view := m.View()
	for _, want := range []string{"typetree", "demo.Outer", "Broken", "Len", "0.child_0", "2/4", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
