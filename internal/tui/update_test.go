package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/typetree/internal/state"
	"github.com/npratt/typetree/internal/testutil"
	"github.com/npratt/typetree/internal/typegraph"
)

var demoQuery = []string{"demo.Outer"}

func TestModel_LoadSelectsFirstRoot(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)

	if m.loading {
		t.Error("loading should be false after roots arrive")
	}
	if !m.loaded {
		t.Error("loaded should be true")
	}
	if len(m.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(m.rows))
	}
	if got := selected(t, m); got != "0" {
		t.Errorf("selected = %q, want %q", got, "0")
	}
}

func TestModel_EnterExpandsAndCollapses(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)

	m = press(t, m, "enter")
	if len(m.rows) != 4 {
		t.Fatalf("rows after expand = %d, want 4", len(m.rows))
	}
	if got := m.rows[3].Node.Label.String(); got != "Len(): int" {
		t.Errorf("last row = %q, want %q", got, "Len(): int")
	}

	m = press(t, m, "enter")
	if len(m.rows) != 1 {
		t.Errorf("rows after collapse = %d, want 1", len(m.rows))
	}
}

func TestModel_SpaceToggles(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)

	m = press(t, m, "space")
	if len(m.rows) != 4 {
		t.Fatalf("rows after space = %d, want 4", len(m.rows))
	}
	m = press(t, m, "space")
	if len(m.rows) != 1 {
		t.Errorf("rows after second space = %d, want 1", len(m.rows))
	}
}

func TestModel_Navigation(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	m = press(t, m, "enter")

	tests := []struct {
		key  string
		want string
	}{
		{"down", "0.child_0"},
		{"j", "0.child_1"},
		{"G", "0.child_2"},
		{"down", "0.child_2"},
		{"g", "0"},
		{"up", "0"},
	}
	for _, tt := range tests {
		m = press(t, m, tt.key)
		if got := selected(t, m); got != tt.want {
			t.Errorf("after %q: selected = %q, want %q", tt.key, got, tt.want)
		}
		if m.rows[m.cursor].Path.String() != selected(t, m) {
			t.Errorf("after %q: cursor row %s does not match selection", tt.key, m.rows[m.cursor].Path)
		}
	}
}

func TestModel_ExpandAndCollapseKeys(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)

	steps := []struct {
		key      string
		selected string
		rows     int
	}{
		{"right", "0", 4},                 // expand root
		{"right", "0.child_0", 4},         // step onto first child
		{"down", "0.child_1", 4},          // Inner
		{"right", "0.child_1", 5},         // expand Inner
		{"right", "0.child_1.child_0", 5}, // step onto Size
		{"right", "0.child_1.child_0", 5}, // leaf: nothing
		{"left", "0.child_1", 5},          // leaf: jump to parent
		{"left", "0.child_1", 4},          // collapse Inner
		{"left", "0", 4},                  // jump to parent
		{"h", "0", 1},                     // collapse root
		{"h", "0", 1},                     // root has no parent
	}
	for i, s := range steps {
		m = press(t, m, s.key)
		if got := selected(t, m); got != s.selected {
			t.Errorf("step %d (%s): selected = %q, want %q", i, s.key, got, s.selected)
		}
		if len(m.rows) != s.rows {
			t.Errorf("step %d (%s): rows = %d, want %d", i, s.key, len(m.rows), s.rows)
		}
	}
}

func TestModel_CollapseAll(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	m = press(t, m, "enter")
	m = press(t, m, "down")
	m = press(t, m, "down")
	m = press(t, m, "enter")
	if len(m.rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(m.rows))
	}

	m = press(t, m, "c")
	if len(m.rows) != 1 {
		t.Errorf("rows after collapse all = %d, want 1", len(m.rows))
	}
	if got := selected(t, m); got != "0" {
		t.Errorf("selected = %q, want %q", got, "0")
	}
}

func TestModel_ActivationErrorLeavesTreeUnchanged(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	m = press(t, m, "enter")
	m = press(t, m, "down") // Broken

	m = press(t, m, "enter")
	if m.err == nil {
		t.Fatal("expected activation error")
	}
	if !errors.Is(m.err, testutil.ErrBoom) {
		t.Errorf("err = %v, want ErrBoom", m.err)
	}
	if len(m.rows) != 4 {
		t.Errorf("rows = %d, want 4", len(m.rows))
	}
	if m.engine.IsExpanded(m.rows[1].Path) {
		t.Error("failed node should not be expanded")
	}
	if m.rows[1].Node.Resolved() {
		t.Error("failed node should stay unresolved")
	}
	if got := selected(t, m); got != "0.child_0" {
		t.Errorf("selected = %q, want %q", got, "0.child_0")
	}
	if view := m.View(); !strings.Contains(view, "boom") {
		t.Error("view should show the activation error")
	}

	// A successful activation clears the error.
	m = press(t, m, "down")
	m = press(t, m, "enter")
	if m.err != nil {
		t.Errorf("err = %v after successful activation, want nil", m.err)
	}
}

func TestModel_LoadError(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), []string{"demo.Missing"})

	if !errors.Is(m.err, typegraph.ErrTypeNotFound) {
		t.Errorf("err = %v, want ErrTypeNotFound", m.err)
	}
	if m.loaded {
		t.Error("loaded should be false after a failed load")
	}
	if view := m.View(); !strings.Contains(view, "No types loaded") {
		t.Errorf("view should report that nothing loaded:\n%s", view)
	}

	// Keys other than reload and quit are ignored without rows.
	m = press(t, m, "enter")
	if len(m.rows) != 0 {
		t.Errorf("rows = %d, want 0", len(m.rows))
	}
}

func TestModel_StaleLoadIgnored(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)

	m = update(t, m, rootsLoadedMsg{id: m.loadID - 1, err: errors.New("old")})
	if m.err != nil {
		t.Errorf("stale load should be ignored, err = %v", m.err)
	}
}

func TestModel_ReloadKeepsExpansion(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	m = press(t, m, "enter")
	m = press(t, m, "down")
	m = press(t, m, "down")
	m = press(t, m, "enter")
	before := m.loadID

	m = press(t, m, "r")
	if m.loadID != before+1 {
		t.Errorf("loadID = %d, want %d", m.loadID, before+1)
	}
	if !m.loading {
		t.Error("reload should set loading")
	}

	m = update(t, m, m.loadCmd(m.loadID, true)())
	if len(m.rows) != 5 {
		t.Errorf("rows after reload = %d, want 5", len(m.rows))
	}
	if got := selected(t, m); got != "0.child_1" {
		t.Errorf("selected after reload = %q, want %q", got, "0.child_1")
	}
}

func TestModel_SourceChangeReloads(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	before := m.loadID

	next, cmd := m.Update(sourceChangedMsg{})
	m = next.(model)
	if m.loadID != before+1 {
		t.Errorf("loadID = %d, want %d", m.loadID, before+1)
	}
	if cmd == nil {
		t.Error("source change should start a load")
	}
}

func TestModel_SavesAndRestoresState(t *testing.T) {
	store := state.NewStore(t.TempDir()+"/tree-state.json", nil)

	m := loadedModel(t, testutil.DemoSource(), demoQuery, WithStore(store))
	m = press(t, m, "enter")
	m = press(t, m, "down")
	m = press(t, m, "down")
	m = press(t, m, "enter")

	quit := false
	m.onQuit = func() { quit = true }
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !quit {
		t.Error("quit callback was not invoked")
	}
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}

	ts, ok := store.Get(StateKey(demoQuery))
	if !ok {
		t.Fatal("state was not saved")
	}
	if ts.Selected != "0.child_1" {
		t.Errorf("saved selection = %q, want %q", ts.Selected, "0.child_1")
	}

	restored := loadedModel(t, testutil.DemoSource(), demoQuery, WithStore(store))
	if len(restored.rows) != 5 {
		t.Errorf("restored rows = %d, want 5", len(restored.rows))
	}
	if restored.cursor != 2 {
		t.Errorf("restored cursor = %d, want 2", restored.cursor)
	}
}

func TestModel_HelpToggleResizesViewport(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery)
	short := m.viewport.Height

	m = press(t, m, "?")
	if !m.help.ShowAll {
		t.Fatal("help should show all bindings")
	}
	if m.viewport.Height >= short {
		t.Errorf("viewport height = %d, want less than %d with full help", m.viewport.Height, short)
	}
}

func TestModel_ViewportFollowsCursor(t *testing.T) {
	methods := make([]typegraph.Method, 60)
	for i := range methods {
		methods[i] = typegraph.Method{Name: "M" + strings.Repeat("x", i%3), Results: []string{"int"}}
	}
	src := testutil.FakeSource{"demo.Big": &testutil.FakeType{TypeName: "demo.Big", List: methods}}

	m := loadedModel(t, src, []string{"demo.Big"})
	m = press(t, m, "enter")
	m = press(t, m, "G")

	if m.cursor != 60 {
		t.Fatalf("cursor = %d, want 60", m.cursor)
	}
	if m.cursor < m.viewport.YOffset || m.cursor >= m.viewport.YOffset+m.viewport.Height {
		t.Errorf("cursor %d outside viewport [%d, %d)", m.cursor, m.viewport.YOffset, m.viewport.YOffset+m.viewport.Height)
	}

	m = press(t, m, "g")
	if m.viewport.YOffset != 0 {
		t.Errorf("YOffset = %d after g, want 0", m.viewport.YOffset)
	}
}

func TestModel_CopyLabel(t *testing.T) {
	var copied string
	m := loadedModel(t, testutil.DemoSource(), demoQuery, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))
	m = press(t, m, "enter")
	m = press(t, m, "G")
	m = press(t, m, "y")

	if copied != "Len(): int" {
		t.Errorf("copied %q, want %q", copied, "Len(): int")
	}
	if m.notice != "copied Len(): int" {
		t.Errorf("notice = %q", m.notice)
	}

	m = press(t, m, "up")
	if m.notice != "" {
		t.Errorf("notice should clear on the next key, got %q", m.notice)
	}
}

func TestModel_CopyFailureIsReported(t *testing.T) {
	m := loadedModel(t, testutil.DemoSource(), demoQuery, WithClipboard(func(string) error {
		return testutil.ErrBoom
	}))
	m = press(t, m, "y")

	if !errors.Is(m.err, testutil.ErrBoom) {
		t.Errorf("err = %v, want ErrBoom", m.err)
	}
	if !strings.Contains(m.View(), "copy to clipboard") {
		t.Error("status line should show the clipboard error")
	}
}
