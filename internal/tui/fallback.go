package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/npratt/typetree/internal/state"
	"github.com/npratt/typetree/internal/tree"
	"github.com/npratt/typetree/internal/typegraph"
)

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// runSimple prints the tree once for non-interactive environments. Saved
// expansion is honored; without it the roots are shown expanded one level.
func (t *TUI) runSimple(ctx context.Context) error {
	types, err := typegraph.Roots(ctx, t.source, t.queries...)
	if err != nil {
		return err
	}
	e := tree.New(typegraph.Forest(types)...)

	restored := 0
	if t.store != nil {
		if ts, ok := t.store.Get(StateKey(t.queries)); ok {
			restored = state.Apply(e, ts)
		}
	}
	if restored == 0 {
		if err := e.ExpandAll(1); err != nil {
			t.logger.Warn("failed to expand roots", "error", err)
		}
	}

	return WriteRows(t.out, e, RenderOptionsFrom(t.treeCfg))
}

// WriteRows prints every visible row as plain text.
func WriteRows(w io.Writer, e *tree.Engine, opts RenderOptions) error {
	for row := range e.VisibleRows() {
		if _, err := fmt.Fprintln(w, PlainRow(row, opts)); err != nil {
			return err
		}
	}
	return nil
}
