// Package tree maintains a forest of lazily expandable nodes together with
// its expansion and selection state, and projects it into the ordered list of
// rows a renderer paints.
//
// The engine is single-threaded: every method runs to completion on the
// goroutine that owns the UI state. It performs no locking.
package tree

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Row describes one renderable line of the tree.
type Row struct {
	Path        Path
	Node        *Node
	Depth       int
	Expanded    bool
	Selected    bool
	HasChildren bool
}

// Engine owns the forest, the expansion set and the selection.
type Engine struct {
	roots    []*Node
	expanded map[string]struct{}
	selected Path
}

// New creates an engine over the given roots.
func New(roots ...*Node) *Engine {
	return &Engine{
		roots:    roots,
		expanded: make(map[string]struct{}),
	}
}

// SetRoots replaces the forest. Expansion and selection are kept so that a
// reload with stable positions keeps the user's view.
func (e *Engine) SetRoots(roots []*Node) {
	e.roots = roots
}

// Roots returns the current forest.
func (e *Engine) Roots() []*Node {
	return e.roots
}

// NodeAt returns the node at p, or nil if p does not exist in the forest.
// Only resolved children are traversed.
func (e *Engine) NodeAt(p Path) *Node {
	if len(p) == 0 || p[0] < 0 || p[0] >= len(e.roots) {
		return nil
	}
	n := e.roots[p[0]]
	for _, seg := range p[1:] {
		if seg < 0 || seg >= len(n.children) {
			return nil
		}
		n = n.children[seg]
	}
	return n
}

// Toggle flips the expansion of the node at p. Confirmed leaves and unknown
// paths are left alone.
func (e *Engine) Toggle(p Path) {
	n := e.NodeAt(p)
	if n == nil || !n.Expandable() {
		return
	}
	key := p.String()
	if _, ok := e.expanded[key]; ok {
		delete(e.expanded, key)
		return
	}
	e.expanded[key] = struct{}{}
}

// Activate is the primary-click operation: it populates an unresolved node,
// selects it and toggles its expansion. If population fails the error is
// returned and no state changes, so activating again retries.
func (e *Engine) Activate(p Path) error {
	n := e.NodeAt(p)
	if n == nil {
		return nil
	}
	if err := e.populate(p, n); err != nil {
		return err
	}
	e.selected = slices.Clone(p)
	e.Toggle(p)
	return nil
}

func (e *Engine) populate(p Path, n *Node) error {
	if n.resolved {
		return nil
	}
	if n.Populate == nil {
		n.resolve(nil)
		return nil
	}
	children, err := n.Populate()
	if err != nil {
		return fmt.Errorf("populate %s: %w", p, err)
	}
	n.resolve(children)
	return nil
}

// Resolve records children produced asynchronously for the node at p. It
// writes only if node is still at p and still unresolved, and reports whether
// the write happened. Expansion is not changed.
func (e *Engine) Resolve(p Path, node *Node, children []*Node) bool {
	if node == nil || node.resolved || e.NodeAt(p) != node {
		return false
	}
	node.resolve(children)
	return true
}

// Select marks p as the selected row. Unknown paths are ignored.
func (e *Engine) Select(p Path) bool {
	if e.NodeAt(p) == nil {
		return false
	}
	e.selected = slices.Clone(p)
	return true
}

// Selected returns the selected path, if any.
func (e *Engine) Selected() (Path, bool) {
	if e.selected == nil {
		return nil, false
	}
	return slices.Clone(e.selected), true
}

// IsExpanded reports whether p is in the expansion set.
func (e *Engine) IsExpanded(p Path) bool {
	_, ok := e.expanded[p.String()]
	return ok
}

// IsVisible reports whether every ancestor of p is expanded.
func (e *Engine) IsVisible(p Path) bool {
	if len(p) == 0 {
		return false
	}
	for _, a := range Ancestors(p) {
		if !e.IsExpanded(a) {
			return false
		}
	}
	return true
}

// VisibleRows yields the visible rows in pre-order. The sequence is computed
// from the live forest each time it is ranged over.
func (e *Engine) VisibleRows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i, root := range e.roots {
			if !e.walk(Root(i), root, yield) {
				return
			}
		}
	}
}

func (e *Engine) walk(p Path, n *Node, yield func(Row) bool) bool {
	expanded := e.IsExpanded(p) && n.Expandable()
	row := Row{
		Path:        p,
		Node:        n,
		Depth:       p.Depth(),
		Expanded:    expanded,
		Selected:    e.selected != nil && e.selected.Equal(p),
		HasChildren: n.Expandable(),
	}
	if !yield(row) {
		return false
	}
	if !expanded {
		return true
	}
	for i, child := range n.children {
		if !e.walk(p.Child(i), child, yield) {
			return false
		}
	}
	return true
}

// Rows collects VisibleRows into a slice.
func (e *Engine) Rows() []Row {
	return slices.Collect(e.VisibleRows())
}

// Len returns the number of visible rows.
func (e *Engine) Len() int {
	n := 0
	for range e.VisibleRows() {
		n++
	}
	return n
}

// Expanded returns the expansion set, shallowest paths first.
func (e *Engine) Expanded() []Path {
	paths := make([]Path, 0, len(e.expanded))
	for key := range e.expanded {
		p, err := ParsePath(key)
		if err != nil {
			continue
		}
		paths = append(paths, p)
	}
	slices.SortFunc(paths, comparePaths)
	return paths
}

// Restore re-expands previously saved paths, populating unresolved nodes on
// the way down. Paths that no longer exist, lead to confirmed leaves, or fail
// to populate are dropped. It returns the number of paths restored.
func (e *Engine) Restore(paths []Path) int {
	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, comparePaths)

	restored := 0
	for _, p := range sorted {
		n := e.NodeAt(p)
		if n == nil {
			continue
		}
		if err := e.populate(p, n); err != nil {
			continue
		}
		if !n.Expandable() {
			continue
		}
		e.expanded[p.String()] = struct{}{}
		restored++
	}
	return restored
}

// ExpandAll expands every node shallower than maxDepth, populating as it
// goes. Population errors do not stop the walk; they are joined and returned.
func (e *Engine) ExpandAll(maxDepth int) error {
	type item struct {
		path Path
		node *Node
	}
	var errs []error
	stack := make([]item, 0, len(e.roots))
	for i := len(e.roots) - 1; i >= 0; i-- {
		stack = append(stack, item{Root(i), e.roots[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.path.Depth() >= maxDepth {
			continue
		}
		if err := e.populate(it.path, it.node); err != nil {
			errs = append(errs, err)
			continue
		}
		if !it.node.Expandable() {
			continue
		}
		e.expanded[it.path.String()] = struct{}{}
		for i := len(it.node.children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.path.Child(i), it.node.children[i]})
		}
	}
	return errors.Join(errs...)
}

// CollapseAll empties the expansion set.
func (e *Engine) CollapseAll() {
	clear(e.expanded)
}
