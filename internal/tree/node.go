package tree

import "strings"

// Role names the semantic part of a label a span represents. Renderers map
// roles to colors; the engine never interprets them.
type Role string

const (
	RolePlain Role = ""
	RoleName  Role = "name"
	RoleParam Role = "param"
	RoleType  Role = "type"
	RolePunct Role = "punct"
)

// Style is the rendering-agnostic attribute set of a Span.
type Style struct {
	Role Role
	Bold bool
}

// Span is one styled run of label text.
type Span struct {
	Text  string
	Style Style
}

// Label is styled text: an ordered sequence of spans.
type Label []Span

// Text returns a label made of a single plain span.
func Text(s string) Label {
	return Label{{Text: s}}
}

// String returns the label's text with styling dropped.
func (l Label) String() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// PopulateFunc lazily produces a node's children. It runs at most once per
// successful population.
type PopulateFunc func() ([]*Node, error)

// Node is one entry in the forest. Its children start either resolved (leaf
// or branch) or unresolved; an unresolved node is filled in place, exactly
// once, so the same *Node is observed before and after population.
type Node struct {
	Label    Label
	Populate PopulateFunc

	children []*Node
	resolved bool
}

// NewNode returns a node whose children are unresolved and will be produced by
// populate on first activation.
func NewNode(label Label, populate PopulateFunc) *Node {
	return &Node{Label: label, Populate: populate}
}

// NewLeaf returns a node confirmed to have no children.
func NewLeaf(label Label) *Node {
	return &Node{Label: label, resolved: true}
}

// NewBranch returns a node with already known children.
func NewBranch(label Label, children ...*Node) *Node {
	return &Node{Label: label, children: children, resolved: true}
}

// Resolved reports whether the node's children are known.
func (n *Node) Resolved() bool {
	return n.resolved
}

// Children returns the resolved children, or nil while unresolved.
func (n *Node) Children() []*Node {
	return n.children
}

// Expandable reports whether the node may have children. Unresolved nodes
// count as expandable; only a resolved, empty node is a confirmed leaf.
func (n *Node) Expandable() bool {
	return !n.resolved || len(n.children) > 0
}

func (n *Node) resolve(children []*Node) {
	n.children = children
	n.resolved = true
}
