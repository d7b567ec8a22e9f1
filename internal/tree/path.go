package tree

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path string cannot be parsed.
var ErrInvalidPath = errors.New("invalid tree path")

// childPrefix separates child segments in the display form of a Path.
const childPrefix = ".child_"

// Path identifies a node's position in the forest: the root index followed by
// one child index per level. A Path is never shared between positions, so two
// nodes have equal paths iff they occupy the same position.
type Path []int

// Root returns the path of the i-th root node.
func Root(i int) Path {
	return Path{i}
}

// Child returns a new path for the i-th child of p. The receiver is not
// modified and the result does not alias it.
func (p Path) Child(i int) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, i)
}

// Parent returns the path of p's parent, or nil for a root or empty path.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	parent := make(Path, len(p)-1)
	copy(parent, p)
	return parent
}

// Depth is the number of ancestors of the node at p.
func (p Path) Depth() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Equal reports whether p and other name the same position.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// String renders the display form, e.g. "0.child_2.child_0". The display form
// doubles as the map key for expansion state.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(p[0]))
	for _, seg := range p[1:] {
		b.WriteString(childPrefix)
		b.WriteString(strconv.Itoa(seg))
	}
	return b.String()
}

// ParsePath parses the display form produced by Path.String.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	parts := strings.Split(s, childPrefix)
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || strconv.Itoa(n) != part {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
		p = append(p, n)
	}
	return p, nil
}

// Ancestors returns the ancestor paths of p, nearest first. A root path has
// no ancestors.
func Ancestors(p Path) []Path {
	if len(p) <= 1 {
		return nil
	}
	ancestors := make([]Path, 0, len(p)-1)
	for n := len(p) - 1; n >= 1; n-- {
		ancestor := make(Path, n)
		copy(ancestor, p[:n])
		ancestors = append(ancestors, ancestor)
	}
	return ancestors
}

// comparePaths orders paths shallowest first, then lexicographically.
func comparePaths(a, b Path) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}
