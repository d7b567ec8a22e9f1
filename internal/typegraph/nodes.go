package typegraph

import (
	"fmt"

	"github.com/npratt/typetree/internal/tree"
)

var (
	nameStyle  = tree.Style{Role: tree.RoleName}
	rootStyle  = tree.Style{Role: tree.RoleName, Bold: true}
	punctStyle = tree.Style{Role: tree.RolePunct}
	paramStyle = tree.Style{Role: tree.RoleParam}
	typeStyle  = tree.Style{Role: tree.RoleType}
)

// Forest builds one unresolved root node per type.
func Forest(types []Type) []*tree.Node {
	nodes := make([]*tree.Node, len(types))
	for i, t := range types {
		nodes[i] = TypeNode(t)
	}
	return nodes
}

// TypeNode returns an unresolved node for t whose population lists t's
// methods.
func TypeNode(t Type) *tree.Node {
	return tree.NewNode(tree.Label{{Text: t.Name(), Style: rootStyle}}, methodsOf(t))
}

// MethodNode returns the node for m. Methods leading to another type are
// unresolved and populate with that type's methods; the rest are leaves.
// Each call yields a fresh node, so a type reached along two paths is two
// distinct nodes.
func MethodNode(m Method) *tree.Node {
	label := MethodLabel(m)
	if m.Next == nil {
		return tree.NewLeaf(label)
	}
	return tree.NewNode(label, methodsOf(m.Next))
}

func methodsOf(t Type) tree.PopulateFunc {
	return func() ([]*tree.Node, error) {
		methods, err := t.Methods()
		if err != nil {
			return nil, fmt.Errorf("methods of %s: %w", t.Name(), err)
		}
		nodes := make([]*tree.Node, len(methods))
		for i, m := range methods {
			nodes[i] = MethodNode(m)
		}
		return nodes, nil
	}
}

// MethodLabel renders "Name(p0: T0, p1: T1): R" as styled spans.
func MethodLabel(m Method) tree.Label {
	label := tree.Label{
		{Text: m.Name, Style: nameStyle},
		{Text: "(", Style: punctStyle},
	}
	for i, p := range m.Params {
		if i > 0 {
			label = append(label, tree.Span{Text: ", ", Style: punctStyle})
		}
		label = append(label,
			tree.Span{Text: p.Name, Style: paramStyle},
			tree.Span{Text: ": ", Style: punctStyle},
			tree.Span{Text: p.Type, Style: typeStyle},
		)
	}
	label = append(label, tree.Span{Text: ")", Style: punctStyle})

	switch len(m.Results) {
	case 0:
	case 1:
		label = append(label,
			tree.Span{Text: ": ", Style: punctStyle},
			tree.Span{Text: m.Results[0], Style: typeStyle},
		)
	default:
		label = append(label, tree.Span{Text: ": (", Style: punctStyle})
		for i, r := range m.Results {
			if i > 0 {
				label = append(label, tree.Span{Text: ", ", Style: punctStyle})
			}
			label = append(label, tree.Span{Text: r, Style: typeStyle})
		}
		label = append(label, tree.Span{Text: ")", Style: punctStyle})
	}
	return label
}
