package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/npratt/typetree/internal/tree"
	"github.com/npratt/typetree/internal/tui"
	"github.com/npratt/typetree/internal/typegraph"
)

// Dump output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatSVG  = "svg"
)

var dumpFormats = []string{formatText, formatJSON, formatYAML, formatSVG}

// dumpNode is the structured form of an expanded tree.
type dumpNode struct {
	Label    string     `json:"label" yaml:"label"`
	Path     string     `json:"path" yaml:"path"`
	Children []dumpNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// dumpOptions controls the dump command output.
type dumpOptions struct {
	Depth  int
	Format string
	Render tui.RenderOptions
}

// runDump expands the trees for queries to opts.Depth levels and writes them
// to w. Methods that fail to expand are reported in the returned error after
// the rest of the tree has been written.
func runDump(ctx context.Context, w io.Writer, src typegraph.Source, queries []string, opts dumpOptions) error {
	if err := checkFormat(opts.Format); err != nil {
		return err
	}
	types, err := typegraph.Roots(ctx, src, queries...)
	if err != nil {
		return err
	}
	e := tree.New(typegraph.Forest(types)...)
	expandErr := e.ExpandAll(opts.Depth)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeDump(w, e, opts); err != nil {
		return err
	}

	if expandErr != nil {
		return fmt.Errorf("expand tree: %w", expandErr)
	}
	return nil
}

func writeDump(w io.Writer, e *tree.Engine, opts dumpOptions) error {
	switch opts.Format {
	case formatJSON:
		data, err := json.MarshalIndent(dumpForest(e), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal tree: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dumpForest(e)); err != nil {
			return fmt.Errorf("marshal tree: %w", err)
		}
		return enc.Close()
	case formatSVG:
		return tui.WriteSVG(w, e, opts.Render)
	case formatText, "":
		return tui.WriteRows(w, e, opts.Render)
	default:
		return checkFormat(opts.Format)
	}
}

// checkFormat rejects formats other than dumpFormats. Empty means text.
func checkFormat(format string) error {
	if format == "" || slices.Contains(dumpFormats, format) {
		return nil
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(dumpFormats, ", "))
}

// dumpForest converts the expanded part of the forest.
func dumpForest(e *tree.Engine) []dumpNode {
	roots := e.Roots()
	nodes := make([]dumpNode, len(roots))
	for i, root := range roots {
		nodes[i] = dumpSubtree(e, tree.Root(i), root)
	}
	return nodes
}

func dumpSubtree(e *tree.Engine, p tree.Path, n *tree.Node) dumpNode {
	d := dumpNode{Label: n.Label.String(), Path: p.String()}
	if !e.IsExpanded(p) {
		return d
	}
	for i, child := range n.Children() {
		d.Children = append(d.Children, dumpSubtree(e, p.Child(i), child))
	}
	return d
}
