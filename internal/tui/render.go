package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/npratt/typetree/internal/config"
	"github.com/npratt/typetree/internal/tree"
)

const (
	indicatorCollapsed = "▸"
	indicatorExpanded  = "▾"
	indicatorLeaf      = "•"
	guide              = "│"
	iconType           = "◆"
	iconMethod         = "ƒ"
	ellipsis           = "…"
)

// RenderOptions control how rows are drawn.
type RenderOptions struct {
	IndentWidth int
	Guides      bool
	Icons       bool
}

// RenderOptionsFrom converts tree config into render options.
func RenderOptionsFrom(cfg config.TreeConfig) RenderOptions {
	return RenderOptions{
		IndentWidth: cfg.IndentWidth,
		Guides:      cfg.Guides,
		Icons:       cfg.Icons,
	}
}

// prefix returns the indentation, expand indicator and icon for row.
func prefix(row tree.Row, opts RenderOptions) string {
	indent := max(opts.IndentWidth, 1)
	var b strings.Builder
	for range row.Depth {
		if opts.Guides {
			b.WriteString(guide)
			b.WriteString(strings.Repeat(" ", indent-1))
		} else {
			b.WriteString(strings.Repeat(" ", indent))
		}
	}
	switch {
	case !row.HasChildren:
		b.WriteString(indicatorLeaf)
	case row.Expanded:
		b.WriteString(indicatorExpanded)
	default:
		b.WriteString(indicatorCollapsed)
	}
	b.WriteString(" ")
	if opts.Icons {
		if row.Depth == 0 {
			b.WriteString(iconType)
		} else {
			b.WriteString(iconMethod)
		}
		b.WriteString(" ")
	}
	return b.String()
}

// PlainRow renders row as unstyled text.
func PlainRow(row tree.Row, opts RenderOptions) string {
	return prefix(row, opts) + row.Node.Label.String()
}

// styledRow renders row with role colors, truncated to width cells.
func styledRow(row tree.Row, opts RenderOptions, width int) string {
	pre := prefix(row, opts)
	if row.Selected {
		line := truncate(pre+row.Node.Label.String(), width)
		if pad := width - runewidth.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		return styles.Selected.Render(line)
	}

	var b strings.Builder
	pre = truncate(pre, width)
	b.WriteString(styles.Guide.Render(pre))
	remaining := width - runewidth.StringWidth(pre)
	for _, span := range row.Node.Label {
		if remaining <= 0 {
			break
		}
		text := truncate(span.Text, remaining)
		remaining -= runewidth.StringWidth(text)
		b.WriteString(spanStyle(span.Style).Render(text))
	}
	return b.String()
}

// truncate shortens s to at most width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}
