package tui

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"

	"github.com/npratt/typetree/internal/tree"
)

// SVG layout in pixels. Text is drawn in a monospace font, so a terminal cell
// maps to a fixed width.
const (
	svgCellWidth  = 8
	svgLineHeight = 18
	svgFontSize   = 13
	svgMargin     = 12
)

// svgColors mirrors the terminal palette for each label role.
var svgColors = map[tree.Role]string{
	tree.RolePlain: "#d0d0d0",
	tree.RoleName:  "#5fafff",
	tree.RoleParam: "#d7af87",
	tree.RoleType:  "#87d787",
	tree.RolePunct: "#8a8a8a",
}

// WriteSVG draws the visible rows of e as an SVG document.
func WriteSVG(w io.Writer, e *tree.Engine, opts RenderOptions) error {
	rows := e.Rows()
	cols := 1
	for _, row := range rows {
		cols = max(cols, runewidth.StringWidth(PlainRow(row, opts)))
	}
	width := cols*svgCellWidth + 2*svgMargin
	height := max(1, len(rows))*svgLineHeight + 2*svgMargin

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#1c1c1c")
	canvas.Gstyle(fmt.Sprintf("font-family:monospace;font-size:%dpx;white-space:pre", svgFontSize))

	for i, row := range rows {
		y := svgMargin + (i+1)*svgLineHeight - svgLineHeight/4
		pre := prefix(row, opts)
		canvas.Text(svgMargin, y, pre, "fill:#585858")

		x := svgMargin + runewidth.StringWidth(pre)*svgCellWidth
		for _, span := range row.Node.Label {
			style := "fill:" + svgColors[span.Style.Role]
			if span.Style.Bold {
				style += ";font-weight:bold"
			}
			canvas.Text(x, y, span.Text, style)
			x += runewidth.StringWidth(span.Text) * svgCellWidth
		}
	}

	canvas.Gend()
	canvas.End()
	return ew.err
}

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
