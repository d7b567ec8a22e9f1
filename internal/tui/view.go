package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minWidth  = 60
	minHeight = 15
)

// View implements tea.Model. This renders the full TUI display.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Handle too small terminal
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	innerWidth := m.innerWidth()
	sections := []string{
		m.renderHeader(innerWidth),
		m.renderDivider(innerWidth),
		m.renderBody(),
		m.renderDivider(innerWidth),
		m.renderStatus(innerWidth),
		m.renderFooter(),
	}

	rendered := styles.Container.
		Width(innerWidth).
		Render(strings.Join(sections, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, rendered)
}

// innerWidth is the content width inside the container border.
func (m model) innerWidth() int {
	return safeWidth(m.width - 2)
}

// resize fits the viewport between the header and the footer.
func (m *model) resize() {
	innerWidth := m.innerWidth()
	m.help.Width = innerWidth

	// Border (2), header (1), dividers (2), status (1), plus the footer
	chrome := 6 + lipgloss.Height(m.renderFooter())
	m.viewport.Width = innerWidth
	m.viewport.Height = max(1, m.height-chrome)
	m.syncViewport()
}

// syncViewport renders the rows into the viewport and scrolls so the cursor
// stays visible.
func (m *model) syncViewport() {
	width := m.viewport.Width
	if width <= 0 {
		return
	}
	lines := make([]string, len(m.rows))
	for i, row := range m.rows {
		lines[i] = styledRow(row, m.opts, width)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m model) renderHeader(width int) string {
	title := styles.Title.Render("typetree")
	query := styles.Query.Render(truncate(strings.Join(m.queries, ", "), max(1, width-12)))
	header := title + "  " + query
	if m.loading {
		header += "  " + m.spinner.View()
	}
	return header
}

func (m model) renderDivider(width int) string {
	return styles.Divider.Render(strings.Repeat("─", width))
}

func (m model) renderBody() string {
	if !m.loaded {
		if m.loading {
			return m.spinner.View() + " Loading types..."
		}
		return styles.Error.Render("No types loaded")
	}
	if len(m.rows) == 0 {
		return styles.Path.Render("Nothing to show")
	}
	return m.viewport.View()
}

func (m model) renderStatus(width int) string {
	if m.err != nil {
		return styles.Error.Render(truncate("error: "+m.err.Error(), width))
	}
	if m.notice != "" {
		return styles.Count.Render(truncate(m.notice, width))
	}
	row, ok := m.currentRow()
	if !ok {
		return ""
	}
	count := fmt.Sprintf(" %d/%d", m.cursor+1, len(m.rows))
	path := truncate(row.Path.String(), max(1, width-len(count)))
	return styles.Path.Render(path) + styles.Count.Render(count)
}

func (m model) renderFooter() string {
	return m.help.View(m.keys)
}

// renderTooSmall renders a message when the terminal is too small.
func (m model) renderTooSmall() string {
	msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d", m.width, m.height, minWidth, minHeight)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// safeWidth ensures a width value is at least 1.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}
