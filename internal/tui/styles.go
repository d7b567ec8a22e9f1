package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/npratt/typetree/internal/tree"
)

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	Divider   lipgloss.Style

	// Header styles
	Title   lipgloss.Style
	Query   lipgloss.Style
	Loading lipgloss.Style

	// Status line styles
	Path  lipgloss.Style
	Count lipgloss.Style
	Error lipgloss.Style

	// Row styles
	Guide    lipgloss.Style
	Selected lipgloss.Style

	// Label roles
	Name  lipgloss.Style
	Param lipgloss.Style
	Type  lipgloss.Style
	Punct lipgloss.Style
	Plain lipgloss.Style
}{
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Query: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Loading: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Path: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Count: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Guide: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")). // Bright cyan for selection
		Background(lipgloss.Color("236")),

	Name: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	Param: lipgloss.NewStyle().
		Foreground(lipgloss.Color("177")), // Magenta, like the original annotation color

	Type: lipgloss.NewStyle().
		Foreground(lipgloss.Color("114")),

	Punct: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Plain: lipgloss.NewStyle(),
}

// spanStyle maps a label style to its lipgloss rendering.
func spanStyle(st tree.Style) lipgloss.Style {
	var s lipgloss.Style
	switch st.Role {
	case tree.RoleName:
		s = styles.Name
	case tree.RoleParam:
		s = styles.Param
	case tree.RoleType:
		s = styles.Type
	case tree.RolePunct:
		s = styles.Punct
	default:
		s = styles.Plain
	}
	if st.Bold {
		s = s.Bold(true)
	}
	return s
}
