package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel frames lines in the current theme's border.
func Panel(lines ...string) string {
	return PanelStyle().Render(strings.Join(lines, "\n"))
}

// PanelStyle is the frame used by Panel, exposed so callers can size it.
func PanelStyle() lipgloss.Style {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
}

// Truncate shortens s to max runes, ending in "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
