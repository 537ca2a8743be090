package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is one named look: text styles, the panel border and the status
// symbols. Renderers read the active one through Current.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected                                      lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.Color

	SymOK, SymFail, SymCursor, SymBusy, SymBullet string
}

// ThemeNames lists the accepted theme names.
var ThemeNames = []string{"classic", "neon", "mono"}

var current = themeFor("classic")

// KnownTheme reports whether name is one of ThemeNames.
func KnownTheme(name string) bool {
	for _, n := range ThemeNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func SetTheme(name string) {
	current = themeFor(name)
	if current.Name == "mono" {
		SetColorForcing(false, true)
	}
}

func themeFor(name string) Theme {
	s := lipgloss.NewStyle
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:        "neon",
			Title:       s().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:       s().Foreground(lipgloss.Color("8")),
			Accent:      s().Foreground(lipgloss.Color("14")),
			Success:     s().Foreground(lipgloss.Color("10")),
			Error:       s().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     s().Foreground(lipgloss.Color("11")),
			Selected:    s().Bold(true).Foreground(lipgloss.Color("14")),
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
			SymOK:       "✔", SymFail: "✖", SymCursor: "❯", SymBusy: "⏳", SymBullet: "•",
		}
	case "mono":
		return Theme{
			Name:        "mono",
			Title:       s().Bold(true),
			Muted:       s(),
			Accent:      s(),
			Success:     s(),
			Error:       s(),
			Pending:     s(),
			Selected:    s().Reverse(true),
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.Color(""),
			SymOK:       "ok", SymFail: "x", SymCursor: ">", SymBusy: "...", SymBullet: "-",
		}
	default: // classic
		return Theme{
			Name:        "classic",
			Title:       s().Bold(true),
			Muted:       s().Faint(true),
			Accent:      s().Foreground(lipgloss.Color("12")),
			Success:     s().Foreground(lipgloss.Color("42")),
			Error:       s().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     s().Foreground(lipgloss.Color("214")),
			Selected:    s().Bold(true).Reverse(true),
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),
			SymOK:       "✔", SymFail: "✖", SymCursor: ">", SymBusy: "⏳", SymBullet: "•",
		}
	}
}

// Current returns the active theme.
func Current() Theme { return current }
