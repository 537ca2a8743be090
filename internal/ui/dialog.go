package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmDialog is a modal yes/no prompt. It keeps no state of its own:
// build one from the caller's state on every render.
type ConfirmDialog struct {
	IsOpen       bool
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	OnConfirm    func() tea.Cmd
	OnCancel     func() tea.Cmd
}

var (
	dialogConfirmKeys = key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y/enter", "confirm"))
	dialogCancelKeys  = key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel"))
)

// DialogKeys returns the dialog's bindings for help views.
func DialogKeys() []key.Binding { return []key.Binding{dialogConfirmKeys, dialogCancelKeys} }

func (d ConfirmDialog) labels() (string, string) {
	confirm, cancel := d.ConfirmLabel, d.CancelLabel
	if confirm == "" {
		confirm = "Delete"
	}
	if cancel == "" {
		cancel = "Cancel"
	}
	return confirm, cancel
}

// HandleKey maps a key press to the confirm or cancel callback. It reports
// whether the dialog consumed the key; an open dialog consumes every key.
func (d ConfirmDialog) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !d.IsOpen {
		return nil, false
	}
	switch {
	case key.Matches(msg, dialogConfirmKeys):
		if d.OnConfirm != nil {
			return d.OnConfirm(), true
		}
	case key.Matches(msg, dialogCancelKeys):
		if d.OnCancel != nil {
			return d.OnCancel(), true
		}
	}
	return nil, true
}

// View renders the dialog box, or "" when closed.
func (d ConfirmDialog) View(width int) string {
	if !d.IsOpen {
		return ""
	}
	t := Current()
	confirm, cancel := d.labels()

	bodyW := width - 8
	if bodyW > 60 {
		bodyW = 60
	}
	if bodyW < 20 {
		bodyW = 20
	}

	btn := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, false, true, false)
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		btn.Inherit(t.Muted).Render("[n] "+cancel),
		"  ",
		btn.Inherit(t.Error).Render("[y] "+confirm),
	)

	content := strings.Join([]string{
		t.Title.Render(d.Title),
		"",
		lipgloss.NewStyle().Width(bodyW).Render(d.Message),
		"",
		buttons,
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Error.GetForeground()).
		Padding(1, 2).
		Render(content)
}
