package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/itemdesk/internal/flow"
	"github.com/idilsaglam/itemdesk/internal/model"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

func (m Model) View() string {
	t := ui.Current()
	snap := m.ctl.Snapshot()

	header := t.Title.Render(fmt.Sprintf("Items (%d)", len(snap.Items)))
	if snap.Loading && snap.Loaded {
		header += " " + m.spin.View()
	}

	sections := []string{m.statusView(), m.createView(), header}
	switch {
	case !snap.Loaded && snap.Err == nil && len(snap.Items) == 0:
		sections = append(sections, m.spin.View()+" Loading...")
	case len(snap.Items) == 0:
		sections = append(sections, t.Muted.Render("No items yet. Create the first one!"))
	default:
		*m.rows = m.rowContext()
		sections = append(sections, m.list.View())
	}
	sections = append(sections, m.helpView())

	body := ui.PanelStyle().Width(m.width - 2).Render(strings.Join(sections, "\n\n"))
	if m.ctl.DialogOpen() {
		box := m.dialog().View(m.width) + "\n\n" + m.help.ShortHelpView(ui.DialogKeys())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return body
}

func (m Model) statusView() string {
	t := ui.Current()
	msg, ok := m.ctl.Status()
	if !ok {
		return t.Muted.Render("itemdesk")
	}
	if msg.Kind == model.MessageError {
		return t.Error.Render(t.SymFail + " " + msg.Text)
	}
	return t.Success.Render(t.SymOK + " " + msg.Text)
}

func (m Model) createView() string {
	t := ui.Current()
	slot := m.ctl.CreateSlot()

	title := t.Accent.Render("Add new item")
	if m.focus != focusCreate {
		title = t.Muted.Render("Add new item  [a] focus")
	}
	action := t.Accent.Render("[enter] Create item")
	switch {
	case slot.State == flow.CreateSubmitting:
		action = t.Pending.Render(m.spin.View() + " Creating...")
	case slot.Draft.Blank():
		action = t.Muted.Render("[enter] Create item")
	}
	return strings.Join([]string{
		title,
		"Title:       " + m.newTitle.View(),
		"Description: " + m.newDesc.View(),
		action,
	}, "\n")
}

func (m Model) helpView() string {
	if m.ctl.EditSlot().State != flow.EditNone || m.focus == focusCreate {
		return m.help.ShortHelpView(m.keys.formHelp())
	}
	return m.help.ShortHelpView(m.keys.listHelp(m.showHelp))
}

func (m Model) rowContext() rowState {
	slot := m.ctl.EditSlot()
	pending := make(map[int]bool)
	for _, id := range m.ctl.PendingIDs() {
		pending[id] = true
	}
	return rowState{
		editingID: slot.ItemID,
		editing:   slot.State != flow.EditNone,
		saving:    slot.State == flow.EditSaving,
		editTitle: m.editTitle.View(),
		editDesc:  m.editDesc.View(),
		pending:   pending,
		spinner:   m.spin.View(),
		width:     m.width - 4,
	}
}
