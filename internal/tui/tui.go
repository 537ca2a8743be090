// Package tui is the interactive view: a Bubble Tea program that projects
// the flow controller's state into a list, a creation form, an inline edit
// row and the delete confirmation. It never calls the network itself.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/itemdesk/internal/flow"
	"github.com/idilsaglam/itemdesk/internal/model"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

type focusArea int

const (
	focusList focusArea = iota
	focusCreate
)

const (
	fieldTitle = iota
	fieldDescription
)

// Model is the Bubble Tea model. Copies share the controller.
type Model struct {
	ctl  *flow.Controller
	keys keyMap
	help help.Model
	list list.Model
	spin spinner.Model

	newTitle, newDesc   textinput.Model
	editTitle, editDesc textinput.Model
	editLoaded          bool
	editingID           int

	focus    focusArea
	field    int
	showHelp bool

	rows    *rowState
	synced  bool
	version uint64

	width, height int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// New builds the view over ctl.
func New(ctl *flow.Controller) Model {
	rows := &rowState{}
	l := list.New(nil, itemDelegate{state: rows}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.Styles.PaginationStyle = ui.Current().Muted

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = ui.Current().Pending

	m := Model{
		ctl:       ctl,
		keys:      defaultKeys(),
		help:      help.New(),
		list:      l,
		spin:      sp,
		newTitle:  newInput("New item title...", 200),
		newDesc:   newInput("Description (optional)", 1000),
		editTitle: newInput("Item title...", 200),
		editDesc:  newInput("Description (optional)", 1000),
		rows:      rows,
		width:     80,
		height:    24,
	}
	m.resize()
	m.sync()
	return m
}

// Run starts the program in the alternate screen and blocks until quit.
func Run(ctl *flow.Controller, opts ...tea.ProgramOption) error {
	defer ctl.Close()
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(New(ctl), opts...).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctl.Init(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.ctl.Update(msg); ok {
		m.sync()
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.ctl.Close()
		return m, tea.Quit
	}
	if cmd, ok := m.dialog().HandleKey(msg); ok {
		m.sync()
		return m, cmd
	}
	if m.ctl.EditSlot().State != flow.EditNone {
		return m.handleEditKey(msg)
	}
	if m.focus == focusCreate {
		return m.handleCreateKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctl.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.focus = focusCreate
		m.field = fieldTitle
		return m, m.focusCreateField()
	case key.Matches(msg, m.keys.Edit):
		if it, ok := m.selected(); ok && m.ctl.BeginEdit(it.ID) {
			m.sync()
			return m, m.focusEditField()
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.selected(); ok {
			m.ctl.RequestDelete(it.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctl.Refresh()
	case key.Matches(msg, m.keys.Health):
		return m, m.ctl.CheckHealth()
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = focusList
		m.newTitle.Blur()
		m.newDesc.Blur()
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.field = 1 - m.field
		return m, m.focusCreateField()
	case key.Matches(msg, m.keys.Submit):
		cmd := m.ctl.SubmitCreate()
		m.sync()
		return m, cmd
	}
	if m.ctl.CreateSlot().State == flow.CreateSubmitting {
		return m, nil
	}
	var cmd tea.Cmd
	if m.field == fieldTitle {
		m.newTitle, cmd = m.newTitle.Update(msg)
	} else {
		m.newDesc, cmd = m.newDesc.Update(msg)
	}
	m.ctl.SetCreateDraft(model.Draft{Title: m.newTitle.Value(), Description: m.newDesc.Value()})
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctl.EditSlot().State == flow.EditSaving {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ctl.CancelEdit()
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.field = 1 - m.field
		return m, m.focusEditField()
	case key.Matches(msg, m.keys.Submit):
		cmd := m.ctl.SaveEdit()
		m.sync()
		return m, cmd
	}
	var cmd tea.Cmd
	if m.field == fieldTitle {
		m.editTitle, cmd = m.editTitle.Update(msg)
	} else {
		m.editDesc, cmd = m.editDesc.Update(msg)
	}
	m.ctl.SetEditDraft(model.Draft{Title: m.editTitle.Value(), Description: m.editDesc.Value()})
	return m, cmd
}

func (m *Model) focusCreateField() tea.Cmd {
	if m.field == fieldTitle {
		m.newDesc.Blur()
		return m.newTitle.Focus()
	}
	m.newTitle.Blur()
	return m.newDesc.Focus()
}

func (m *Model) focusEditField() tea.Cmd {
	if m.field == fieldTitle {
		m.editDesc.Blur()
		return m.editTitle.Focus()
	}
	m.editTitle.Blur()
	return m.editDesc.Focus()
}

func (m Model) selected() (model.Item, bool) {
	r, ok := m.list.SelectedItem().(row)
	if !ok {
		return model.Item{}, false
	}
	return r.item, true
}

func (m Model) dialog() ui.ConfirmDialog {
	slot := m.ctl.DeleteSlot()
	ctl := m.ctl
	return ui.ConfirmDialog{
		IsOpen:       slot.State == flow.DeleteConfirm,
		Title:        "Confirm delete",
		Message:      fmt.Sprintf("Are you sure you want to delete item %q?", ui.Truncate(slot.Target.Title, 60)),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
		OnConfirm:    ctl.ConfirmDelete,
		OnCancel: func() tea.Cmd {
			ctl.CancelDelete()
			return nil
		},
	}
}

// sync pulls cache and controller state into the widgets. Widgets never
// hold state the controller does not know about.
func (m *Model) sync() {
	snap := m.ctl.Snapshot()
	if !m.synced || snap.Version != m.version {
		idx := m.list.Index()
		m.list.SetItems(rowsOf(snap.Items))
		if idx >= len(snap.Items) {
			idx = len(snap.Items) - 1
		}
		if idx >= 0 {
			m.list.Select(idx)
		}
		m.version = snap.Version
		m.synced = true
	}

	d := m.ctl.CreateSlot().Draft
	if m.newTitle.Value() != d.Title {
		m.newTitle.SetValue(d.Title)
	}
	if m.newDesc.Value() != d.Description {
		m.newDesc.SetValue(d.Description)
	}

	slot := m.ctl.EditSlot()
	switch {
	case slot.State == flow.EditNone && m.editLoaded:
		m.editLoaded = false
		m.editTitle.Blur()
		m.editDesc.Blur()
		m.field = fieldTitle
	case slot.State != flow.EditNone && (!m.editLoaded || m.editingID != slot.ItemID):
		m.editLoaded = true
		m.editingID = slot.ItemID
		m.editTitle.SetValue(slot.Draft.Title)
		m.editDesc.SetValue(slot.Draft.Description)
		m.field = fieldTitle
	}
}

func (m *Model) resize() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 16
	if h < 3 {
		h = 3
	}
	m.list.SetSize(w, h)
	for _, ti := range []*textinput.Model{&m.newTitle, &m.newDesc, &m.editTitle, &m.editDesc} {
		ti.Width = w - 20
	}
}
