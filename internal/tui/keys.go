package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Health   key.Binding
	Help     key.Binding
	Quit     key.Binding

	NextField key.Binding
	Submit    key.Binding
	Back      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:     key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a", "add")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Health:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "health")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) listHelp(full bool) []key.Binding {
	if full {
		return []key.Binding{k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Refresh, k.Health, k.Help, k.Quit}
	}
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Back}
}
