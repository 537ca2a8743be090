package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestConfirmDialogClosedRendersNothing(t *testing.T) {
	d := ConfirmDialog{Title: "Confirm delete", Message: "Really?"}
	if got := d.View(80); got != "" {
		t.Fatalf("closed dialog rendered %q", got)
	}
	if _, handled := d.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}); handled {
		t.Fatalf("closed dialog must not consume keys")
	}
}

func TestConfirmDialogRendersInputs(t *testing.T) {
	d := ConfirmDialog{
		IsOpen:       true,
		Title:        "Confirm delete",
		Message:      `Delete item "Butter"?`,
		ConfirmLabel: "Remove",
		CancelLabel:  "Keep",
	}
	out := d.View(80)
	for _, want := range []string{"Confirm delete", `Delete item "Butter"?`, "Remove", "Keep"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dialog view missing %q:\n%s", want, out)
		}
	}
	if d.View(80) != out {
		t.Fatalf("same inputs rendered differently")
	}
}

func TestConfirmDialogDefaultsLabels(t *testing.T) {
	out := ConfirmDialog{IsOpen: true, Title: "t", Message: "m"}.View(80)
	if !strings.Contains(out, "Delete") || !strings.Contains(out, "Cancel") {
		t.Fatalf("expected default labels:\n%s", out)
	}
}

func TestConfirmDialogKeysInvokeCallbacks(t *testing.T) {
	var confirmed, canceled int
	d := ConfirmDialog{
		IsOpen:    true,
		OnConfirm: func() tea.Cmd { confirmed++; return nil },
		OnCancel:  func() tea.Cmd { canceled++; return nil },
	}

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("y")},
		{Type: tea.KeyEnter},
		{Type: tea.KeyRunes, Runes: []rune("n")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("x")},
	}
	for _, k := range keys {
		if _, handled := d.HandleKey(k); !handled {
			t.Fatalf("open dialog did not consume %q", k.String())
		}
	}
	if confirmed != 2 || canceled != 2 {
		t.Fatalf("confirmed=%d canceled=%d, want 2 and 2", confirmed, canceled)
	}
}
