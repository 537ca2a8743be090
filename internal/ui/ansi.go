package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// SetColorForcing overrides terminal detection for every renderer
// (lipgloss styles and fatih/color tables alike).
func SetColorForcing(force, disable bool) {
	switch {
	case disable:
		color.NoColor = true
		lipgloss.SetColorProfile(termenv.Ascii)
	case force:
		color.NoColor = false
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}
