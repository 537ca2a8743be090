package cli

import (
	"strings"

	"github.com/peterh/liner"
)

// promptYesNo reads one answer from the terminal. Ctrl-C counts as no.
func promptYesNo(prompt string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
