package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// ErrExists is returned by WriteDefault when the target is already there.
var ErrExists = errors.New("config file already exists")

const defaultFile = `# itemdesk configuration
# Every key can be overridden with an ITEMDESK_<KEY> environment variable
# or the matching --flag.

# Base URL of the items backend, including the /api prefix.
api_url: http://localhost:8000/api

# Per-request timeout.
timeout: 10s

# How long status messages stay visible in the TUI.
message_ttl: 5s

# classic, neon or mono
theme: classic

# debug, info, warn or error
log_level: info

# Log destination. Empty logs to stderr for subcommands and discards in the TUI.
log_file: ""
`

// DefaultPath is where WriteDefault puts the file when no path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "itemdesk", FileName+".yaml"), nil
}

// WriteDefault writes a commented default config to path. An existing
// file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrExists)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(defaultFile)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
