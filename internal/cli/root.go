// Package cli is the itemdesk command tree. With no subcommand it starts the
// interactive TUI; every subcommand is a one-shot call against the backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/itemdesk/internal/api"
	"github.com/idilsaglam/itemdesk/internal/cache"
	"github.com/idilsaglam/itemdesk/internal/config"
	"github.com/idilsaglam/itemdesk/internal/flow"
	"github.com/idilsaglam/itemdesk/internal/tui"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

// skipConfig marks commands that run without a resolved configuration.
const skipConfig = "itemdesk/skip-config"

type App struct {
	ConfigFile string
	NoColor    bool

	cfg      *config.Config
	log      *slog.Logger
	closeLog func() error

	// confirm asks a yes/no question; stdinTTY reports whether it can.
	confirm  func(prompt string) (bool, error)
	stdinTTY func() bool
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	if app.confirm == nil {
		app.confirm = promptYesNo
	}
	if app.stdinTTY == nil {
		app.stdinTTY = func() bool { return ui.IsTTY(os.Stdin) }
	}

	cmd := &cobra.Command{
		Use:           "itemdesk",
		Short:         "itemdesk - manage items on an items backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  itemdesk

  # Scriptable commands
  itemdesk ls
  itemdesk add "Buy milk" -d "2 litres"
  itemdesk edit 3 --title "Buy oat milk"
  itemdesk rm 3 --yes

  # Point at another backend
  ITEMDESK_API_URL=http://items.internal/api itemdesk ls
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] != "" {
			return nil
		}
		return app.setup(cmd, !cmd.HasParent())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.teardown()
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigFile, "config", "", "Config file (default: .itemdesk in $ITEMDESK_CONFIG_PATH, ./ or the user config dir)")
	pf.String("api-url", "", "Backend base URL including the /api prefix")
	pf.Duration("timeout", 0, "Per-request timeout")
	pf.Duration("message-ttl", 0, "How long TUI status messages stay visible")
	pf.String("theme", "", "Colour theme ("+strings.Join(ui.ThemeNames, "|")+")")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", "Write logs to this file")
	pf.BoolVar(&app.NoColor, "no-color", false, "Disable colour output")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newHealthCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup resolves config, theme and logging for cmd.
func (a *App) setup(cmd *cobra.Command, interactive bool) error {
	cfg, err := config.Load(a.ConfigFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	ui.SetTheme(cfg.Theme)
	out, _ := cmd.OutOrStdout().(*os.File)
	ui.SetColorForcing(false, a.NoColor || out == nil || !ui.IsTTY(out))

	a.log, a.closeLog, err = newLogger(cfg, cmd.ErrOrStderr(), interactive)
	if err != nil {
		return err
	}
	a.log.Debug("config resolved", "file", cfg.File, "api_url", cfg.APIURL)
	return nil
}

func (a *App) teardown() error {
	if a.closeLog == nil {
		return nil
	}
	err := a.closeLog()
	a.closeLog = nil
	return err
}

// newLogger writes to log_file when set. Otherwise subcommands log to
// stderr and the TUI discards, since it owns the terminal.
func newLogger(cfg *config.Config, stderr io.Writer, interactive bool) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), f.Close, nil
	case interactive:
		return slog.New(slog.NewTextHandler(io.Discard, opts)), nil, nil
	default:
		return slog.New(slog.NewTextHandler(stderr, opts)), nil, nil
	}
}

func (a *App) client() (*api.Client, error) {
	c, err := api.New(a.cfg.APIURL, api.WithTimeout(a.cfg.Timeout), api.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	a.log.Debug("backend", "base_url", c.BaseURL(), "timeout", a.cfg.Timeout)
	return c, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !ui.IsTTY(os.Stdin) || !ui.IsTTY(os.Stdout) {
		return errors.New("interactive mode needs a terminal; see `itemdesk --help` for scriptable commands")
	}
	client, err := app.client()
	if err != nil {
		return err
	}
	ctl := flow.New(cache.New(client, app.log),
		flow.WithHealth(client),
		flow.WithLogger(app.log),
		flow.WithMessageTTL(app.cfg.MessageTTL),
		flow.WithContext(commandContext(cmd)),
	)
	return tui.Run(ctl)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// requestContext bounds a one-shot command by the configured timeout.
func (a *App) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), a.cfg.Timeout+time.Second)
}
