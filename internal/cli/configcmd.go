package cli

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/itemdesk/internal/config"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	var path string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Example: `
itemdesk config init
itemdesk config init --path ./.itemdesk.yaml --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "wrote "+path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&path, "path", "", "Target file (default: the user config dir)")
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.cfg
			file := c.File
			if file == "" {
				file = "(none)"
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(config.KeyAPIURL, c.APIURL)
			tbl.AddRow(config.KeyTimeout, c.Timeout)
			tbl.AddRow(config.KeyMessageTTL, c.MessageTTL)
			tbl.AddRow(config.KeyTheme, c.Theme)
			tbl.AddRow(config.KeyLogLevel, c.LogLevel)
			tbl.AddRow(config.KeyLogFile, c.LogFile)
			tbl.AddRow("file", file)

			_, err := fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return err
		},
	}
}
