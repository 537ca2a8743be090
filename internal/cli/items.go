package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/itemdesk/internal/flow"
	"github.com/idilsaglam/itemdesk/internal/model"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

const (
	createdLayout = "2006-01-02 15:04"
	descWidth     = 72
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    cobra.NoArgs,
		Example: `
itemdesk ls
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			items, err := client.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(listLines(items)...))
			return nil
		},
	}
}

func listLines(items []model.Item) []string {
	t := ui.Current()
	lines := []string{t.Title.Render(fmt.Sprintf("Items (%d)", len(items))), ""}
	if len(items) == 0 {
		return append(lines,
			t.Muted.Render("No items yet. Create the first one!"),
			"",
			t.Muted.Render(`Tip: add with `+"`"+`itemdesk add "Buy milk"`+"`"),
		)
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Title"), bold.Sprint("Description"), bold.Sprint("Created"))
	for _, it := range items {
		desc := strings.ReplaceAll(strings.TrimSpace(it.Description), "\n", " ")
		tbl.AddRow(faint.Sprint(it.ID), it.Title, desc, faint.Sprint(created(it)))
	}
	tbl.RightAlign(0)
	return append(lines, tbl.String())
}

func created(it model.Item) string {
	c := it.Created()
	if c.IsZero() {
		return "-"
	}
	return c.Local().Format(createdLayout)
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		Example: `
itemdesk show 3
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			it, err := client.GetOne(ctx, id)
			if err != nil {
				return fmt.Errorf("get item %d: %w", id, err)
			}

			t := ui.Current()
			lines := []string{
				t.Title.Render(it.Title) + " " + t.Muted.Render(fmt.Sprintf("#%d", it.ID)),
				t.Muted.Render(t.SymBullet + " created " + created(it)),
				"",
			}
			if desc := strings.TrimSpace(it.Description); desc != "" {
				lines = append(lines, wordwrap.String(desc, descWidth))
			} else {
				lines = append(lines, t.Muted.Render("(no description)"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines...))
			return nil
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create an item (the title can be several words)",
		Args:  cobra.MinimumNArgs(1),
		Example: `
itemdesk add "Buy milk"
itemdesk add Buy bread -d "wholegrain"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := model.Draft{Title: strings.Join(args, " "), Description: description}
			if d.Blank() {
				return fmt.Errorf("add: %w", flow.ErrEmptyTitle)
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			it, err := client.Create(ctx, d)
			if err != nil {
				return fmt.Errorf("create item: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Item created! #%d %s", it.ID, it.Title))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Item description")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's title or description",
		Args:  cobra.ExactArgs(1),
		Example: `
itemdesk edit 3 --title "Buy oat milk"
itemdesk edit 3 --description ""
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") {
				return fmt.Errorf("edit: nothing to change; pass --title and/or --description")
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			it, err := client.GetOne(ctx, id)
			if err != nil {
				return fmt.Errorf("get item %d: %w", id, err)
			}
			d := model.DraftOf(it)
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("description") {
				d.Description = description
			}
			if d.Blank() {
				return fmt.Errorf("edit: %w", flow.ErrEmptyTitle)
			}

			it, err = client.Update(ctx, id, d)
			if err != nil {
				return fmt.Errorf("update item %d: %w", id, err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Item updated! #%d %s", it.ID, it.Title))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		Example: `
itemdesk rm 3
itemdesk rm 3 --yes
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			it, err := client.GetOne(ctx, id)
			if err != nil {
				return fmt.Errorf("get item %d: %w", id, err)
			}

			if !yes {
				if !app.stdinTTY() {
					return fmt.Errorf("rm: refusing to delete without --yes when stdin is not a terminal")
				}
				ok, err := app.confirm(fmt.Sprintf("Are you sure you want to delete item %q? (yes/no): ", it.Title))
				if err != nil || !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if _, err := client.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete item %d: %w", id, err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Item %q deleted!", it.Title))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			h, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("backend is unavailable: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "Backend is up! Status: "+h.Status)
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("not an item id: %s", s)
	}
	return id, nil
}
