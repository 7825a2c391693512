package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/values"
	"github.com/spf13/cobra"
)

var renameFlags struct {
	name        string
	description string
}

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Manage saved templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		tpls, err := client.ListTemplates(cmd.Context())
		if err != nil {
			return err
		}
		if len(tpls) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No templates yet. Run 'deckfill upload' to add one.")
			return nil
		}
		printTemplates(cmd.OutOrStdout(), tpls, false)
		return nil
	},
}

var templatesTrashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List deleted templates that can still be restored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		tpls, err := client.ListTrash(cmd.Context())
		if err != nil {
			return err
		}
		if len(tpls) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Trash is empty.")
			return nil
		}
		printTemplates(cmd.OutOrStdout(), tpls, true)
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a template and a values skeleton for it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		tpl, err := client.GetTemplate(cmd.Context(), template.ID(args[0]))
		if err != nil {
			return err
		}
		return printTemplate(cmd.OutOrStdout(), tpl)
	},
}

var templatesRenameCmd = &cobra.Command{
	Use:   "rename <id>",
	Short: "Change a template's name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd api.TemplateUpdate
		if cmd.Flags().Changed("name") {
			name := strings.TrimSpace(renameFlags.name)
			if name == "" {
				return fmt.Errorf("--name cannot be empty")
			}
			upd.Name = &name
		}
		if cmd.Flags().Changed("description") {
			upd.Description = &renameFlags.description
		}
		if upd.Name == nil && upd.Description == nil {
			return fmt.Errorf("nothing to change, use --name or --description")
		}

		_, client, err := setupClient()
		if err != nil {
			return err
		}
		tpl, err := client.UpdateTemplate(cmd.Context(), template.ID(args[0]), upd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", tpl.Name)
		return nil
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Move a template to the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		if err := client.DeleteTemplate(cmd.Context(), template.ID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved template %s to the trash. It can be restored for %d days.\n",
			args[0], int(api.TrashRetention.Hours()/24))
		return nil
	},
}

var templatesRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a template from the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setupClient()
		if err != nil {
			return err
		}
		err = client.RestoreTemplate(cmd.Context(), template.ID(args[0]))
		if api.IsGone(err) {
			return fmt.Errorf("template %s was permanently deleted", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored template %s\n", args[0])
		return nil
	},
}

func init() {
	templatesRenameCmd.Flags().StringVarP(&renameFlags.name, "name", "n", "", "New template name")
	templatesRenameCmd.Flags().StringVarP(&renameFlags.description, "description", "d", "", "New description")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesTrashCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesRenameCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
	templatesCmd.AddCommand(templatesRestoreCmd)
}

// printTemplates writes a table of templates.
func printTemplates(w io.Writer, tpls []template.Template, trashed bool) {
	headers := []string{"ID", "NAME", "PLACEHOLDERS", "CREATED"}
	if trashed {
		headers[3] = "DELETED"
	}
	rows := make([][]string, 0, len(tpls))
	for _, tpl := range tpls {
		when := tpl.CreatedAt
		if trashed {
			when = tpl.DeletedAt
		}
		date := ""
		if when != nil {
			date = when.Format("2006-01-02")
		}
		rows = append(rows, []string{string(tpl.ID), tpl.Name, strconv.Itoa(len(tpl.Placeholders)), date})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

// printTemplate writes a template's details and a values skeleton.
func printTemplate(w io.Writer, tpl template.Template) error {
	fmt.Fprintf(w, "%s (id %s)\n", tpl.Name, tpl.ID)
	if tpl.Description != "" {
		fmt.Fprintf(w, "\n%s\n", tpl.Description)
	}
	if len(tpl.Placeholders) == 0 {
		fmt.Fprintln(w, "\nThis template has no placeholders.")
		return nil
	}
	fmt.Fprintln(w, "\nPlaceholders:")
	for _, p := range tpl.Placeholders {
		line := fmt.Sprintf("  {{%s}}  %s", p.Name, p.Kind.Label())
		if len(p.Options) > 0 {
			line += " (" + strings.Join(p.Options, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}

	skeleton, err := values.Skeleton(tpl)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nValues file skeleton for 'deckfill generate %s --values':\n\n%s", tpl.ID, skeleton)
	return nil
}
