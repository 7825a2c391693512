package main

import (
	"errors"
	"fmt"

	"github.com/mark3labs/deckfill/internal/session"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/values"
	"github.com/mark3labs/deckfill/internal/workflow"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	values string
	output string
}

var downloadFlags struct {
	output string
}

var generateCmd = &cobra.Command{
	Use:   "generate <id>",
	Short: "Fill a template from a values file and save the presentation",
	Long: `Fill a template without the TUI. The values file is YAML or JSON with
one key per placeholder; run 'deckfill templates show <id>' for a skeleton.
Lists take a sequence of strings, images an asset key or image URL.

If generation fails the entries stay in the tab and can be reviewed with
'deckfill fill <id> --review'.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Generate the presentation pending in this tab",
	Long: `Consume the tab's pending download and generate it. A pending download
is left behind when generation was interrupted; it can be used only once.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.values, "values", "v", "", "Values file (YAML or JSON)")
	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "", "Output directory (default: from config)")
	_ = generateCmd.MarkFlagRequired("values")

	downloadCmd.Flags().StringVarP(&downloadFlags.output, "output", "o", "", "Output directory (default: from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	tpl, err := e.client.GetTemplate(ctx, template.ID(args[0]))
	if err != nil {
		return err
	}
	vals, err := values.ReadFile(tpl, generateFlags.values)
	if err != nil {
		return err
	}

	p, err := workflow.Fill(ctx, e.client, e.tab, tpl, vals)
	if err != nil {
		return err
	}

	dir := generateFlags.output
	if dir == "" {
		dir = e.cfg.OutputDir
	}
	path, err := workflow.Save(dir, p, tpl)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(p.Data))
	return printHooks(cmd, path, tpl)
}

// printHooks runs the post-generate hooks and prints their output.
func printHooks(cmd *cobra.Command, path string, tpl template.Template) error {
	out, err := runPostGenerate(cmd.Context(), path, tpl)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return nil
}

func runDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	h, err := session.PeekHandoff(ctx, e.tab)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("nothing to download in tab %s", e.tabID)
	}
	p, err := workflow.Download(ctx, e.client, e.tab)
	if errors.Is(err, session.ErrNoHandoff) {
		return fmt.Errorf("nothing to download in tab %s", e.tabID)
	}
	if err != nil {
		return err
	}

	dir := downloadFlags.output
	if dir == "" {
		dir = e.cfg.OutputDir
	}
	tpl := template.Template{ID: h.TemplateID}
	path, err := workflow.Save(dir, p, tpl)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(p.Data))
	return printHooks(cmd, path, tpl)
}
