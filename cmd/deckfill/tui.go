package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui"
	"github.com/spf13/cobra"
)

var fillFlags struct {
	review bool
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a template and review its placeholders",
	Long: `Open the upload wizard. With a file argument the file is analyzed
right away; without one a file picker starts in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

var fillCmd = &cobra.Command{
	Use:   "fill <id>",
	Short: "Fill an existing template",
	Long: `Open the fill wizard for a saved template. Use --review to resume the
entries saved in this tab and go straight to the review step.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	fillCmd.Flags().BoolVarP(&fillFlags.review, "review", "r", false, "Resume saved entries at the review step")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	return runTUI(cmd, tui.Options{Start: tui.StartDashboard})
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := tui.Options{Start: tui.StartUpload}
	if len(args) == 1 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", args[0], err)
		}
		opts.UploadPath = path
		opts.StartDir = filepath.Dir(path)
	}
	return runTUI(cmd, opts)
}

func runFill(cmd *cobra.Command, args []string) error {
	opts := tui.Options{Start: tui.StartFill, TemplateID: template.ID(args[0])}
	if fillFlags.review {
		opts.Start = tui.StartReview
	}
	return runTUI(cmd, opts)
}

// runTUI fills the shared options and runs the app until it quits.
func runTUI(cmd *cobra.Command, opts tui.Options) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	opts.Service = e.client
	opts.Tab = e.tab
	opts.TabID = e.tabID
	opts.APIBase = e.client.BaseURL()
	opts.Choices = e.cfg.ChoicesFor
	opts.OutputDir = e.cfg.OutputDir
	opts.DataDir = e.cfg.DataDir
	opts.Hooks, opts.WorkDir, err = loadHooks()
	if err != nil {
		return err
	}
	if opts.StartDir == "" {
		opts.StartDir = opts.WorkDir
	}
	return tui.Run(ctx, opts)
}
