package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/deckfill/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
	backend string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a starter configuration file",
	Long: `Write a deckfill.yml with default settings.

The file goes to $XDG_CONFIG_HOME/deckfill (usually ~/.config/deckfill)
unless --project is given, in which case it is written to the current
directory. The global --api and --data-dir flags are recorded too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		scope := config.Global
		if setupFlags.project {
			scope = config.Project
		}
		path := config.Path(scope)
		if _, err := os.Stat(path); err == nil && !setupFlags.force {
			return fmt.Errorf("%s already exists (use --force to replace it)", path)
		}

		cfg := config.Default()
		cfg.SessionBackend = setupFlags.backend
		if globalFlags.api != "" {
			cfg.APIBaseURL = globalFlags.api
		}
		if globalFlags.dataDir != "" {
			cfg.DataDir = globalFlags.dataDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Write(scope, &cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config written to: %s\n\n", path)
		fmt.Fprintln(out, "Run 'deckfill' to get started.")
		return nil
	},
}

func init() {
	f := setupCmd.Flags()
	f.BoolVarP(&setupFlags.project, "project", "p", false, "write ./deckfill.yml instead of the global file")
	f.BoolVarP(&setupFlags.force, "force", "f", false, "replace an existing file")
	f.StringVar(&setupFlags.backend, "backend", config.BackendNATS, `session storage: "nats" or "memory"`)
}
