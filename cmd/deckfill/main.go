package main

import (
	"context"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▄ █▀▀ █▀▀ █▄▀ █▀▀ █ █  █"
	logoText2 = "█▄▀ ██▄ █▄▄ █ █ █▀  █ █▄ █▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deckfill",
	Short: "Fill presentation templates from the terminal",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

// renderLogo colors each logo column along the theme gradient.
func renderLogo() string {
	t := theme.Current()
	lines := []string{logoText1, logoText2}
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	colors := theme.Gradient(t.Primary, t.Secondary, width)

	out := make([]string, len(lines))
	for i, l := range lines {
		var b strings.Builder
		for j, r := range []rune(l) {
			b.WriteString(lipgloss.NewStyle().Foreground(colors[j]).Render(string(r)))
		}
		out[i] = b.String()
	}
	return strings.Join(out, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

deckfill turns presentation templates with {{placeholders}} into finished
decks. Upload a template, review the placeholders it found, fill in text,
lists, choices and images, then generate and download the presentation.

Entries are kept per tab in an embedded NATS key-value bucket, so an
interrupted fill can be resumed later with the same --tab.`

	rootCmd.PersistentFlags().StringVar(&globalFlags.tab, "tab", "", `Session scope; "new" starts a fresh one (default: DECKFILL_TAB or "default")`)
	rootCmd.PersistentFlags().StringVar(&globalFlags.api, "api", "", "Template service base URL (default: from config)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.dataDir, "data-dir", "", "Data directory for session storage (default: from config)")

	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(setupCmd)
}
