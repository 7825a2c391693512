package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/mcpserver"
	"github.com/mark3labs/deckfill/internal/mockapi"
	"github.com/spf13/cobra"
)

var mockServerFlags struct {
	addr string
	seed bool
}

var mcpFlags struct {
	addr   string
	output string
}

// demoDeck is the content of the template added by mock-server --seed.
const demoDeck = `{{title}}
{{subtitle}}
{{image:hero}}
{{list:highlights}}
{{choice:layout}}
`

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory template service for local development",
	Long: `Run an in-memory implementation of the template service API. Templates
and assets are lost when the server stops.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve template tools over MCP (streamable HTTP)",
	Long: `Serve the template tools to MCP clients over streamable HTTP at /mcp.
Tools: list-templates, show-template, generate-presentation, search-images,
upload-image. Generated presentations are written to the output directory.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mockServerCmd.Flags().StringVar(&mockServerFlags.addr, "addr", "127.0.0.1:5000", "Listen address")
	mockServerCmd.Flags().BoolVar(&mockServerFlags.seed, "seed", false, "Add a demo template on start")

	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "127.0.0.1:8765", "Listen address")
	mcpCmd.Flags().StringVarP(&mcpFlags.output, "output", "o", "", "Output directory (default: from config)")
}

const shutdownGrace = 5 * time.Second

// waitForSignal blocks until ctx ends or the process is interrupted.
func waitForSignal(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	srv := mockapi.New()
	if mockServerFlags.seed {
		tpl := srv.AddTemplate("Demo Deck", "A sample template with **every** placeholder kind.", []byte(demoDeck))
		logger.Info("Seeded template %s", tpl.ID)
	}
	if err := srv.Start(mockServerFlags.addr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mock template service listening on %s\n", srv.URL())

	waitForSignal(cmd.Context())
	return stopWithin(srv.Stop)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, client, err := setupClient()
	if err != nil {
		return err
	}

	out := mcpFlags.output
	if out == "" {
		out = cfg.OutputDir
	}
	hooksCfg, wd, err := loadHooks()
	if err != nil {
		return err
	}
	srv := mcpserver.New(client, mcpserver.Options{
		Addr:      mcpFlags.addr,
		Sessions:  kv.NewMemoryStore(),
		OutputDir: out,
		Hooks:     hooksCfg,
		WorkDir:   wd,
	})
	if _, err := srv.Start(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())

	waitForSignal(cmd.Context())
	return stopWithin(srv.Stop)
}

// stopWithin gives a server shutdownGrace to drain connections.
func stopWithin(stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return stop(ctx)
}
