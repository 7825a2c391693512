package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/config"
	"github.com/mark3labs/deckfill/internal/hooks"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/nats"
	"github.com/mark3labs/deckfill/internal/template"
)

var globalFlags struct {
	tab     string
	api     string
	dataDir string
}

// defaultTab scopes entries when neither --tab nor DECKFILL_TAB is set.
const defaultTab = "default"

// env is what every command that talks to the service needs.
type env struct {
	cfg    *config.Config
	client *api.Client
	tabID  string
	tab    kv.Store
	close  func()
}

// loadConfig reads the config, applies the global flags and configures
// logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if globalFlags.api != "" {
		cfg.APIBaseURL = globalFlags.api
	}
	if globalFlags.dataDir != "" {
		cfg.DataDir = globalFlags.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// newClient builds the service client from config.
func newClient(cfg *config.Config) (*api.Client, error) {
	var opts []api.Option
	if cfg.RequestTimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.RequestTimeout))
	}
	return api.New(cfg.APIBaseURL, opts...)
}

// resolveTab picks the session scope from --tab, then DECKFILL_TAB.
func resolveTab() (string, error) {
	tab := strings.TrimSpace(globalFlags.tab)
	if tab == "" {
		tab = strings.TrimSpace(os.Getenv("DECKFILL_TAB"))
	}
	switch tab {
	case "":
		return defaultTab, nil
	case "new":
		return uuid.NewString(), nil
	}
	if err := kv.ValidScope(tab); err != nil {
		return "", fmt.Errorf("invalid tab: %w", err)
	}
	return tab, nil
}

// openSessions opens the configured session backend.
func openSessions(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	if cfg.SessionBackend == config.BackendMemory {
		logger.Debug("Using in-memory session storage")
		return kv.NewMemoryStore(), func() {}, nil
	}

	rt, err := nats.Open(ctx, filepath.Join(cfg.DataDir, "nats"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	closeFn := func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Error closing session storage: %v", err)
		}
	}
	return rt.Store, closeFn, nil
}

// setup loads config, the client and the tab's session storage.
func setup(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	tabID, err := resolveTab()
	if err != nil {
		return nil, err
	}
	sessions, closeFn, err := openSessions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using tab %s against %s", tabID, client.BaseURL())
	return &env{
		cfg:    cfg,
		client: client,
		tabID:  tabID,
		tab:    kv.Scoped(sessions, tabID),
		close:  closeFn,
	}, nil
}

// setupClient is setup for commands that never touch session storage.
func setupClient() (*config.Config, *api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// loadHooks reads the hooks config from the working directory.
func loadHooks() (*hooks.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	cfg, err := hooks.LoadConfig(wd)
	if err != nil {
		return nil, "", err
	}
	return cfg, wd, nil
}

// runPostGenerate runs the post-generate hooks for a saved file and
// returns their piped output.
func runPostGenerate(ctx context.Context, path string, tpl template.Template) (string, error) {
	cfg, wd, err := loadHooks()
	if err != nil {
		return "", err
	}
	return cfg.PostGenerate(ctx, wd, hooks.Variables{
		File:         path,
		TemplateID:   string(tpl.ID),
		TemplateName: tpl.Name,
	})
}
