// Package hooks runs user-configured shell commands after a presentation
// has been generated.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the working directory.
const ConfigFileName = ".deckfill.hooks.yml"

// DefaultTimeout applies to hooks without a timeout.
const DefaultTimeout = 30 * time.Second

// Config is the parsed hooks file:
//
//	version: 1
//	hooks:
//	  post_generate:
//	    - command: open {{file}}
//	      timeout: 10
//	      pipe_output: true
type Config struct {
	Version int `yaml:"version"`
	Hooks   Set `yaml:"hooks"`
}

// Set groups hooks by the event that triggers them.
type Set struct {
	PostGenerate []Hook `yaml:"post_generate"`
}

// Hook is one shell command. Timeout is in seconds.
type Hook struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"`
	Pipe    bool   `yaml:"pipe_output"`
}

func (h Hook) timeout() time.Duration {
	if h.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(h.Timeout) * time.Second
}

// LoadConfig reads ConfigFileName from workDir. A missing file yields a
// nil config and no error.
func LoadConfig(workDir string) (*Config, error) {
	path := filepath.Join(workDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	for i, h := range cfg.Hooks.PostGenerate {
		if strings.TrimSpace(h.Command) == "" {
			return nil, fmt.Errorf("%s: post_generate[%d] has no command", ConfigFileName, i)
		}
	}
	logger.Debug("Loaded %d post-generate hooks from %s", len(cfg.Hooks.PostGenerate), path)
	return &cfg, nil
}

// Variables describe the generated file. They expand as {{file}},
// {{template_id}} and {{template_name}} in commands and are exported as
// DECKFILL_FILE, DECKFILL_TEMPLATE_ID and DECKFILL_TEMPLATE_NAME.
type Variables struct {
	File         string
	TemplateID   string
	TemplateName string
}

func (v Variables) expand(command string) string {
	return template.Render(command, template.Values{
		"file":          template.Text(v.File),
		"template_id":   template.Text(v.TemplateID),
		"template_name": template.Text(v.TemplateName),
	})
}

func (v Variables) env() []string {
	return append(os.Environ(),
		"DECKFILL_FILE="+v.File,
		"DECKFILL_TEMPLATE_ID="+v.TemplateID,
		"DECKFILL_TEMPLATE_NAME="+v.TemplateName,
	)
}

// Run executes the hook with sh in dir. A failing or slow command is
// reported in the returned text; only cancellation of ctx is an error.
func (h Hook) Run(ctx context.Context, dir string, vars Variables) (string, error) {
	command := vars.expand(h.Command)
	if strings.TrimSpace(command) == "" {
		return "", nil
	}
	limit := h.timeout()
	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = vars.env()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	logger.Debug("Running hook: %s", command)
	err := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	out := stdout.String()
	if stderr.Len() > 0 {
		out += "\n[stderr]\n" + stderr.String()
	}
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		logger.Warn("Hook timed out after %s: %s", limit, command)
		return fmt.Sprintf("[hook timed out after %s]\n%s", limit, out), nil
	case err != nil:
		logger.Warn("Hook failed: %s: %v", command, err)
		return fmt.Sprintf("[hook failed: %v]\n%s", err, out), nil
	}
	return out, nil
}

// RunAll runs hooks in order and joins the output of those with Pipe set.
func RunAll(ctx context.Context, hooks []Hook, dir string, vars Variables) (string, error) {
	var piped []string
	for _, h := range hooks {
		out, err := h.Run(ctx, dir, vars)
		if err != nil {
			return "", err
		}
		if h.Pipe && out != "" {
			piped = append(piped, out)
		}
	}
	return strings.Join(piped, "\n"), nil
}

// PostGenerate runs the post_generate hooks. A nil config runs nothing.
func (c *Config) PostGenerate(ctx context.Context, dir string, vars Variables) (string, error) {
	if c == nil {
		return "", nil
	}
	return RunAll(ctx, c.Hooks.PostGenerate, dir, vars)
}
