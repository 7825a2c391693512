// Package config loads deckfill settings from files, the environment and
// flags through viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Session storage backends.
const (
	BackendNATS   = "nats"
	BackendMemory = "memory"
)

// DefaultAPIBaseURL is the backend address used when nothing else is set.
const DefaultAPIBaseURL = "http://127.0.0.1:5000"

// EnvPrefix prefixes every environment override, e.g. DECKFILL_DATA_DIR.
const EnvPrefix = "DECKFILL"

const fileName = "deckfill.yml"

type Config struct {
	APIBaseURL     string              `mapstructure:"api_base_url" yaml:"api_base_url"`
	DataDir        string              `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir      string              `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel       string              `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string              `mapstructure:"log_file" yaml:"log_file,omitempty"`
	SessionBackend string              `mapstructure:"session_backend" yaml:"session_backend"`
	RequestTimeout time.Duration       `mapstructure:"request_timeout" yaml:"request_timeout,omitempty"`
	ListChoices    map[string][]string `mapstructure:"list_choices" yaml:"list_choices,omitempty"`
}

// Default is the configuration used when no file or variable says otherwise.
func Default() Config {
	return Config{
		APIBaseURL:     DefaultAPIBaseURL,
		DataDir:        ".deckfill",
		OutputDir:      ".",
		LogLevel:       "info",
		SessionBackend: BackendNATS,
	}
}

// envKeys are the settings that can be overridden from the environment.
var envKeys = []string{
	"api_base_url", "data_dir", "output_dir", "log_level",
	"log_file", "session_backend", "request_timeout",
}

// EnvVar names the environment variable for a setting key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// Load merges, from lowest to highest precedence: defaults, the global
// file, the project file, then the environment (a .env file included).
// Flags are applied by the caller.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	d := Default()
	v.SetDefault("api_base_url", d.APIBaseURL)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("session_backend", d.SessionBackend)
	v.SetDefault("request_timeout", time.Duration(0))
	v.SetDefault("list_choices", map[string][]string{})

	for _, key := range envKeys {
		if err := v.BindEnv(key, EnvVar(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", EnvVar(key), err)
		}
	}

	read := v.ReadInConfig
	for _, scope := range []Scope{Global, Project} {
		path := Path(scope)
		if !fileExists(path) {
			continue
		}
		v.SetConfigFile(path)
		if err := read(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		read = v.MergeInConfig
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first setting that would fail later in a less
// obvious way.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.SessionBackend != BackendNATS && c.SessionBackend != BackendMemory {
		return fmt.Errorf("session_backend must be %q or %q, got %q", BackendNATS, BackendMemory, c.SessionBackend)
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	if c.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}
	return nil
}

// ChoicesFor returns the configured choices for a list placeholder.
func (c *Config) ChoicesFor(name string) []string {
	if c == nil {
		return nil
	}
	return c.ListChoices[name]
}

// Scope selects where a config file lives.
type Scope int

const (
	// Global is $XDG_CONFIG_HOME/deckfill/deckfill.yml, falling back to
	// ~/.config.
	Global Scope = iota
	// Project is deckfill.yml in the working directory.
	Project
)

// Path is the config file location for scope.
func Path(scope Scope) string {
	if scope == Project {
		return fileName
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "deckfill", fileName)
}

// Exists reports whether either config file is present.
func Exists() bool {
	return fileExists(Path(Global)) || fileExists(Path(Project))
}

// Write stores cfg at Path(scope), creating parent directories.
func Write(scope Scope, cfg *Config) error {
	path := Path(scope)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
