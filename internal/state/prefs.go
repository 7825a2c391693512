// Package state persists small UI preferences across runs.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/deckfill/internal/logger"
	"gopkg.in/yaml.v3"
)

// FileName is the preferences file inside the data directory.
const FileName = "ui.yml"

// Prefs are the remembered UI choices.
type Prefs struct {
	// ShowDetails keeps the dashboard's detail pane open.
	ShowDetails bool `yaml:"show_details"`
}

// Defaults is what a first run starts with.
func Defaults() Prefs {
	return Prefs{ShowDetails: true}
}

// Load reads the preferences in dataDir. Unreadable or missing files give
// Defaults.
func Load(dataDir string) Prefs {
	p := Defaults()
	if dataDir == "" {
		return p
	}
	data, err := os.ReadFile(filepath.Join(dataDir, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return p
	case err != nil:
		logger.Warn("Reading UI preferences: %v", err)
		return p
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		logger.Warn("Ignoring malformed UI preferences: %v", err)
		return Defaults()
	}
	return p
}

// Save writes p into dataDir through a temporary file so a crash never
// leaves a partial file behind.
func Save(dataDir string, p Prefs) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding UI preferences: %w", err)
	}
	tmp, err := os.CreateTemp(dataDir, FileName+".*")
	if err != nil {
		return fmt.Errorf("saving UI preferences: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("saving UI preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving UI preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dataDir, FileName)); err != nil {
		return fmt.Errorf("saving UI preferences: %w", err)
	}
	return nil
}
