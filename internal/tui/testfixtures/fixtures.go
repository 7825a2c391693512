// Package testfixtures provides shared helpers for TUI tests: a mock
// backend, sample decks and key press builders.
package testfixtures

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/mockapi"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// SampleDeck is presentation content with a text and a list placeholder.
const SampleDeck = "Title: {{title}}\nPoints: {{list:points}}"

// Backend is a mock template service behind an API client.
type Backend struct {
	Mock   *mockapi.Server
	Client *api.Client
	URL    string
}

// NewBackend starts a mock service for the duration of the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	mock := mockapi.New()
	mock.SetClock(func() time.Time { return FixedTime })
	ts := httptest.NewServer(mock.Handler())
	t.Cleanup(ts.Close)
	mock.SetBaseURL(ts.URL)

	client, err := api.New(ts.URL)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return &Backend{Mock: mock, Client: client, URL: ts.URL}
}

// WriteDeck writes a presentation file into dir and returns its path.
func WriteDeck(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
