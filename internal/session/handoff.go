package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/template"
)

// ErrNoHandoff is returned by TakeHandoff when nothing is pending.
var ErrNoHandoff = errors.New("no pending download")

// Handoff is the one-shot payload passed to the downloader.
type Handoff struct {
	TemplateID template.ID     `json:"templateId"`
	Values     template.Values `json:"data"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// PutHandoff stores h, replacing any earlier pending payload.
func PutHandoff(ctx context.Context, s kv.Store, h Handoff) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding handoff: %w", err)
	}
	if err := s.Set(ctx, handoffKey, data); err != nil {
		return fmt.Errorf("saving handoff: %w", err)
	}
	return nil
}

// TakeHandoff reads and deletes the pending payload. A second call
// returns ErrNoHandoff.
func TakeHandoff(ctx context.Context, s kv.Store) (*Handoff, error) {
	data, err := s.Get(ctx, handoffKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoHandoff
	}
	if err != nil {
		return nil, fmt.Errorf("reading handoff: %w", err)
	}
	if err := s.Delete(ctx, handoffKey); err != nil {
		return nil, fmt.Errorf("consuming handoff: %w", err)
	}

	var h Handoff
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decoding handoff: %w", err)
	}
	return &h, nil
}

// PeekHandoff returns the pending payload without consuming it, or nil.
func PeekHandoff(ctx context.Context, s kv.Store) (*Handoff, error) {
	data, err := s.Get(ctx, handoffKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading handoff: %w", err)
	}
	var h Handoff
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decoding handoff: %w", err)
	}
	return &h, nil
}

// DropHandoff discards any pending payload.
func DropHandoff(ctx context.Context, s kv.Store) error {
	if err := s.Delete(ctx, handoffKey); err != nil {
		return fmt.Errorf("dropping handoff: %w", err)
	}
	return nil
}
