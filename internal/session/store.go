// Package session keeps the in-progress fill workflow for one tab and
// mirrors it into a key-value store so the tab can be re-entered.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
)

// Keys under the tab scope.
const (
	workflowKey = "workflow"
	handoffKey  = "handoff"
)

var (
	// ErrNotInitialized is returned by mutators before Initialize.
	ErrNotInitialized = errors.New("session not initialized")
	// ErrUnknownPlaceholder is returned when a name is not on the template.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	// ErrKindMismatch is returned when a value's shape does not fit the kind.
	ErrKindMismatch = errors.New("value does not match placeholder kind")
)

// Session is the persisted workflow entry.
type Session struct {
	TemplateID template.ID       `json:"templateId"`
	Template   template.Template `json:"template"`
	Values     template.Values   `json:"values"`
	Dirty      bool              `json:"dirty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Store is the form state store. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	tpl      *template.Template
	values   template.Values
	dirty    bool
	restored bool
}

// NewStore creates a store persisting into s, which is normally already
// scoped to a tab.
func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

// Initialize binds the store to tpl. A persisted session for the same
// template is restored; one for another template is discarded.
func (s *Store) Initialize(ctx context.Context, tpl template.Template) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("initializing session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.tpl = &tpl
	s.dirty = false
	s.restored = false
	s.values = tpl.EmptyValues()

	if prev == nil {
		return nil
	}
	if prev.TemplateID != tpl.ID {
		logger.Debug("Discarding session for template %s (opening %s)", prev.TemplateID, tpl.ID)
		if err := s.kv.Delete(ctx, workflowKey); err != nil {
			return fmt.Errorf("discarding stale session: %w", err)
		}
		return nil
	}

	for _, p := range tpl.Placeholders {
		if v, ok := prev.Values[p.Name]; ok && p.Kind.Accepts(v) {
			s.values[p.Name] = v
		}
	}
	s.restored = true
	logger.Debug("Restored session for template %s", tpl.ID)
	return nil
}

// SetValue replaces one value, marks the session dirty and persists it.
func (s *Store) SetValue(ctx context.Context, name string, v template.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tpl == nil {
		return ErrNotInitialized
	}
	p, ok := s.tpl.Placeholder(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlaceholder, name)
	}
	if !p.Kind.Accepts(v) {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, name, p.Kind)
	}

	s.values[name] = v
	s.dirty = true
	return s.persist(ctx)
}

// Value returns the current value for name.
func (s *Store) Value(name string) (template.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Values returns a copy of all current values.
func (s *Store) Values() template.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// Template returns the bound template.
func (s *Store) Template() (template.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tpl == nil {
		return template.Template{}, false
	}
	return *s.tpl, true
}

// IsComplete reports whether every placeholder is filled.
func (s *Store) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tpl != nil && len(s.missing()) == 0
}

// Missing lists unfilled placeholder names in template order.
func (s *Store) Missing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missing()
}

func (s *Store) missing() []string {
	if s.tpl == nil {
		return nil
	}
	var out []string
	for _, p := range s.tpl.Placeholders {
		if !p.Kind.Filled(s.values[p.Name]) {
			out = append(out, p.Name)
		}
	}
	return out
}

// Dirty reports whether there are changes since Initialize.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Restored reports whether Initialize picked up a persisted session.
func (s *Store) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// Clear deletes the persisted entry and forgets the bound template.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tpl = nil
	s.values = nil
	s.dirty = false
	s.restored = false
	if err := s.kv.Delete(ctx, workflowKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Lookup returns the persisted session without binding to it, or nil.
func (s *Store) Lookup(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load reads the persisted entry. Absent and corrupt entries both come
// back as nil; corrupt ones are deleted.
func (s *Store) load(ctx context.Context) (*Session, error) {
	data, err := s.kv.Get(ctx, workflowKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.TemplateID == "" {
		logger.Warn("Discarding corrupt session entry: %v", err)
		if err := s.kv.Delete(ctx, workflowKey); err != nil {
			logger.Warn("Failed to delete corrupt session entry: %v", err)
		}
		return nil, nil
	}
	return &sess, nil
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(Session{
		TemplateID: s.tpl.ID,
		Template:   *s.tpl,
		Values:     s.values,
		Dirty:      s.dirty,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.kv.Set(ctx, workflowKey, data); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
