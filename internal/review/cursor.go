// Package review tracks which placeholder row is being edited on the
// review screen. Only one row may be edited at a time.
package review

import (
	"errors"
	"strings"
	"sync"

	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/deckfill/internal/template"
)

var (
	// ErrAnotherActive is returned by Start while a different row is open.
	ErrAnotherActive = errors.New("another entry is being edited")
	// ErrNotActive is returned when there is no row being edited.
	ErrNotActive = errors.New("no entry is being edited")
)

// Cursor is the single active edit on the review screen.
type Cursor struct {
	mu        sync.Mutex
	name      string
	committed template.Value
	draft     template.Value
}

// Start opens name for editing with its committed value as the draft.
// Restarting the already active row is a no-op.
func (c *Cursor) Start(name string, committed template.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name != "" {
		if c.name == name {
			return nil
		}
		return ErrAnotherActive
	}
	c.name = name
	c.committed = committed
	c.draft = committed
	return nil
}

// SetDraft replaces the draft of the active row.
func (c *Cursor) SetDraft(v template.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name == "" {
		return ErrNotActive
	}
	c.draft = v
	return nil
}

// Draft returns the current draft of the active row.
func (c *Cursor) Draft() (template.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft, c.name != ""
}

// Cancel closes the active row and discards the draft.
func (c *Cursor) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Commit closes the active row and returns its name and draft for the
// caller to write through.
func (c *Cursor) Commit() (string, template.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name == "" {
		return "", template.Value{}, ErrNotActive
	}
	name, draft := c.name, c.draft
	c.reset()
	return name, draft, nil
}

// CanEdit reports whether name may be opened now.
func (c *Cursor) CanEdit(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name == "" || c.name == name
}

// Active returns the row being edited, if any.
func (c *Cursor) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name, c.name != ""
}

// Diff renders a unified diff between the committed value and the draft.
// It is empty when nothing changed or nothing is active.
func (c *Cursor) Diff() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name == "" || c.committed.Equal(c.draft) {
		return ""
	}
	return udiff.Unified(c.name+" (saved)", c.name+" (draft)", lines(c.committed), lines(c.draft))
}

func (c *Cursor) reset() {
	c.name = ""
	c.committed = template.Value{}
	c.draft = template.Value{}
}

// lines renders a value one item per line for diffing.
func lines(v template.Value) string {
	if !v.IsList() {
		return v.String() + "\n"
	}
	items := v.Items()
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
