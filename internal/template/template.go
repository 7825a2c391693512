// Package template holds the read model of presentation templates: their
// placeholders, placeholder kinds and the values a user fills in.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is a backend template identifier. The service may send numbers or
// strings; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("template id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as text.
func (id ID) String() string { return string(id) }

// Placeholder is a named, typed slot in a template.
type Placeholder struct {
	Name    string   `json:"name" yaml:"name"`
	Kind    Kind     `json:"type" yaml:"type"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// UnmarshalJSON defaults a missing type to text.
func (p *Placeholder) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string   `json:"name"`
		Kind    string   `json:"type"`
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return err
	}
	p.Name = raw.Name
	p.Kind = kind
	p.Options = raw.Options
	return nil
}

// Label turns snake_case names into the spaced labels shown to users.
func (p Placeholder) Label() string {
	return strings.ReplaceAll(p.Name, "_", " ")
}

// Template is the client-side read model of a stored template.
type Template struct {
	ID           ID            `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Placeholders []Placeholder `json:"placeholders"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
	DeletedAt    *time.Time    `json:"deleted_at,omitempty"`
}

// Trashed reports whether the template is soft-deleted.
func (t *Template) Trashed() bool {
	return t.DeletedAt != nil
}

// Placeholder looks a placeholder up by name.
func (t *Template) Placeholder(name string) (Placeholder, bool) {
	for _, p := range t.Placeholders {
		if p.Name == name {
			return p, true
		}
	}
	return Placeholder{}, false
}

// EmptyValues returns a value map with each placeholder's empty default.
func (t *Template) EmptyValues() Values {
	vals := make(Values, len(t.Placeholders))
	for _, p := range t.Placeholders {
		vals[p.Name] = p.Kind.Empty()
	}
	return vals
}

// Validate checks that placeholder names are present and unique and that
// every kind is one of Kinds.
func (t *Template) Validate() error {
	seen := make(map[string]bool, len(t.Placeholders))
	for i, p := range t.Placeholders {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("placeholder %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate placeholder %q", p.Name)
		}
		if k, err := ParseKind(string(p.Kind)); err != nil || k != p.Kind {
			return fmt.Errorf("placeholder %q: unknown placeholder kind: %q", p.Name, p.Kind)
		}
		seen[p.Name] = true
	}
	return nil
}
