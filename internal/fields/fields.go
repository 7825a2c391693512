// Package fields holds the per-kind value editors. Each editor keeps its
// own interaction state and emits the canonical value the service expects.
package fields

import (
	"slices"
	"strings"

	"github.com/mark3labs/deckfill/internal/template"
)

// OtherSentinel marks an "Other" choice that has no custom text yet.
const OtherSentinel = "Other"

// Editor is the common surface of every editor.
type Editor interface {
	Kind() template.Kind
	Value() template.Value
}

// For picks the editor for a placeholder, seeded with its current value.
// List placeholders without options use fallbackChoices when present.
// Image placeholders get a TextEditor holding the storage key; pickers
// are created separately because they need a service.
func For(p template.Placeholder, v template.Value, fallbackChoices []string) Editor {
	switch p.Kind {
	case template.KindText, template.KindImage:
		return NewTextEditor(p.Kind, v.String())
	case template.KindList:
		choices := p.Options
		if len(choices) == 0 {
			choices = fallbackChoices
		}
		if len(choices) > 0 {
			return NewChecklist(choices, v)
		}
		return NewMultiText(v)
	case template.KindChoice:
		return NewChoice(p.Options, v)
	default:
		panic("fields: unhandled kind " + string(p.Kind))
	}
}

// TextEditor edits a single string.
type TextEditor struct {
	kind template.Kind
	text string
}

// NewTextEditor creates a text editor for a single-string kind.
func NewTextEditor(kind template.Kind, text string) *TextEditor {
	return &TextEditor{kind: kind, text: text}
}

func (e *TextEditor) Kind() template.Kind { return e.kind }

// SetText replaces the text.
func (e *TextEditor) SetText(s string) template.Value {
	e.text = s
	return e.Value()
}

func (e *TextEditor) Text() string { return e.text }

func (e *TextEditor) Value() template.Value { return template.Text(e.text) }

// Checklist edits a list with predefined choices and one "Other" entry.
type Checklist struct {
	choices   []string
	selected  []string
	otherOn   bool
	otherText string
}

// NewChecklist decodes v against choices. Values that are not choices
// become the custom "Other" text; only the first one is kept.
func NewChecklist(choices []string, v template.Value) *Checklist {
	c := &Checklist{choices: slices.Clone(choices)}
	for _, item := range v.Items() {
		switch {
		case slices.Contains(c.choices, item):
			if !slices.Contains(c.selected, item) {
				c.selected = append(c.selected, item)
			}
		case item == OtherSentinel:
			c.otherOn = true
		case strings.TrimSpace(item) == "":
		default:
			if c.otherText == "" {
				c.otherOn = true
				c.otherText = item
			}
		}
	}
	return c
}

func (c *Checklist) Kind() template.Kind { return template.KindList }

// Choices returns the predefined choices.
func (c *Checklist) Choices() []string { return c.choices }

// Selected reports whether a predefined choice is checked.
func (c *Checklist) Selected(choice string) bool {
	return slices.Contains(c.selected, choice)
}

// Toggle checks or unchecks a predefined choice.
func (c *Checklist) Toggle(choice string) template.Value {
	if !slices.Contains(c.choices, choice) {
		return c.Value()
	}
	if i := slices.Index(c.selected, choice); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
	} else {
		c.selected = append(c.selected, choice)
	}
	return c.Value()
}

// ToggleOther checks or unchecks "Other". The typed text is kept so
// re-checking restores it.
func (c *Checklist) ToggleOther() template.Value {
	c.otherOn = !c.otherOn
	return c.Value()
}

// SetOtherText updates the custom text. It only affects the value while
// "Other" is checked.
func (c *Checklist) SetOtherText(s string) template.Value {
	c.otherText = s
	return c.Value()
}

func (c *Checklist) OtherOn() bool { return c.otherOn }

func (c *Checklist) OtherText() string { return c.otherText }

// Value encodes the selection: checked choices in selection order, then
// either the trimmed custom text or the sentinel. Custom text matching a
// checked choice is not repeated.
func (c *Checklist) Value() template.Value {
	items := slices.Clone(c.selected)
	if c.otherOn {
		switch text := strings.TrimSpace(c.otherText); {
		case text == "":
			items = append(items, OtherSentinel)
		case !slices.Contains(items, text):
			items = append(items, text)
		}
	}
	return template.List(items...)
}

// Choice edits a single choice with an "Other" free-text option.
type Choice struct {
	options   []string
	value     string
	otherOn   bool
	otherText string
}

// NewChoice decodes v against options. A non-empty value that is not an
// option is custom text.
func NewChoice(options []string, v template.Value) *Choice {
	c := &Choice{options: slices.Clone(options)}
	s := v.String()
	switch {
	case s == "":
	case slices.Contains(c.options, s):
		c.value = s
	default:
		c.otherOn = true
		c.otherText = s
		c.value = strings.TrimSpace(s)
	}
	return c
}

func (c *Choice) Kind() template.Kind { return template.KindChoice }

// Options returns the predefined options.
func (c *Choice) Options() []string { return c.options }

// Select picks a predefined option.
func (c *Choice) Select(option string) template.Value {
	if !slices.Contains(c.options, option) {
		return c.Value()
	}
	c.otherOn = false
	c.otherText = ""
	c.value = option
	return c.Value()
}

// SelectOther switches to the custom text, which may be empty.
func (c *Choice) SelectOther() template.Value {
	c.otherOn = true
	c.value = strings.TrimSpace(c.otherText)
	return c.Value()
}

// SetOtherText types custom text and selects "Other".
func (c *Choice) SetOtherText(s string) template.Value {
	c.otherText = s
	return c.SelectOther()
}

// IsSelected reports whether a predefined option is the current value.
func (c *Choice) IsSelected(option string) bool {
	return !c.otherOn && c.value == option
}

func (c *Choice) OtherOn() bool { return c.otherOn }

func (c *Choice) OtherText() string { return c.otherText }

func (c *Choice) Value() template.Value { return template.Text(c.value) }

// MultiText edits a free list. It always has at least one row.
type MultiText struct {
	rows []string
}

// NewMultiText seeds the rows from v, or a single empty row.
func NewMultiText(v template.Value) *MultiText {
	rows := v.Items()
	if len(rows) == 0 {
		rows = []string{""}
	}
	return &MultiText{rows: rows}
}

func (m *MultiText) Kind() template.Kind { return template.KindList }

// Rows returns a copy of the rows.
func (m *MultiText) Rows() []string { return slices.Clone(m.rows) }

// SetRow replaces row i. Out-of-range indexes are ignored.
func (m *MultiText) SetRow(i int, s string) template.Value {
	if i >= 0 && i < len(m.rows) {
		m.rows[i] = s
	}
	return m.Value()
}

// CanAdd reports whether a new row may be appended.
func (m *MultiText) CanAdd() bool {
	return strings.TrimSpace(m.rows[len(m.rows)-1]) != ""
}

// Add appends an empty row unless the last row is blank.
func (m *MultiText) Add() (template.Value, bool) {
	if !m.CanAdd() {
		return m.Value(), false
	}
	m.rows = append(m.rows, "")
	return m.Value(), true
}

// Remove deletes row i. Removing the only row leaves one empty row.
func (m *MultiText) Remove(i int) template.Value {
	if i < 0 || i >= len(m.rows) {
		return m.Value()
	}
	m.rows = slices.Delete(m.rows, i, i+1)
	if len(m.rows) == 0 {
		m.rows = []string{""}
	}
	return m.Value()
}

// Value returns the rows as-is, blanks included.
func (m *MultiText) Value() template.Value { return template.List(m.rows...) }
