package wizard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/deckfill/internal/fields"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/workflow"
)

// continueMsg asks the wizard to move on to review.
type continueMsg struct{}

// FillStep collects a value for every placeholder.
type FillStep struct {
	ctrl     *workflow.Controller
	rows     []*fieldRow
	focused  int
	restored bool
	width    int
	height   int
}

// NewFillStep builds one editor row per placeholder, seeded from the
// form state store.
func NewFillStep(ctx context.Context, ctrl *workflow.Controller, svc fields.AssetService, choices func(string) []string) *FillStep {
	f := &FillStep{
		ctrl:     ctrl,
		restored: ctrl.Store().Restored(),
		width:    60,
		height:   10,
	}
	for _, ph := range ctrl.Template().Placeholders {
		v, _ := ctrl.Store().Value(ph.Name)
		var fallback []string
		if choices != nil {
			fallback = choices(ph.Name)
		}
		name := ph.Name
		f.rows = append(f.rows, newFieldRow(ctx, ph, v, svc, fallback, func(v template.Value) error {
			return ctrl.SetValue(ctx, name, v)
		}))
	}
	return f
}

// Init focuses the first row.
func (f *FillStep) Init() tea.Cmd {
	return f.focus(0)
}

// SetSize updates the dimensions for the step.
func (f *FillStep) SetSize(width, height int) {
	f.width = width
	f.height = height
	for _, r := range f.rows {
		r.input.SetWidth(width - 8)
	}
}

func (f *FillStep) focus(i int) tea.Cmd {
	if len(f.rows) == 0 {
		return nil
	}
	if f.focused < len(f.rows) {
		f.rows[f.focused].Blur()
	}
	f.focused = (i + len(f.rows)) % len(f.rows)
	return f.rows[f.focused].Focus()
}

// Capturing reports whether the focused row owns esc.
func (f *FillStep) Capturing() bool {
	return len(f.rows) > 0 && f.rows[f.focused].Capturing()
}

// Update handles messages for the fill step.
func (f *FillStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case imageDoneMsg, editorDoneMsg:
		var cmds []tea.Cmd
		for _, r := range f.rows {
			cmds = append(cmds, r.Update(msg))
		}
		return tea.Batch(cmds...)
	case tea.KeyPressMsg:
		if !f.Capturing() {
			switch msg.String() {
			case "up", "shift+tab":
				return f.focus(f.focused - 1)
			case "down", "tab":
				return f.focus(f.focused + 1)
			case "ctrl+s":
				return func() tea.Msg { return continueMsg{} }
			}
		}
	}

	if len(f.rows) == 0 {
		return nil
	}
	return f.rows[f.focused].Update(msg)
}

// visibleRange returns the rows that fit, keeping the focused row in view.
func (f *FillStep) visibleRange() (int, int) {
	per := 3
	rows := (f.height - 6) / per
	if rows < 2 {
		rows = 2
	}
	if len(f.rows) <= rows {
		return 0, len(f.rows)
	}
	start := f.focused - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > len(f.rows) {
		start = len(f.rows) - rows
	}
	return start, start + rows
}

// View renders the fill step.
func (f *FillStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	tpl := f.ctrl.Template()
	b.WriteString(s.HeaderTitle.Render(tpl.Name))
	missing := len(f.ctrl.Store().Missing())
	b.WriteString("  " + s.ListMeta.Render(fmt.Sprintf("%d of %d filled", len(f.rows)-missing, len(f.rows))))
	b.WriteString("\n")
	if f.restored {
		b.WriteString(s.Success.Render("Restored your saved entries for this template."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	start, end := f.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(f.rows[i].View(i == f.focused))
	}

	if err := f.ctrl.LastError(); err != nil {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderButtons(f.width, stepButtons("← Back", f.ctrl.FromUpload(), "Review →", missing == 0)...))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar(f.hints()...))
	return b.String()
}

func (f *FillStep) hints() []string {
	base := []string{"↑↓", "field"}
	if len(f.rows) > 0 {
		r := f.rows[f.focused]
		switch r.editor.(type) {
		case *fields.TextEditor:
			base = append(base, "ctrl+e", "editor")
		case *fields.Choice, *fields.Checklist:
			base = append(base, "←→", "option", "space", "select")
		case *fields.MultiText:
			base = append(base, "ctrl+n", "add item", "ctrl+d", "remove")
		}
	}
	back := "back"
	if !f.ctrl.FromUpload() {
		back = "exit"
	}
	return append(base, "ctrl+s", "review", "esc", back)
}
