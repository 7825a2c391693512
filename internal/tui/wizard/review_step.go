package wizard

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/deckfill/internal/fields"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/workflow"
)

// generateMsg asks the wizard to generate the presentation.
type generateMsg struct{}

// preview is a viewable URL resolved for one image key.
type preview struct {
	key string
	url string
}

// previewsMsg carries resolved image previews by placeholder name.
type previewsMsg map[string]preview

// ReviewStep lists every entry and edits one at a time.
type ReviewStep struct {
	ctx        context.Context
	ctrl       *workflow.Controller
	svc        fields.AssetService
	choices    func(string) []string
	selected   int
	editing    *fieldRow
	previews   map[string]preview
	generating bool
	err        string
	width      int
	height     int
}

// NewReviewStep creates the review step.
func NewReviewStep(ctx context.Context, ctrl *workflow.Controller, svc fields.AssetService, choices func(string) []string) *ReviewStep {
	return &ReviewStep{
		ctx:     ctx,
		ctrl:    ctrl,
		svc:     svc,
		choices:  choices,
		previews: map[string]preview{},
		width:    60,
		height:   10,
	}
}

// SetSize updates the dimensions for the step.
func (r *ReviewStep) SetSize(width, height int) {
	r.width = width
	r.height = height
}

// SetGenerating marks a generate call in flight.
func (r *ReviewStep) SetGenerating(on bool) {
	r.generating = on
}

// Editing reports whether a row is open.
func (r *ReviewStep) Editing() bool {
	return r.editing != nil
}

// Capturing reports whether esc belongs to the open row.
func (r *ReviewStep) Capturing() bool {
	return r.editing != nil
}

func (r *ReviewStep) placeholders() []template.Placeholder {
	return r.ctrl.Template().Placeholders
}

// Init resolves previews for every image entry.
func (r *ReviewStep) Init() tea.Cmd {
	return r.resolvePreviews(func(string) bool { return true })
}

// resolvePreviews looks up viewable URLs for the image entries want keeps.
func (r *ReviewStep) resolvePreviews(want func(name string) bool) tea.Cmd {
	if r.svc == nil {
		return nil
	}
	keys := map[string]string{}
	for _, ph := range r.placeholders() {
		if ph.Kind != template.KindImage || !want(ph.Name) {
			continue
		}
		if v, ok := r.ctrl.Store().Value(ph.Name); ok && v.String() != "" {
			keys[ph.Name] = v.String()
		}
	}
	if len(keys) == 0 {
		return nil
	}
	ctx, svc := r.ctx, r.svc
	return func() tea.Msg {
		out := previewsMsg{}
		for name, key := range keys {
			u, err := fields.ViewURL(ctx, svc, key)
			if err != nil {
				logger.Debug("No preview for %s: %v", key, err)
				continue
			}
			out[name] = preview{key: key, url: u}
		}
		return out
	}
}

// Update handles messages for the review step.
func (r *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	if resolved, ok := msg.(previewsMsg); ok {
		for name, p := range resolved {
			r.previews[name] = p
		}
		return nil
	}
	if r.editing != nil {
		return r.updateEditing(msg)
	}

	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || r.generating {
		return nil
	}

	phs := r.placeholders()
	switch keyMsg.String() {
	case "up", "k":
		if r.selected > 0 {
			r.selected--
		}
	case "down", "j":
		if r.selected < len(phs)-1 {
			r.selected++
		}
	case "enter", "e":
		if r.selected < len(phs) {
			return r.startEdit(phs[r.selected])
		}
	case "g", "ctrl+s":
		return func() tea.Msg { return generateMsg{} }
	}
	return nil
}

func (r *ReviewStep) startEdit(ph template.Placeholder) tea.Cmd {
	if err := r.ctrl.StartEdit(ph.Name); err != nil {
		r.err = err.Error()
		return nil
	}
	draft, _ := r.ctrl.Cursor().Draft()
	var fallback []string
	if r.choices != nil {
		fallback = r.choices(ph.Name)
	}
	r.editing = newFieldRow(r.ctx, ph, draft, r.svc, fallback, r.ctrl.SetDraft)
	r.err = ""
	return r.editing.Focus()
}

func (r *ReviewStep) updateEditing(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok && !r.editing.Capturing() {
		switch keyMsg.String() {
		case "ctrl+s":
			name, _ := r.ctrl.Cursor().Active()
			if err := r.ctrl.CommitEdit(r.ctx); err != nil {
				r.err = err.Error()
				return nil
			}
			r.editing = nil
			r.err = ""
			return r.resolvePreviews(func(n string) bool { return n == name })
		case "esc":
			r.ctrl.CancelEdit()
			r.editing = nil
			r.err = ""
			return nil
		}
	}
	return r.editing.Update(msg)
}

// View renders the review step.
func (r *ReviewStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.HeaderTitle.Render(r.ctrl.Template().Name))
	b.WriteString("\n\n")

	active, _ := r.ctrl.Cursor().Active()
	for i, ph := range r.placeholders() {
		if r.editing != nil && ph.Name == active {
			b.WriteString(r.editing.View(true))
			if diff := r.ctrl.Cursor().Diff(); diff != "" {
				b.WriteString(renderDiff(diff))
			}
			continue
		}

		v, _ := r.ctrl.Store().Value(ph.Name)
		line := ph.Label() + ": " + v.String()
		if p, ok := r.previews[ph.Name]; ok && p.key == v.String() && p.url != p.key {
			line += "  preview " + p.url
		}
		if r.editing == nil && i == r.selected {
			b.WriteString(selectedLine(line))
		} else {
			b.WriteString("  " + s.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	if r.err != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(r.err))
		b.WriteString("\n")
	}
	if err := r.ctrl.LastError(); err != nil {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(err.Error()))
		b.WriteString("\n")
	}
	if r.generating {
		b.WriteString("\n")
		b.WriteString(s.ListMeta.Render("Generating presentation..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderButtons(r.width, stepButtons("← Back", !r.generating, "Generate", r.editing == nil && !r.generating)...))
	b.WriteString("\n\n")
	switch {
	case r.editing != nil:
		b.WriteString(renderHintBar("ctrl+s", "save entry", "esc", "cancel"))
	case r.generating:
	default:
		b.WriteString(renderHintBar("↑↓", "navigate", "enter", "edit", "g", "generate", "esc", "back"))
	}
	return b.String()
}

// renderDiff colors a unified diff of the draft against the saved value.
func renderDiff(diff string) string {
	s := theme.Current().S()
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			b.WriteString("    " + s.DiffContext.Render(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString("    " + s.DiffInsert.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString("    " + s.DiffDelete.Render(line))
		default:
			b.WriteString("    " + s.DiffContext.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
