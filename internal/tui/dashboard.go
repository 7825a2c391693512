package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/workflow"
	"github.com/sahilm/fuzzy"
)

// detailBreakpoint is the width at which the detail pane is shown.
const detailBreakpoint = 90

// Dashboard lists templates and starts the fill workflow.
type Dashboard struct {
	ctx       context.Context
	svc       Service
	templates []template.Template
	matches   []int
	selected  int
	filter    textinput.Model
	filtering bool
	rename    textinput.Model
	renaming  bool
	loading   bool
	err       string
	width     int
	height    int
	details   bool

	descKey  string
	descView string
}

// NewDashboard creates an empty dashboard.
func NewDashboard(ctx context.Context, svc Service) *Dashboard {
	return &Dashboard{
		ctx:     ctx,
		svc:     svc,
		filter:  theme.NewInput("filter templates", 40),
		rename:  theme.NewInput("template name", 40),
		width:   80,
		height:  20,
		details: true,
	}
}

// SetDetails shows or hides the detail pane.
func (d *Dashboard) SetDetails(visible bool) {
	d.details = visible
	d.SetSize(d.width, d.height)
}

// showsDetail reports whether the detail pane is drawn.
func (d *Dashboard) showsDetail() bool {
	return d.details && d.width >= detailBreakpoint
}

// SetSize updates the dimensions for the dashboard.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.filter.SetWidth(d.listWidth() - 4)
	d.rename.SetWidth(d.listWidth() - 10)
}

// Load fetches the template list.
func (d *Dashboard) Load() tea.Cmd {
	d.loading = true
	ctx, svc := d.ctx, d.svc
	return func() tea.Msg {
		tpls, err := svc.ListTemplates(ctx)
		return templatesLoadedMsg{templates: tpls, err: err}
	}
}

// Templates returns the loaded templates.
func (d *Dashboard) Templates() []template.Template {
	return d.templates
}

// Selected returns the highlighted template.
func (d *Dashboard) Selected() (template.Template, bool) {
	if d.selected < 0 || d.selected >= len(d.matches) {
		return template.Template{}, false
	}
	return d.templates[d.matches[d.selected]], true
}

// Filtering reports whether the filter input has focus.
func (d *Dashboard) Filtering() bool { return d.filtering }

// Renaming reports whether the rename input is open.
func (d *Dashboard) Renaming() bool { return d.renaming }

// Loading reports whether the list is being fetched.
func (d *Dashboard) Loading() bool { return d.loading }

// applyFilter recomputes the visible rows from the filter text.
func (d *Dashboard) applyFilter() {
	pattern := strings.TrimSpace(d.filter.Value())
	d.matches = d.matches[:0]
	if pattern == "" {
		for i := range d.templates {
			d.matches = append(d.matches, i)
		}
	} else {
		names := make([]string, len(d.templates))
		for i, t := range d.templates {
			names[i] = t.Name
		}
		for _, m := range fuzzy.Find(pattern, names) {
			d.matches = append(d.matches, m.Index)
		}
	}
	if d.selected >= len(d.matches) {
		d.selected = len(d.matches) - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

// Update handles messages for the dashboard.
func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case templatesLoadedMsg:
		d.loading = false
		if msg.err != nil {
			d.err = api.Message(msg.err)
			return nil
		}
		d.err = ""
		d.templates = msg.templates
		d.applyFilter()
		return nil

	case renamedMsg:
		if msg.err != nil {
			return notifyErr(msg.err)
		}
		for i := range d.templates {
			if d.templates[i].ID == msg.tpl.ID {
				d.templates[i] = msg.tpl
			}
		}
		d.applyFilter()
		return notify(fmt.Sprintf("Renamed to %q", msg.tpl.Name))

	case deletedMsg:
		if msg.err != nil {
			return notifyErr(msg.err)
		}
		d.remove(msg.tpl.ID)
		return notify(fmt.Sprintf("Moved %q to the trash", msg.tpl.Name))

	case tea.KeyPressMsg:
		switch {
		case d.renaming:
			return d.updateRename(msg)
		case d.filtering:
			return d.updateFilter(msg)
		}
		return d.handleKey(msg)
	}

	switch {
	case d.renaming:
		var cmd tea.Cmd
		d.rename, cmd = d.rename.Update(msg)
		return cmd
	case d.filtering:
		var cmd tea.Cmd
		d.filter, cmd = d.filter.Update(msg)
		return cmd
	}
	return nil
}

func (d *Dashboard) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if d.selected > 0 {
			d.selected--
		}
	case "down", "j":
		if d.selected < len(d.matches)-1 {
			d.selected++
		}
	case "enter":
		if tpl, ok := d.Selected(); ok {
			return func() tea.Msg { return useTemplateMsg{tpl: tpl} }
		}
	case "u":
		return func() tea.Msg { return uploadRequestMsg{} }
	case "p":
		d.SetDetails(!d.details)
		visible := d.details
		return func() tea.Msg { return detailsToggledMsg{visible: visible} }
	case "r":
		if tpl, ok := d.Selected(); ok {
			d.renaming = true
			d.rename.SetValue(tpl.Name)
			d.rename.CursorEnd()
			return d.rename.Focus()
		}
	case "d", "delete":
		if tpl, ok := d.Selected(); ok {
			return func() tea.Msg { return deleteRequestMsg{tpl: tpl} }
		}
	case "/":
		d.filtering = true
		return d.filter.Focus()
	case "esc":
		if d.filter.Value() != "" {
			d.filter.SetValue("")
			d.applyFilter()
		}
	case "t":
		return func() tea.Msg { return navigateMsg{to: "/trash"} }
	case "ctrl+r":
		return d.Load()
	case "q":
		return func() tea.Msg { return quitRequestMsg{} }
	}
	return nil
}

func (d *Dashboard) updateFilter(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		d.filtering = false
		d.filter.Blur()
		d.filter.SetValue("")
		d.applyFilter()
		return nil
	case "enter":
		d.filtering = false
		d.filter.Blur()
		return nil
	case "up", "down":
		return d.handleKey(msg)
	}
	var cmd tea.Cmd
	d.filter, cmd = d.filter.Update(msg)
	d.applyFilter()
	return cmd
}

func (d *Dashboard) updateRename(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		d.renaming = false
		d.rename.Blur()
		d.err = ""
		return nil
	case "enter":
		tpl, ok := d.Selected()
		if !ok {
			d.renaming = false
			return nil
		}
		name := strings.TrimSpace(d.rename.Value())
		if name == "" {
			d.err = workflow.ErrEmptyName.Error()
			return nil
		}
		d.renaming = false
		d.rename.Blur()
		d.err = ""
		if name == tpl.Name {
			return nil
		}
		ctx, svc := d.ctx, d.svc
		return func() tea.Msg {
			updated, err := svc.UpdateTemplate(ctx, tpl.ID, api.TemplateUpdate{Name: &name})
			return renamedMsg{tpl: updated, err: err}
		}
	}
	var cmd tea.Cmd
	d.rename, cmd = d.rename.Update(msg)
	return cmd
}

// Delete moves a template to the trash.
func (d *Dashboard) Delete(tpl template.Template) tea.Cmd {
	ctx, svc := d.ctx, d.svc
	return func() tea.Msg {
		return deletedMsg{tpl: tpl, err: svc.DeleteTemplate(ctx, tpl.ID)}
	}
}

func (d *Dashboard) remove(id template.ID) {
	for i := range d.templates {
		if d.templates[i].ID == id {
			d.templates = append(d.templates[:i], d.templates[i+1:]...)
			break
		}
	}
	d.applyFilter()
}

func (d *Dashboard) listWidth() int {
	if !d.showsDetail() {
		return d.width
	}
	return d.width * 2 / 5
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	list := d.listView(d.listWidth())
	if !d.showsDetail() {
		return list
	}
	detailWidth := d.width - d.listWidth() - 3
	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Current().BorderMuted)).
		Render(strings.Repeat("│\n", max(d.height-1, 1)) + "│")
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", sep, " ", d.detailView(detailWidth))
}

func (d *Dashboard) listView(width int) string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.HeaderTitle.Render(fmt.Sprintf("Templates (%d)", len(d.templates))))
	b.WriteString("\n")
	if d.filtering || d.filter.Value() != "" {
		b.WriteString(s.HintKey.Render("/ ") + d.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case d.loading && len(d.templates) == 0:
		b.WriteString(s.ListMeta.Render("Loading templates..."))
		b.WriteString("\n")
	case len(d.templates) == 0 && d.err == "":
		b.WriteString(s.Empty.Render("No templates yet. Press u to upload one."))
		b.WriteString("\n")
	case len(d.matches) == 0 && len(d.templates) > 0:
		b.WriteString(s.Empty.Render(fmt.Sprintf("No templates match %q", d.filter.Value())))
		b.WriteString("\n")
	}

	start, end := d.visibleRange()
	for i := start; i < end; i++ {
		tpl := d.templates[d.matches[i]]
		meta := s.ListMeta.Render(fmt.Sprintf(" %d placeholders", len(tpl.Placeholders)))
		name := truncate(tpl.Name, width-20)
		if i == d.selected {
			b.WriteString(s.ListSelected.Render("▸ "+name) + meta)
		} else {
			b.WriteString("  " + s.ListItem.Render(name) + meta)
		}
		b.WriteString("\n")
		if i == d.selected && d.renaming {
			b.WriteString("    " + s.HintKey.Render("Rename: ") + d.rename.View())
			b.WriteString("\n")
		}
	}

	if d.err != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(d.err))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (d *Dashboard) visibleRange() (int, int) {
	rows := d.height - 6
	if rows < 3 {
		rows = 3
	}
	if len(d.matches) <= rows {
		return 0, len(d.matches)
	}
	start := d.selected - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > len(d.matches) {
		start = len(d.matches) - rows
	}
	return start, start + rows
}

func (d *Dashboard) detailView(width int) string {
	s := theme.Current().S()
	tpl, ok := d.Selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.HeaderTitle.Render(tpl.Name))
	b.WriteString("\n")
	meta := "id " + tpl.ID.String()
	if tpl.CreatedAt != nil {
		meta += " · created " + tpl.CreatedAt.Format("2006-01-02")
	}
	b.WriteString(s.ListMeta.Render(meta))
	b.WriteString("\n\n")

	if len(tpl.Placeholders) == 0 {
		b.WriteString(s.Empty.Render("No placeholders"))
		b.WriteString("\n")
	}
	for _, ph := range tpl.Placeholders {
		line := s.ListItem.Render("{{"+ph.Name+"}}") + " " + s.ListMeta.Render(ph.Kind.Label())
		if len(ph.Options) > 0 {
			line += s.ListMeta.Render(" · " + strings.Join(ph.Options, ", "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if tpl.Description != "" {
		b.WriteString("\n")
		b.WriteString(d.description(tpl, width))
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

// description renders the markdown description, cached per template and width.
func (d *Dashboard) description(tpl template.Template, width int) string {
	key := fmt.Sprintf("%s/%d/%s", tpl.ID, width, tpl.Description)
	if key != d.descKey {
		d.descKey = key
		d.descView = renderMarkdown(tpl.Description, width)
	}
	return d.descView
}

func truncate(s string, width int) string {
	if width < 4 {
		width = 4
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
