package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

// Trash lists soft-deleted templates and restores them.
type Trash struct {
	ctx       context.Context
	svc       Service
	items     []template.Template
	selected  int
	loading   bool
	restoring bool
	err       string
	now       func() time.Time
	width     int
	height    int
}

// NewTrash creates an empty trash page.
func NewTrash(ctx context.Context, svc Service) *Trash {
	return &Trash{
		ctx:    ctx,
		svc:    svc,
		now:    time.Now,
		width:  80,
		height: 20,
	}
}

// SetSize updates the dimensions for the page.
func (t *Trash) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Items returns the trashed templates.
func (t *Trash) Items() []template.Template {
	return t.items
}

// Load fetches the trash list.
func (t *Trash) Load() tea.Cmd {
	t.loading = true
	ctx, svc := t.ctx, t.svc
	return func() tea.Msg {
		tpls, err := svc.ListTrash(ctx)
		return trashLoadedMsg{templates: tpls, err: err}
	}
}

// Update handles messages for the trash page.
func (t *Trash) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case trashLoadedMsg:
		t.loading = false
		if msg.err != nil {
			t.err = api.Message(msg.err)
			return nil
		}
		t.err = ""
		t.items = msg.templates
		t.clamp()
		return nil

	case restoredMsg:
		t.restoring = false
		switch {
		case api.IsGone(msg.err):
			t.remove(msg.tpl.ID)
			return notify(fmt.Sprintf("%q was permanently deleted", msg.tpl.Name))
		case msg.err != nil:
			logger.Warn("Restore %s failed: %v", msg.tpl.ID, msg.err)
			return notifyErr(msg.err)
		}
		t.remove(msg.tpl.ID)
		return notify(fmt.Sprintf("Restored %q", msg.tpl.Name))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if t.selected > 0 {
				t.selected--
			}
		case "down", "j":
			if t.selected < len(t.items)-1 {
				t.selected++
			}
		case "enter", "r":
			return t.restore()
		case "ctrl+r":
			return t.Load()
		case "esc", "b":
			return func() tea.Msg { return navigateMsg{to: "/"} }
		case "q":
			return func() tea.Msg { return quitRequestMsg{} }
		}
	}
	return nil
}

func (t *Trash) restore() tea.Cmd {
	if t.restoring || t.selected >= len(t.items) {
		return nil
	}
	tpl := t.items[t.selected]
	t.restoring = true
	ctx, svc := t.ctx, t.svc
	return func() tea.Msg {
		return restoredMsg{tpl: tpl, err: svc.RestoreTemplate(ctx, tpl.ID)}
	}
}

func (t *Trash) remove(id template.ID) {
	for i := range t.items {
		if t.items[i].ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			break
		}
	}
	t.clamp()
}

func (t *Trash) clamp() {
	if t.selected >= len(t.items) {
		t.selected = len(t.items) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
}

// daysLeft is how many days remain before a trashed template is purged.
func daysLeft(tpl template.Template, now time.Time) int {
	if tpl.DeletedAt == nil {
		return 0
	}
	left := tpl.DeletedAt.Add(api.TrashRetention).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// View renders the trash page.
func (t *Trash) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.HeaderTitle.Render(fmt.Sprintf("Trash (%d)", len(t.items))))
	b.WriteString("\n")
	b.WriteString(s.ListMeta.Render(fmt.Sprintf("Deleted templates can be restored for %d days.", int(api.TrashRetention.Hours()/24))))
	b.WriteString("\n\n")

	switch {
	case t.loading && len(t.items) == 0:
		b.WriteString(s.ListMeta.Render("Loading trash..."))
		b.WriteString("\n")
	case len(t.items) == 0 && t.err == "":
		b.WriteString(s.Empty.Render("Trash is empty."))
		b.WriteString("\n")
	}

	now := t.now()
	for i, tpl := range t.items {
		meta := fmt.Sprintf(" %d days left", daysLeft(tpl, now))
		if tpl.DeletedAt != nil {
			meta = " deleted " + tpl.DeletedAt.Format("2006-01-02") + " ·" + meta
		}
		if i == t.selected {
			b.WriteString(s.ListSelected.Render("▸ "+tpl.Name) + s.ListMeta.Render(meta))
		} else {
			b.WriteString("  " + s.ListItem.Render(tpl.Name) + s.ListMeta.Render(meta))
		}
		b.WriteString("\n")
	}

	if t.restoring {
		b.WriteString("\n")
		b.WriteString(s.ListMeta.Render("Restoring..."))
		b.WriteString("\n")
	}
	if t.err != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(t.err))
		b.WriteString("\n")
	}
	return b.String()
}
