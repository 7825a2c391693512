package tui

import (
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

// Header renders the top bar with the app name, page and tab.
type Header struct {
	page  string
	tabID string
	api   string
}

// NewHeader creates a new Header component.
func NewHeader(tabID, api string) *Header {
	return &Header{tabID: tabID, api: api}
}

// SetPage updates the page label.
func (h *Header) SetPage(page string) {
	h.page = page
}

// View renders the header at the given width.
func (h *Header) View(width int) string {
	s := theme.Current().S()
	t := theme.Current()

	left := s.HeaderTitle.Render("deckfill")
	if h.page != "" {
		left += s.HeaderMeta.Render(" | " + h.page)
	}

	var right string
	if h.tabID != "" {
		right = s.HeaderMeta.Render("tab " + shortID(h.tabID))
	}
	if h.api != "" {
		if right != "" {
			right += s.HeaderMeta.Render(" · ")
		}
		right += s.HeaderMeta.Render(h.api)
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	bar := left + lipgloss.NewStyle().Width(padding).Render("") + right
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(lipgloss.Color(t.BgMantle)).
		Render(bar)
}

// Draw renders the header into area.
func (h *Header) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() < 1 {
		return
	}
	DrawText(scr, area, h.View(area.Dx()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
