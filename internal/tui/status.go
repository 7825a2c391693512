package tui

import (
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

// StatusBar renders the bottom hint line.
type StatusBar struct {
	hints string
	busy  string
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetHints replaces the hint text.
func (s *StatusBar) SetHints(hints string) {
	s.hints = hints
}

// SetBusy shows an activity label on the right; "" clears it.
func (s *StatusBar) SetBusy(label string) {
	s.busy = label
}

// View renders the status bar at the given width.
func (s *StatusBar) View(width int) string {
	t := theme.Current()
	right := ""
	if s.busy != "" {
		right = t.S().ListMeta.Render(s.busy)
	}
	padding := width - lipgloss.Width(s.hints) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	bar := s.hints + lipgloss.NewStyle().Width(padding).Render("") + right
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(lipgloss.Color(t.BgMantle)).
		Render(bar)
}

// Draw renders the status bar into area.
func (s *StatusBar) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() < 1 {
		return
	}
	DrawText(scr, area, s.View(area.Dx()))
}
