package wizard

import (
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

func renderHintBar(pairs ...string) string { return theme.Hints(pairs...) }

func selectedLine(s string) string {
	return theme.Current().S().ListSelected.Render("▸ " + s)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().FgSubtle)).Bold(true)
}
