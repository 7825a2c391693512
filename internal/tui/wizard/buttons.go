package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

type buttonState int

const (
	buttonIdle buttonState = iota
	buttonOff
	buttonActive
)

type button struct {
	label string
	state buttonState
}

// stepButtons is the back/forward pair shown under each step. back is the
// left label ("← Back" or "Cancel").
func stepButtons(back string, backOn bool, next string, nextOn bool) []button {
	pair := []button{{label: back, state: buttonIdle}, {label: next, state: buttonActive}}
	if !backOn {
		pair[0].state = buttonOff
	}
	if !nextOn {
		pair[1].state = buttonOff
	}
	return pair
}

// renderButtons centers buttons on one line of the given width.
func renderButtons(width int, buttons ...button) string {
	if len(buttons) == 0 {
		return ""
	}
	s := theme.Current().S()
	parts := make([]string, len(buttons))
	for i, btn := range buttons {
		style := s.ButtonNormal
		switch btn.state {
		case buttonOff:
			style = s.ButtonDisabled
		case buttonActive:
			style = s.ButtonFocused
		}
		parts[i] = style.Render(btn.label)
	}
	return lipgloss.Place(width, 1, lipgloss.Center, lipgloss.Center, strings.Join(parts, ""))
}
