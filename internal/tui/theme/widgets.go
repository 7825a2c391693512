package theme

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Hints renders key/description pairs as "key desc • key desc". An odd
// number of arguments renders nothing.
func Hints(pairs ...string) string {
	if len(pairs)%2 != 0 {
		return ""
	}
	s := Current().S()
	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}

// NewInput is a prompt-less single-line input in the current palette.
func NewInput(placeholder string, width int) textinput.Model {
	t := Current()
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{Text: fg(t.FgBase), Placeholder: fg(t.FgMuted), Prompt: fg(t.Tertiary)},
		Blurred: textinput.StyleState{Text: fg(t.FgMuted), Placeholder: fg(t.FgMuted), Prompt: fg(t.BgOverlay)},
		Cursor:  textinput.CursorStyle{Color: lipgloss.Color(t.Primary), Shape: tea.CursorBar, Blink: true},
	})
	ti.SetWidth(width)
	return ti
}
