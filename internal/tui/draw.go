package tui

import (
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// DrawText renders text at a position.
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// DrawStyled renders lipgloss-styled content filling an area.
func DrawStyled(scr uv.Screen, area uv.Rectangle, style lipgloss.Style, text string) {
	content := style.Width(area.Dx()).Height(area.Dy()).Render(text)
	uv.NewStyledString(content).Draw(scr, area)
}

// DrawCentered renders content centered inside an area.
func DrawCentered(scr uv.Screen, area uv.Rectangle, content string) {
	w, h := lipgloss.Width(content), lipgloss.Height(content)
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	if x < area.Min.X {
		x = area.Min.X
	}
	if y < area.Min.Y {
		y = area.Min.Y
	}
	uv.NewStyledString(content).Draw(scr, uv.Rect(x, y, w, h))
}

// DrawBottomRight renders content in the bottom-right corner of an area
// with one cell of padding.
func DrawBottomRight(scr uv.Screen, area uv.Rectangle, content string) {
	w, h := lipgloss.Width(content), lipgloss.Height(content)
	x := area.Max.X - w - 1
	y := area.Max.Y - h
	if x < area.Min.X {
		x = area.Min.X
	}
	if y < area.Min.Y {
		y = area.Min.Y
	}
	uv.NewStyledString(content).Draw(scr, uv.Rect(x, y, w, h))
}
