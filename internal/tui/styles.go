package tui

import "github.com/mark3labs/deckfill/internal/tui/theme"

// renderFailure is the page body shown when a page fails to draw.
func renderFailure() string {
	s := theme.Current().S()
	return s.Error.Render("Something went wrong while drawing this page.") + "\n\n" +
		RenderHintBar(KeyEsc, "back to templates", KeyCtrlC, "quit")
}
