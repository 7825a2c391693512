package tui

import "github.com/mark3labs/deckfill/internal/tui/theme"

// Key labels shared by the hint bars.
const (
	KeyUpDown = "↑/↓"
	KeyEnter  = "enter"
	KeyEsc    = "esc"
	KeyCtrlC  = "ctrl+c"
	KeyCtrlR  = "ctrl+r"
	KeySlash  = "/"
)

// RenderHintBar renders key/description pairs for the status bar.
func RenderHintBar(pairs ...string) string { return theme.Hints(pairs...) }

// HintDashboard returns hints for the template list.
func HintDashboard() string {
	return RenderHintBar(
		KeyUpDown, "select",
		KeyEnter, "use",
		"u", "upload",
		"r", "rename",
		"d", "delete",
		KeySlash, "filter",
		"p", "details",
		"t", "trash",
		"q", "quit",
	)
}

// HintFilter returns hints while the filter input is open.
func HintFilter() string {
	return RenderHintBar(KeyEnter, "apply", KeyEsc, "clear")
}

// HintRename returns hints while renaming a template.
func HintRename() string {
	return RenderHintBar(KeyEnter, "save", KeyEsc, "cancel")
}

// HintTrash returns hints for the trash list.
func HintTrash() string {
	return RenderHintBar(KeyUpDown, "select", KeyEnter, "restore", KeyCtrlR, "reload", KeyEsc, "back")
}

// HintWizard returns the global hint shown under the wizard.
func HintWizard() string {
	return RenderHintBar(KeyCtrlC, "quit")
}
