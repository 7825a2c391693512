package tui

import (
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

// confirmAction identifies what a confirmation accepts.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmLeave
	confirmQuit
	confirmDelete
)

// ConfirmationModal asks a yes/no question over the current page.
type ConfirmationModal struct {
	title   string
	message string
	action  confirmAction
	visible bool
}

// NewConfirmationModal creates a hidden confirmation modal.
func NewConfirmationModal() *ConfirmationModal {
	return &ConfirmationModal{}
}

// Show displays the modal for an action.
func (m *ConfirmationModal) Show(action confirmAction, title, message string) {
	m.action = action
	m.title = title
	m.message = message
	m.visible = true
}

// Hide hides the modal and returns the action it was asking about.
func (m *ConfirmationModal) Hide() confirmAction {
	action := m.action
	m.visible = false
	m.action = confirmNone
	return action
}

// IsVisible returns whether the modal is currently visible.
func (m *ConfirmationModal) IsVisible() bool {
	return m.visible
}

// Action returns the pending action.
func (m *ConfirmationModal) Action() confirmAction {
	return m.action
}

// Render renders the modal.
func (m *ConfirmationModal) Render() string {
	return RenderConfirmationModal(m.title, m.message)
}

// RenderConfirmationModal renders a confirmation box with the given title and message.
func RenderConfirmationModal(title, message string) string {
	t := theme.Current()

	titleText := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Warning)).
		Render("⚠ " + title)

	messageText := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase)).
		Render(message)

	buttons := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted)).
		Render("Press Y to confirm, N or ESC to cancel")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleText,
		"",
		messageText,
		"",
		buttons,
	)

	return lipgloss.NewStyle().
		Width(50).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Warning)).
		Background(lipgloss.Color(t.BgMantle)).
		Render(content)
}
