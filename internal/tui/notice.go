package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

const noticeTTL = 3 * time.Second

// noticeMsg asks the app to show a transient notice.
type noticeMsg struct {
	text  string
	isErr bool
}

// noticeExpiredMsg hides the notice it was scheduled for.
type noticeExpiredMsg struct {
	gen int
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text} }
}

func notifyErr(err error) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: api.Message(err), isErr: true} }
}

// notice is the single-line popup in the bottom-right corner. A newer
// notice replaces the current one and restarts its timer.
type notice struct {
	text  string
	isErr bool
	gen   int
}

func (n *notice) show(msg noticeMsg) tea.Cmd {
	n.text, n.isErr = msg.text, msg.isErr
	n.gen++
	gen := n.gen
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{gen: gen} })
}

func (n *notice) expire(msg noticeExpiredMsg) {
	if msg.gen == n.gen {
		n.text = ""
	}
}

// Text is the visible notice, or "".
func (n *notice) Text() string { return n.text }

// Visible reports whether a notice is showing.
func (n *notice) Visible() bool { return n.text != "" }

func (n *notice) view(width int) string {
	if n.text == "" {
		return ""
	}
	t := theme.Current()
	bg := t.Warning
	if n.isErr {
		bg = t.Error
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.BgCrust)).
		Background(lipgloss.Color(bg)).
		Bold(true).
		Padding(0, 1)
	out := style.Render(n.text)
	if width > 4 && lipgloss.Width(out) > width-2 {
		out = style.Width(width - 2).Render(n.text)
	}
	return out
}
