package tui

import (
	"strings"
	"sync"

	"charm.land/glamour/v2"
	"github.com/mark3labs/deckfill/internal/logger"
)

var (
	mdMu        sync.Mutex
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// markdownRenderer returns a glamour renderer for width, building each
// width once.
func markdownRenderer(width int) (*glamour.TermRenderer, error) {
	mdMu.Lock()
	defer mdMu.Unlock()
	if r, ok := mdRenderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	mdRenderers[width] = r
	return r, nil
}

// renderMarkdown renders a template description, falling back to plain
// word wrapping when glamour fails.
func renderMarkdown(content string, width int) string {
	width = min(max(width, 10), 120)
	r, err := markdownRenderer(width)
	if err == nil {
		var out string
		if out, err = r.Render(content); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	logger.Debug("Markdown fallback: %v", err)
	return wrapText(content, width)
}

// wrapText breaks paragraphs at spaces so no line exceeds width, unless a
// single word is longer.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var b strings.Builder
	for i, para := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		n := 0
		for j, word := range strings.Fields(para) {
			if j > 0 && n+1+len(word) > width {
				b.WriteByte('\n')
				n = 0
			} else if j > 0 {
				b.WriteByte(' ')
				n++
			}
			b.WriteString(word)
			n += len(word)
		}
	}
	return b.String()
}
