package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/workflow"
)

// TemplateExt is the only file type offered for upload.
const TemplateExt = workflow.FileExt

// FileSelectedMsg carries the presentation chosen for upload.
type FileSelectedMsg struct {
	Path string
}

type fsEntry struct {
	name string
	path string
	dir  bool
	size int64
}

func (e fsEntry) line(width int) string {
	label := "📄 " + e.name
	if e.dir {
		label = "📁 " + e.name + "/"
	} else {
		label += "  " + humanSize(e.size)
	}
	if width > 8 && lipgloss.Width(label) > width-2 {
		r := []rune(label)
		label = string(r[:max(0, min(len(r), width-5))]) + "..."
	}
	return label
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// FilePickerStep browses directories for a presentation to upload. Hidden
// directories and files of other types are not listed.
type FilePickerStep struct {
	dir     string
	entries []fsEntry
	cursor  int
	width   int
	height  int
	err     string
}

// NewFilePickerStep opens dir, or the working directory when dir is empty.
func NewFilePickerStep(dir string) *FilePickerStep {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	fp := &FilePickerStep{dir: dir, width: 60, height: 10}
	if err := fp.chdir(dir); err != nil {
		fp.err = err.Error()
	}
	return fp
}

func (f *FilePickerStep) chdir(dir string) error {
	list, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var dirs, files []fsEntry
	for _, de := range list {
		e := fsEntry{name: de.Name(), path: filepath.Join(dir, de.Name()), dir: de.IsDir()}
		switch {
		case e.dir && strings.HasPrefix(e.name, "."):
		case e.dir:
			dirs = append(dirs, e)
		case strings.EqualFold(filepath.Ext(e.name), TemplateExt):
			if info, err := de.Info(); err == nil {
				e.size = info.Size()
			}
			files = append(files, e)
		}
	}
	byName := func(a, b fsEntry) int {
		return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
	}
	slices.SortFunc(dirs, byName)
	slices.SortFunc(files, byName)

	f.entries = f.entries[:0]
	if abs, err := filepath.Abs(dir); err == nil && filepath.Dir(abs) != abs {
		f.entries = append(f.entries, fsEntry{name: "..", path: filepath.Dir(abs), dir: true})
	}
	f.entries = append(append(f.entries, dirs...), files...)
	f.dir = dir
	f.cursor = 0
	f.err = ""
	return nil
}

func (f *FilePickerStep) open(dir string) {
	if err := f.chdir(dir); err != nil {
		f.err = err.Error()
	}
}

func (f *FilePickerStep) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// Update moves the cursor, enters directories and picks files.
func (f *FilePickerStep) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		f.cursor = max(0, f.cursor-1)
	case "down", "j":
		f.cursor = max(0, min(len(f.entries)-1, f.cursor+1))
	case "home", "g":
		f.cursor = 0
	case "end", "G":
		f.cursor = max(0, len(f.entries)-1)
	case "~":
		if home, err := os.UserHomeDir(); err == nil {
			f.open(home)
		}
	case "backspace":
		if parent := filepath.Dir(f.dir); parent != f.dir {
			f.open(parent)
		}
	case "enter":
		if f.cursor >= len(f.entries) {
			return nil
		}
		e := f.entries[f.cursor]
		if e.dir {
			f.open(e.path)
			return nil
		}
		return func() tea.Msg { return FileSelectedMsg{Path: e.path} }
	}
	return nil
}

// window is the slice of entries shown for the current height, keeping
// the cursor near the middle.
func (f *FilePickerStep) window() (int, int) {
	rows := max(3, f.height-6)
	if len(f.entries) <= rows {
		return 0, len(f.entries)
	}
	start := min(max(0, f.cursor-rows/2), len(f.entries)-rows)
	return start, start + rows
}

func (f *FilePickerStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.ListMeta.Render(f.dir))
	b.WriteString("\n\n")
	if f.err != "" {
		b.WriteString(s.Error.Render(f.err) + "\n\n")
	}

	switch {
	case len(f.entries) == 0:
		b.WriteString(s.Empty.Render("Directory is empty") + "\n")
	default:
		if !slices.ContainsFunc(f.entries, func(e fsEntry) bool { return !e.dir }) {
			b.WriteString(s.Empty.Render("No "+TemplateExt+" files in this directory") + "\n\n")
		}
		start, end := f.window()
		for i := start; i < end; i++ {
			line := f.entries[i].line(f.width)
			if i == f.cursor {
				b.WriteString(selectedLine(line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderButtons(f.width, stepButtons("Cancel", true, "Upload", f.SelectedPath() != "")...))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar(
		"↑↓/j/k", "navigate",
		"enter", "open",
		"backspace", "parent",
		"~", "home",
		"esc", "cancel",
	))
	return b.String()
}

// SelectedPath is the file under the cursor, or "" on a directory.
func (f *FilePickerStep) SelectedPath() string {
	if f.cursor < len(f.entries) && !f.entries[f.cursor].dir {
		return f.entries[f.cursor].path
	}
	return ""
}
