package wizard

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/fields"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
)

type imageMode int

const (
	imageIdle imageMode = iota
	imageUpload
	imageSearch
	imageScrape
	imageFetch
	imageResults
)

func (m imageMode) prompt() string {
	switch m {
	case imageUpload:
		return "Path to a JPG, PNG or GIF file"
	case imageSearch:
		return "Search keywords"
	case imageScrape:
		return "Page URL to scrape"
	case imageFetch:
		return "Image URL"
	default:
		return ""
	}
}

// imageOp names an asynchronous picker call.
type imageOp int

const (
	opUpload imageOp = iota
	opSearch
	opScrape
	opFetch
	opPick
	opPreview
)

// imageDoneMsg carries the result of a picker call back to its row.
type imageDoneMsg struct {
	name    string
	op      imageOp
	key     string
	labels  []string
	preview string
	err     error
}

// editorDoneMsg carries text edited in the external editor.
type editorDoneMsg struct {
	name string
	text string
	err  error
}

// fieldRow edits one placeholder value with the editor its kind needs.
// Every change is reported through onChange.
type fieldRow struct {
	ctx      context.Context
	ph       template.Placeholder
	editor   fields.Editor
	picker   *fields.ImagePicker
	input    textinput.Model
	onChange func(template.Value) error

	cursor int // option for choice/checklist, row for multitext

	mode    imageMode
	labels  []string
	scraped bool
	preview string
	busy    bool
	err     string
}

func newFieldRow(ctx context.Context, ph template.Placeholder, v template.Value, svc fields.AssetService, choices []string, onChange func(template.Value) error) *fieldRow {
	r := &fieldRow{
		ctx:      ctx,
		ph:       ph,
		onChange: onChange,
		input:    theme.NewInput("", 50),
	}

	if ph.Kind == template.KindImage {
		r.picker = fields.NewImagePicker(svc, v.String(), func(key string) {
			if err := r.onChange(template.Text(key)); err != nil {
				logger.Warn("Failed to store image for %s: %v", ph.Name, err)
			}
		})
		r.editor = r.picker
		return r
	}

	r.editor = fields.For(ph, v, choices)
	r.syncInput()
	return r
}

// syncInput loads the input with the text the cursor points at.
func (r *fieldRow) syncInput() {
	switch e := r.editor.(type) {
	case *fields.TextEditor:
		r.input.Placeholder = "Enter " + strings.ToLower(r.ph.Label())
		r.input.SetValue(e.Text())
	case *fields.Choice:
		r.input.Placeholder = "Other..."
		r.input.SetValue(e.OtherText())
	case *fields.Checklist:
		r.input.Placeholder = "Other..."
		r.input.SetValue(e.OtherText())
	case *fields.MultiText:
		rows := e.Rows()
		if r.cursor >= len(rows) {
			r.cursor = len(rows) - 1
		}
		r.input.Placeholder = fmt.Sprintf("Item %d", r.cursor+1)
		r.input.SetValue(rows[r.cursor])
	}
	r.input.CursorEnd()
}

// Focus activates the row's text input where it has one.
func (r *fieldRow) Focus() tea.Cmd {
	if r.wantsInput() {
		return r.input.Focus()
	}
	r.input.Blur()
	return nil
}

// Blur deactivates the row.
func (r *fieldRow) Blur() {
	r.input.Blur()
}

// Capturing reports whether esc and enter belong to the row.
func (r *fieldRow) Capturing() bool {
	return r.mode != imageIdle
}

// Value returns the row's current value.
func (r *fieldRow) Value() template.Value {
	return r.editor.Value()
}

// options returns the entries a cursor moves over, "Other" last.
func (r *fieldRow) options() []string {
	switch e := r.editor.(type) {
	case *fields.Choice:
		return append(slices.Clone(e.Options()), fields.OtherSentinel)
	case *fields.Checklist:
		return append(slices.Clone(e.Choices()), fields.OtherSentinel)
	}
	return nil
}

func (r *fieldRow) onOther() bool {
	opts := r.options()
	return len(opts) > 0 && r.cursor == len(opts)-1
}

// wantsInput reports whether typed keys go to the text input.
func (r *fieldRow) wantsInput() bool {
	switch e := r.editor.(type) {
	case *fields.TextEditor, *fields.MultiText:
		return true
	case *fields.Choice:
		return r.onOther()
	case *fields.Checklist:
		return r.onOther() && e.OtherOn()
	case *fields.ImagePicker:
		return r.mode != imageIdle && r.mode != imageResults
	}
	return false
}

func (r *fieldRow) emit(v template.Value) {
	if err := r.onChange(v); err != nil {
		r.err = err.Error()
		return
	}
	r.err = ""
}

// Update handles a message for the focused row.
func (r *fieldRow) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case imageDoneMsg:
		if msg.name == r.ph.Name {
			r.handleImage(msg)
		}
		return nil
	case editorDoneMsg:
		if msg.name == r.ph.Name {
			r.handleEditor(msg)
		}
		return nil
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}

	if r.wantsInput() {
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return cmd
	}
	return nil
}

func (r *fieldRow) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch e := r.editor.(type) {
	case *fields.TextEditor:
		if msg.String() == "ctrl+e" {
			return r.openEditor(e.Text())
		}
		return r.typeInto(func(s string) template.Value { return e.SetText(s) }, msg)

	case *fields.Choice:
		switch msg.String() {
		case "left":
			r.move(-1)
			return r.Focus()
		case "right":
			r.move(1)
			return r.Focus()
		case "space", "enter":
			if r.onOther() {
				r.emit(e.SelectOther())
				return r.Focus()
			}
			r.emit(e.Select(r.options()[r.cursor]))
			r.input.SetValue("")
			return nil
		}
		if r.onOther() {
			return r.typeInto(func(s string) template.Value { return e.SetOtherText(s) }, msg)
		}

	case *fields.Checklist:
		switch msg.String() {
		case "left":
			r.move(-1)
			return r.Focus()
		case "right":
			r.move(1)
			return r.Focus()
		case "space", "enter":
			if r.onOther() {
				r.emit(e.ToggleOther())
				return r.Focus()
			}
			r.emit(e.Toggle(r.options()[r.cursor]))
			return nil
		}
		if r.onOther() && e.OtherOn() {
			return r.typeInto(func(s string) template.Value { return e.SetOtherText(s) }, msg)
		}

	case *fields.MultiText:
		switch msg.String() {
		case "ctrl+n":
			if v, ok := e.Add(); ok {
				r.emit(v)
				r.cursor = len(e.Rows()) - 1
				r.syncInput()
			}
			return nil
		case "ctrl+d":
			r.emit(e.Remove(r.cursor))
			r.syncInput()
			return nil
		case "ctrl+up":
			if r.cursor > 0 {
				r.cursor--
				r.syncInput()
			}
			return nil
		case "ctrl+down":
			if r.cursor < len(e.Rows())-1 {
				r.cursor++
				r.syncInput()
			}
			return nil
		}
		i := r.cursor
		return r.typeInto(func(s string) template.Value { return e.SetRow(i, s) }, msg)

	case *fields.ImagePicker:
		return r.handleImageKey(msg)
	}
	return nil
}

// typeInto forwards a key to the input and reports any text change.
func (r *fieldRow) typeInto(set func(string) template.Value, msg tea.KeyPressMsg) tea.Cmd {
	before := r.input.Value()
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	if after := r.input.Value(); after != before {
		r.emit(set(after))
	}
	return cmd
}

func (r *fieldRow) move(delta int) {
	n := len(r.options())
	if n == 0 {
		return
	}
	r.cursor = (r.cursor + delta + n) % n
	switch e := r.editor.(type) {
	case *fields.Choice:
		r.input.SetValue(e.OtherText())
	case *fields.Checklist:
		r.input.SetValue(e.OtherText())
	}
	r.input.CursorEnd()
}

func (r *fieldRow) handleImageKey(msg tea.KeyPressMsg) tea.Cmd {
	if r.busy {
		return nil
	}

	switch r.mode {
	case imageIdle:
		switch msg.String() {
		case "u":
			return r.enterMode(imageUpload)
		case "s":
			return r.enterMode(imageSearch)
		case "w":
			return r.enterMode(imageScrape)
		case "f":
			return r.enterMode(imageFetch)
		case "p":
			if r.picker.Key() == "" {
				return nil
			}
			return r.run(opPreview, func(ctx context.Context) imageDoneMsg {
				u, err := r.picker.Preview(ctx)
				return imageDoneMsg{preview: u, err: err}
			})
		case "x":
			r.picker.Clear()
			r.preview = ""
			r.err = ""
		}
		return nil

	case imageResults:
		switch msg.String() {
		case "esc":
			r.mode = imageIdle
			r.labels = nil
		case "left":
			if r.cursor > 0 {
				r.cursor--
			}
		case "right":
			if r.cursor < len(r.labels)-1 {
				r.cursor++
			}
		case "enter":
			i, scraped := r.cursor, r.scraped
			return r.run(opPick, func(ctx context.Context) imageDoneMsg {
				var key string
				var err error
				if scraped {
					key, err = r.picker.PickScraped(ctx, i)
				} else {
					key, err = r.picker.PickSearchResult(ctx, i)
				}
				return imageDoneMsg{key: key, err: err}
			})
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		r.mode = imageIdle
		r.input.Blur()
		return nil
	case "enter":
		text := strings.TrimSpace(r.input.Value())
		switch r.mode {
		case imageUpload:
			return r.run(opUpload, func(ctx context.Context) imageDoneMsg {
				key, err := r.picker.UploadFile(ctx, text)
				return imageDoneMsg{key: key, err: err}
			})
		case imageSearch:
			return r.run(opSearch, func(ctx context.Context) imageDoneMsg {
				results, err := r.picker.Search(ctx, text)
				labels := make([]string, len(results))
				for i, res := range results {
					labels[i] = res.Original
				}
				return imageDoneMsg{labels: labels, err: err}
			})
		case imageScrape:
			return r.run(opScrape, func(ctx context.Context) imageDoneMsg {
				urls, err := r.picker.Scrape(ctx, text)
				return imageDoneMsg{labels: urls, err: err}
			})
		case imageFetch:
			return r.run(opFetch, func(ctx context.Context) imageDoneMsg {
				key, err := r.picker.FetchURL(ctx, text)
				return imageDoneMsg{key: key, err: err}
			})
		}
		return nil
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return cmd
}

func (r *fieldRow) enterMode(m imageMode) tea.Cmd {
	r.mode = m
	r.err = ""
	r.input.Placeholder = m.prompt()
	r.input.SetValue("")
	return r.input.Focus()
}

// run starts a picker call as a command.
func (r *fieldRow) run(op imageOp, fn func(ctx context.Context) imageDoneMsg) tea.Cmd {
	r.busy = true
	r.err = ""
	ctx, name := r.ctx, r.ph.Name
	return func() tea.Msg {
		msg := fn(ctx)
		msg.name = name
		msg.op = op
		return msg
	}
}

func (r *fieldRow) handleImage(msg imageDoneMsg) {
	r.busy = false
	if msg.err != nil {
		r.err = api.Message(msg.err)
		return
	}
	switch msg.op {
	case opSearch, opScrape:
		if len(msg.labels) == 0 {
			r.err = "No images found"
			return
		}
		r.labels = msg.labels
		r.scraped = msg.op == opScrape
		r.cursor = 0
		r.mode = imageResults
		r.input.Blur()
	case opPreview:
		r.preview = msg.preview
	default:
		r.mode = imageIdle
		r.labels = nil
		r.preview = ""
		r.input.Blur()
	}
}

// openEditor edits text in $EDITOR through a temp file.
func (r *fieldRow) openEditor(content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "deckfill_value_*.txt")
	if err != nil {
		r.err = err.Error()
		return nil
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		r.err = err.Error()
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("deckfill", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		r.err = err.Error()
		return nil
	}

	name, path := r.ph.Name, tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			return editorDoneMsg{name: name, err: err}
		}
		data, err := os.ReadFile(path)
		return editorDoneMsg{name: name, text: strings.TrimRight(string(data), "\n"), err: err}
	})
}

func (r *fieldRow) handleEditor(msg editorDoneMsg) {
	if msg.err != nil {
		r.err = msg.err.Error()
		return
	}
	if e, ok := r.editor.(*fields.TextEditor); ok {
		r.input.SetValue(msg.text)
		r.input.CursorEnd()
		r.emit(e.SetText(msg.text))
	}
}

// View renders the row. focused rows show their interactive controls.
func (r *fieldRow) View(focused bool) string {
	s := theme.Current().S()
	var b strings.Builder

	label := r.ph.Label() + " " + s.ListMeta.Render("("+r.ph.Kind.Label()+")")
	if r.ph.Kind.Filled(r.Value()) {
		label += " " + s.Success.Render("✓")
	}
	if focused {
		b.WriteString(selectedLine(label))
	} else {
		b.WriteString("  " + label)
	}
	b.WriteString("\n")

	if !focused {
		if v := r.Value().String(); v != "" {
			b.WriteString("    " + s.ListMeta.Render(v) + "\n")
		}
		return b.String()
	}

	switch e := r.editor.(type) {
	case *fields.TextEditor:
		b.WriteString("    " + r.input.View() + "\n")
	case *fields.Choice:
		b.WriteString("    " + r.renderOptions(func(opt string, other bool) bool {
			if other {
				return e.OtherOn()
			}
			return e.IsSelected(opt)
		}, "(•)", "( )") + "\n")
		if r.onOther() || e.OtherOn() {
			b.WriteString("    " + r.input.View() + "\n")
		}
	case *fields.Checklist:
		b.WriteString("    " + r.renderOptions(func(opt string, other bool) bool {
			if other {
				return e.OtherOn()
			}
			return e.Selected(opt)
		}, "[x]", "[ ]") + "\n")
		if e.OtherOn() {
			b.WriteString("    " + r.input.View() + "\n")
		}
	case *fields.MultiText:
		for i, row := range e.Rows() {
			if i == r.cursor {
				b.WriteString(fmt.Sprintf("    %d. %s\n", i+1, r.input.View()))
				continue
			}
			b.WriteString(fmt.Sprintf("    %d. %s\n", i+1, s.ListItem.Render(row)))
		}
	case *fields.ImagePicker:
		b.WriteString(r.renderImage())
	}

	if r.busy {
		b.WriteString("    " + s.ListMeta.Render("Working...") + "\n")
	}
	if r.err != "" {
		b.WriteString("    " + s.Error.Render(r.err) + "\n")
	}
	return b.String()
}

func (r *fieldRow) renderOptions(on func(opt string, other bool) bool, mark, unmark string) string {
	s := theme.Current().S()
	opts := r.options()
	parts := make([]string, len(opts))
	for i, opt := range opts {
		box := unmark
		if on(opt, i == len(opts)-1) {
			box = mark
		}
		text := box + " " + opt
		if i == r.cursor {
			text = s.ListSelected.Render(text)
		}
		parts[i] = text
	}
	return strings.Join(parts, "  ")
}

func (r *fieldRow) renderImage() string {
	s := theme.Current().S()
	var b strings.Builder

	key := r.picker.Key()
	if key == "" {
		b.WriteString("    " + s.Empty.Render("No image selected") + "\n")
	} else {
		b.WriteString("    " + s.ListItem.Render(key) + "\n")
	}
	if r.preview != "" {
		b.WriteString("    " + s.ListMeta.Render(r.preview) + "\n")
	}

	switch r.mode {
	case imageIdle:
		b.WriteString("    " + renderHintBar("u", "upload", "s", "search", "w", "scrape page", "f", "from URL", "p", "preview", "x", "clear") + "\n")
	case imageResults:
		for i, l := range r.labels {
			line := fmt.Sprintf("%d. %s", i+1, l)
			if i == r.cursor {
				b.WriteString("    " + selectedLine(line) + "\n")
			} else {
				b.WriteString("      " + s.ListMeta.Render(line) + "\n")
			}
		}
		b.WriteString("    " + renderHintBar("←→", "choose", "enter", "use image", "esc", "cancel") + "\n")
	default:
		b.WriteString("    " + r.input.View() + "\n")
		b.WriteString("    " + renderHintBar("enter", "go", "esc", "cancel") + "\n")
	}
	return b.String()
}
