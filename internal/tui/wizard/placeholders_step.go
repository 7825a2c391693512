package wizard

import (
	"fmt"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/workflow"
)

const (
	focusName = iota
	focusDescription
	focusList
	focusNew
	focusCount
)

// submitPlaceholdersMsg asks the wizard to save the reviewed template.
type submitPlaceholdersMsg struct {
	Name        string
	Description string
}

// PlaceholdersStep reviews detected placeholders and names the template.
type PlaceholdersStep struct {
	ctrl        *workflow.Controller
	nameInput   textinput.Model
	descInput   textinput.Model
	newInput    textinput.Model
	focus       int
	selectedIdx int
	err         string
	width       int
	height      int
}

// NewPlaceholdersStep creates the step with the template name derived
// from the uploaded file name.
func NewPlaceholdersStep(ctrl *workflow.Controller) *PlaceholdersStep {
	p := &PlaceholdersStep{
		ctrl:      ctrl,
		nameInput: theme.NewInput("Template name", 50),
		descInput: theme.NewInput("Description (optional, markdown)", 50),
		newInput:  theme.NewInput("new_placeholder_name", 50),
		width:     60,
		height:    10,
	}
	base := filepath.Base(ctrl.Filename())
	p.nameInput.SetValue(strings.TrimSuffix(base, filepath.Ext(base)))
	return p
}

// Init focuses the template name.
func (p *PlaceholdersStep) Init() tea.Cmd {
	return p.setFocus(focusName)
}

// SetSize updates the dimensions for the step.
func (p *PlaceholdersStep) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.nameInput.SetWidth(width - 4)
	p.descInput.SetWidth(width - 4)
	p.newInput.SetWidth(width - 4)
}

func (p *PlaceholdersStep) setFocus(f int) tea.Cmd {
	p.focus = f
	p.nameInput.Blur()
	p.descInput.Blur()
	p.newInput.Blur()
	switch f {
	case focusName:
		return p.nameInput.Focus()
	case focusDescription:
		return p.descInput.Focus()
	case focusNew:
		return p.newInput.Focus()
	}
	return nil
}

// Update handles messages for the placeholders step.
func (p *PlaceholdersStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return p.updateInput(msg)
	}

	switch keyMsg.String() {
	case "tab":
		return p.setFocus((p.focus + 1) % focusCount)
	case "shift+tab":
		return p.setFocus((p.focus + focusCount - 1) % focusCount)
	case "ctrl+s":
		return p.submit()
	}

	switch p.focus {
	case focusName, focusDescription:
		if keyMsg.String() == "enter" {
			return p.submit()
		}
	case focusList:
		n := len(p.ctrl.Placeholders())
		switch keyMsg.String() {
		case "up", "k":
			if p.selectedIdx > 0 {
				p.selectedIdx--
			}
		case "down", "j":
			if p.selectedIdx < n-1 {
				p.selectedIdx++
			}
		case "d", "delete", "backspace":
			p.remove()
		}
		return nil
	case focusNew:
		if keyMsg.String() == "enter" {
			p.add()
			return nil
		}
	}

	return p.updateInput(msg)
}

func (p *PlaceholdersStep) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch p.focus {
	case focusName:
		p.nameInput, cmd = p.nameInput.Update(msg)
	case focusDescription:
		p.descInput, cmd = p.descInput.Update(msg)
	case focusNew:
		p.newInput, cmd = p.newInput.Update(msg)
	}
	return cmd
}

func (p *PlaceholdersStep) add() {
	if err := p.ctrl.AddPlaceholder(p.newInput.Value(), template.KindText); err != nil {
		p.err = err.Error()
		return
	}
	p.err = ""
	p.newInput.SetValue("")
	p.selectedIdx = len(p.ctrl.Placeholders()) - 1
}

func (p *PlaceholdersStep) remove() {
	phs := p.ctrl.Placeholders()
	if p.selectedIdx < 0 || p.selectedIdx >= len(phs) {
		return
	}
	if err := p.ctrl.RemovePlaceholder(phs[p.selectedIdx].Name); err != nil {
		p.err = err.Error()
		return
	}
	p.err = ""
	if p.selectedIdx >= len(phs)-1 && p.selectedIdx > 0 {
		p.selectedIdx--
	}
}

func (p *PlaceholdersStep) submit() tea.Cmd {
	name, desc := p.nameInput.Value(), p.descInput.Value()
	if strings.TrimSpace(name) == "" {
		p.err = workflow.ErrEmptyName.Error()
		return p.setFocus(focusName)
	}
	p.err = ""
	return func() tea.Msg {
		return submitPlaceholdersMsg{Name: name, Description: desc}
	}
}

// View renders the placeholders step.
func (p *PlaceholdersStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(labelStyle().Render("Template name"))
	b.WriteString("\n")
	b.WriteString(p.nameInput.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle().Render("Description"))
	b.WriteString("\n")
	b.WriteString(p.descInput.View())
	b.WriteString("\n\n")

	phs := p.ctrl.Placeholders()
	b.WriteString(labelStyle().Render(fmt.Sprintf("Placeholders found in %s (%d)", p.ctrl.Filename(), len(phs))))
	b.WriteString("\n")
	if len(phs) == 0 {
		b.WriteString(s.Empty.Render("No placeholders detected. Add one below or save to finish."))
		b.WriteString("\n")
	}
	for i, ph := range phs {
		line := fmt.Sprintf("{{%s}} %s", ph.Name, s.ListMeta.Render(ph.Kind.Label()))
		if len(ph.Options) > 0 {
			line += s.ListMeta.Render(" · " + strings.Join(ph.Options, ", "))
		}
		if p.focus == focusList && i == p.selectedIdx {
			line = selectedLine(line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(labelStyle().Render("Add text placeholder"))
	b.WriteString("\n")
	b.WriteString(p.newInput.View())
	b.WriteString("\n")

	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(p.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderButtons(p.width, stepButtons("← Back", true, "Save", strings.TrimSpace(p.nameInput.Value()) != "")...))
	b.WriteString("\n\n")
	switch p.focus {
	case focusList:
		b.WriteString(renderHintBar("↑↓", "navigate", "d", "remove", "tab", "next field", "ctrl+s", "save", "esc", "back"))
	case focusNew:
		b.WriteString(renderHintBar("enter", "add", "tab", "next field", "ctrl+s", "save", "esc", "back"))
	default:
		b.WriteString(renderHintBar("tab", "next field", "enter", "save", "esc", "back"))
	}
	return b.String()
}
