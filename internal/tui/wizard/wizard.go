// Package wizard is the template fill wizard: upload, placeholder
// review, data entry, review and download.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/fields"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/workflow"
)

// Service is the remote surface the wizard uses.
type Service interface {
	workflow.Service
	fields.AssetService
}

// Options configures a wizard.
type Options struct {
	Service   Service
	Tab       kv.Store
	Choices   func(placeholder string) []string
	OutputDir string
	StartDir  string
}

// ExitMsg asks the host to leave the wizard.
type ExitMsg struct {
	Notice string
}

// NoticeMsg asks the host to show a short notification.
type NoticeMsg struct {
	Text string
}

// FinishedMsg reports a saved presentation.
type FinishedMsg struct {
	Path     string
	Template template.Template
}

type analyzedMsg struct{ err error }

type savedMsg struct {
	err     error
	reentry bool
}

type openedMsg struct{ err error }

type resumedMsg struct{ err error }

type generatedMsg struct {
	p   *api.Presentation
	err error
}

// Wizard drives a workflow.Controller through its steps.
type Wizard struct {
	ctx    context.Context
	opts   Options
	ctrl   *workflow.Controller
	width  int
	height int
	busy   bool
	status string

	savedPath string
	saveErr   string

	filePicker   *FilePickerStep
	placeholders *PlaceholdersStep
	fill         *FillStep
	review       *ReviewStep
}

// New creates a wizard at the upload step.
func New(ctx context.Context, opts Options) *Wizard {
	w := &Wizard{
		ctx:    ctx,
		opts:   opts,
		ctrl:   workflow.New(opts.Service, opts.Tab),
		width:  80,
		height: 24,
	}
	w.initCurrentStep()
	return w
}

// Controller exposes the workflow controller.
func (w *Wizard) Controller() *workflow.Controller { return w.ctrl }

// Path is the logical location of the current step.
func (w *Wizard) Path() string { return w.ctrl.Step().Path() }

// Busy reports whether a remote call is running.
func (w *Wizard) Busy() bool { return w.busy }

// Upload analyzes a file without going through the picker.
func (w *Wizard) Upload(path string) tea.Cmd {
	return func() tea.Msg { return FileSelectedMsg{Path: path} }
}

// Open starts filling an existing template.
func (w *Wizard) Open(tpl template.Template) tea.Cmd {
	w.start("Loading " + tpl.Name + "...")
	ctx, ctrl := w.ctx, w.ctrl
	return func() tea.Msg {
		return openedMsg{err: ctrl.Open(ctx, tpl)}
	}
}

// Resume re-enters review for a template from the saved session.
func (w *Wizard) Resume(id template.ID) tea.Cmd {
	w.start("Loading saved entries...")
	ctx, ctrl := w.ctx, w.ctrl
	return func() tea.Msg {
		return resumedMsg{err: ctrl.ResumeReview(ctx, id)}
	}
}

func (w *Wizard) start(status string) {
	w.busy = true
	w.status = status
}

// SetSize updates the wizard dimensions.
func (w *Wizard) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.updateCurrentStepSize()
}

// Update handles messages for the wizard.
func (w *Wizard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if w.busy {
			return nil
		}
		if msg.String() == "esc" && !w.capturing() {
			return w.back()
		}
		if msg.String() == "enter" && w.ctrl.Step().Terminal() {
			return exit("")
		}

	case FileSelectedMsg:
		data, err := os.ReadFile(msg.Path)
		if err != nil {
			return notice(fmt.Sprintf("Could not read %s: %v", filepath.Base(msg.Path), err))
		}
		w.start("Analyzing " + filepath.Base(msg.Path) + "...")
		ctx, ctrl, name := w.ctx, w.ctrl, filepath.Base(msg.Path)
		return func() tea.Msg {
			return analyzedMsg{err: ctrl.Analyze(ctx, name, data)}
		}

	case analyzedMsg:
		w.busy = false
		if msg.err != nil {
			return notice(api.Message(msg.err))
		}
		w.placeholders = nil
		return w.enter()

	case submitPlaceholdersMsg:
		w.start("Saving template...")
		ctx, ctrl := w.ctx, w.ctrl
		reentry := ctrl.Saved()
		return func() tea.Msg {
			return savedMsg{err: ctrl.ConfirmPlaceholders(ctx, msg.Name, msg.Description), reentry: reentry}
		}

	case savedMsg:
		w.busy = false
		if msg.err != nil {
			return notice(api.Message(msg.err))
		}
		if msg.reentry {
			return w.enter()
		}
		return tea.Batch(notice("Template saved"), w.enter())

	case openedMsg:
		w.busy = false
		if msg.err != nil {
			return exit(api.Message(msg.err))
		}
		return w.enter()

	case resumedMsg:
		w.busy = false
		if errors.Is(msg.err, workflow.ErrStaleSession) {
			return exit("Nothing to review for this template. Start from the dashboard.")
		}
		if msg.err != nil {
			return exit(api.Message(msg.err))
		}
		return w.enter()

	case continueMsg:
		if err := w.ctrl.Continue(); err != nil {
			return notice(err.Error())
		}
		return w.enter()

	case generateMsg:
		w.start("Generating presentation...")
		w.review.SetGenerating(true)
		ctx, ctrl := w.ctx, w.ctrl
		return func() tea.Msg {
			p, err := ctrl.Generate(ctx)
			return generatedMsg{p: p, err: err}
		}

	case generatedMsg:
		w.busy = false
		if w.review != nil {
			w.review.SetGenerating(false)
		}
		if msg.err != nil {
			return notice(api.Message(msg.err))
		}
		path, err := w.save(msg.p)
		if err != nil {
			w.saveErr = err.Error()
			logger.Error("Failed to write presentation: %v", err)
			return notice("Could not save the presentation: " + err.Error())
		}
		w.savedPath = path
		tpl := w.ctrl.Template()
		return func() tea.Msg { return FinishedMsg{Path: path, Template: tpl} }
	}

	switch w.ctrl.Step() {
	case workflow.StepUpload:
		return w.filePicker.Update(msg)
	case workflow.StepReviewPlaceholders:
		return w.placeholders.Update(msg)
	case workflow.StepFillData:
		return w.fill.Update(msg)
	case workflow.StepReviewEntries:
		return w.review.Update(msg)
	}
	return nil
}

func (w *Wizard) capturing() bool {
	switch w.ctrl.Step() {
	case workflow.StepFillData:
		return w.fill != nil && w.fill.Capturing()
	case workflow.StepReviewEntries:
		return w.review != nil && w.review.Capturing()
	}
	return false
}

func (w *Wizard) back() tea.Cmd {
	if w.ctrl.Step() == workflow.StepUpload || w.ctrl.Step().Terminal() {
		return exit("")
	}
	if err := w.ctrl.Back(); err != nil {
		if errors.Is(err, workflow.ErrCannotGoBack) {
			return exit("")
		}
		return notice(err.Error())
	}
	return w.enter()
}

// enter builds the component for the current step.
func (w *Wizard) enter() tea.Cmd {
	switch w.ctrl.Step() {
	case workflow.StepReviewPlaceholders:
		if w.placeholders == nil {
			w.placeholders = NewPlaceholdersStep(w.ctrl)
		}
		w.updateCurrentStepSize()
		return w.placeholders.Init()
	case workflow.StepFillData:
		w.fill = NewFillStep(w.ctx, w.ctrl, w.opts.Service, w.opts.Choices)
		w.updateCurrentStepSize()
		return w.fill.Init()
	case workflow.StepReviewEntries:
		w.review = NewReviewStep(w.ctx, w.ctrl, w.opts.Service, w.opts.Choices)
		w.updateCurrentStepSize()
		return w.review.Init()
	default:
		w.initCurrentStep()
	}
	return nil
}

// initCurrentStep creates the upload picker if needed.
func (w *Wizard) initCurrentStep() {
	if w.ctrl.Step() == workflow.StepUpload && w.filePicker == nil {
		w.filePicker = NewFilePickerStep(w.opts.StartDir)
	}
	w.updateCurrentStepSize()
}

// updateCurrentStepSize updates the size of the current step component.
func (w *Wizard) updateCurrentStepSize() {
	contentWidth := w.modalWidth() - 6
	contentHeight := w.height - 10
	if contentHeight < 10 {
		contentHeight = 10
	}

	switch w.ctrl.Step() {
	case workflow.StepUpload:
		if w.filePicker != nil {
			w.filePicker.SetSize(contentWidth, contentHeight)
		}
	case workflow.StepReviewPlaceholders:
		if w.placeholders != nil {
			w.placeholders.SetSize(contentWidth, contentHeight)
		}
	case workflow.StepFillData:
		if w.fill != nil {
			w.fill.SetSize(contentWidth, contentHeight)
		}
	case workflow.StepReviewEntries:
		if w.review != nil {
			w.review.SetSize(contentWidth, contentHeight)
		}
	}
}

// save writes the presentation into the output directory.
func (w *Wizard) save(p *api.Presentation) (string, error) {
	path, err := workflow.Save(w.opts.OutputDir, p, w.ctrl.Template())
	if err != nil {
		return "", err
	}
	logger.Info("Wrote %s", path)
	return path, nil
}

func notice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

func exit(text string) tea.Cmd {
	return func() tea.Msg { return ExitMsg{Notice: text} }
}

// View renders the wizard modal.
func (w *Wizard) View() string {
	var stepContent string
	switch step := w.ctrl.Step(); step {
	case workflow.StepUpload:
		stepContent = w.filePicker.View()
		if w.busy {
			stepContent = theme.Current().S().ListMeta.Render(w.status)
		}
	case workflow.StepReviewPlaceholders:
		stepContent = w.placeholders.View()
		if w.busy {
			stepContent += "\n" + theme.Current().S().ListMeta.Render(w.status)
		}
	case workflow.StepFillData:
		stepContent = w.fill.View()
	case workflow.StepReviewEntries:
		stepContent = w.review.View()
	case workflow.StepGenerated:
		stepContent = w.doneView()
	case workflow.StepNoPlaceholders:
		stepContent = w.emptyView()
	}
	return w.renderModal(stepContent)
}

func (w *Wizard) doneView() string {
	s := theme.Current().S()
	var b strings.Builder
	b.WriteString(s.Success.Render("Your presentation is ready."))
	b.WriteString("\n\n")
	switch {
	case w.savedPath != "":
		b.WriteString("Saved to " + s.HeaderTitle.Render(w.savedPath))
	case w.saveErr != "":
		b.WriteString(s.Error.Render(w.saveErr))
	}
	b.WriteString("\n\n")
	b.WriteString(renderButtons(60, button{label: "Back to templates", state: buttonActive}))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar("enter", "done"))
	return b.String()
}

func (w *Wizard) emptyView() string {
	s := theme.Current().S()
	var b strings.Builder
	b.WriteString(s.HeaderTitle.Render(w.ctrl.Template().Name))
	b.WriteString("\n\n")
	b.WriteString(s.Empty.Render("This template has no placeholders to fill."))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar("enter", "back to templates"))
	return b.String()
}

// renderProgress draws the step indicator, shading completed steps.
func (w *Wizard) renderProgress() string {
	t := theme.Current()
	current := w.ctrl.Step()
	colors := theme.Gradient(t.Tertiary, t.Primary, len(workflow.Steps))
	parts := make([]string, len(workflow.Steps))
	for i, step := range workflow.Steps {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay))
		if step <= current || current.Terminal() {
			style = lipgloss.NewStyle().Foreground(colors[i])
		}
		if step == current {
			style = style.Bold(true).Underline(true)
		}
		parts[i] = style.Render(fmt.Sprintf("%d %s", i+1, step.Title()))
	}
	return strings.Join(parts, t.S().HintSeparator.Render(" › "))
}

func (w *Wizard) modalWidth() int {
	modalWidth := w.width - 10
	if modalWidth < 60 {
		modalWidth = 60
	}
	if modalWidth > 100 {
		modalWidth = 100
	}
	return modalWidth
}

// renderModal wraps the step content in a modal container with title.
func (w *Wizard) renderModal(stepContent string) string {
	s := theme.Current().S()
	step := w.ctrl.Step()

	var title string
	if step.Terminal() {
		title = "Template Wizard - " + step.Title()
	} else {
		title = fmt.Sprintf("Template Wizard - Step %d of %d: %s", int(step)+1, len(workflow.Steps), step.Title())
	}

	sections := []string{
		s.ModalTitle.Render(title),
		w.renderProgress(),
		"",
		stepContent,
	}

	modal := s.ModalContainer.Width(w.modalWidth()).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, modal)
}
