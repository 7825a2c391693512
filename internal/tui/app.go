// Package tui is the terminal front end: a dashboard of templates, the
// trash, and the fill wizard, with navigation held by the wizard's guard.
package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/guard"
	"github.com/mark3labs/deckfill/internal/hooks"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/state"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/tui/theme"
	"github.com/mark3labs/deckfill/internal/tui/wizard"
)

// Service is the remote surface the app uses.
type Service interface {
	wizard.Service
	ListTemplates(ctx context.Context) ([]template.Template, error)
	ListTrash(ctx context.Context) ([]template.Template, error)
	GetTemplate(ctx context.Context, id template.ID) (template.Template, error)
	UpdateTemplate(ctx context.Context, id template.ID, upd api.TemplateUpdate) (template.Template, error)
	DeleteTemplate(ctx context.Context, id template.ID) error
	RestoreTemplate(ctx context.Context, id template.ID) error
}

// StartPage selects the first page shown.
type StartPage int

const (
	StartDashboard StartPage = iota
	StartUpload
	StartFill
	StartReview
)

// Options configures the app.
type Options struct {
	Service   Service
	Tab       kv.Store
	TabID     string
	APIBase   string
	Choices   func(placeholder string) []string
	OutputDir string
	StartDir  string

	// DataDir holds UI preferences. Empty keeps them in memory.
	DataDir string

	// Hooks run after a presentation is saved, in WorkDir.
	Hooks   *hooks.Config
	WorkDir string

	Start      StartPage
	UploadPath string
	TemplateID template.ID
}

type page int

const (
	pageDashboard page = iota
	pageTrash
	pageWizard
)

func (p page) String() string {
	switch p {
	case pageTrash:
		return "Trash"
	case pageWizard:
		return "Wizard"
	default:
		return "Templates"
	}
}

// App is the main Bubbletea model.
type App struct {
	ctx  context.Context
	opts Options

	header    *Header
	status    *StatusBar
	notice    *notice
	confirm   *ConfirmationModal
	dashboard *Dashboard
	trash     *Trash
	wiz       *wizard.Wizard

	page          page
	fetching      bool
	pendingDelete template.Template
	renderFailed  bool
	quitting      bool
	prefs         state.Prefs
	width         int
	height        int
}

// NewApp creates the app on its start page.
func NewApp(ctx context.Context, opts Options) *App {
	a := &App{
		ctx:       ctx,
		opts:      opts,
		header:    NewHeader(opts.TabID, opts.APIBase),
		status:    NewStatusBar(),
		notice:    &notice{},
		confirm:   NewConfirmationModal(),
		dashboard: NewDashboard(ctx, opts.Service),
		trash:     NewTrash(ctx, opts.Service),
		prefs:     state.Load(opts.DataDir),
		width:     80,
		height:    24,
	}
	a.dashboard.SetDetails(a.prefs.ShowDetails)
	return a
}

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewApp(ctx, opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the start page.
func (a *App) Init() tea.Cmd {
	switch a.opts.Start {
	case StartUpload:
		a.openWizard()
		if a.opts.UploadPath != "" {
			return a.wiz.Upload(a.opts.UploadPath)
		}
		return nil
	case StartFill:
		a.openWizard()
		a.fetching = true
		ctx, svc, id := a.ctx, a.opts.Service, a.opts.TemplateID
		return func() tea.Msg {
			tpl, err := svc.GetTemplate(ctx, id)
			return templateFetchedMsg{tpl: tpl, err: err}
		}
	case StartReview:
		a.openWizard()
		return a.wiz.Resume(a.opts.TemplateID)
	}
	return a.dashboard.Load()
}

// Page returns the current page's logical path.
func (a *App) Page() string {
	switch a.page {
	case pageTrash:
		return "/trash"
	case pageWizard:
		if a.wiz != nil {
			return a.wiz.Path()
		}
	}
	return "/"
}

func (a *App) openWizard() {
	a.wiz = wizard.New(a.ctx, wizard.Options{
		Service:   a.opts.Service,
		Tab:       a.opts.Tab,
		Choices:   a.opts.Choices,
		OutputDir: a.opts.OutputDir,
		StartDir:  a.opts.StartDir,
	})
	a.page = pageWizard
	a.renderFailed = false
	a.propagateSizes()
}

// navigate asks to leave the current page for to. A dirty wizard holds
// the request behind a confirmation.
func (a *App) navigate(to string) tea.Cmd {
	if a.page == pageWizard && a.wiz != nil {
		switch a.wiz.Controller().Guard().Navigate(a.Page(), to) {
		case guard.Prompt:
			a.confirm.Show(confirmLeave, "Unsaved changes",
				"You have entries that were not submitted. Leave this page anyway?")
			return nil
		case guard.Replaced:
			return nil
		}
	}
	return a.goTo(to)
}

// goTo switches pages without consulting the guard.
func (a *App) goTo(to string) tea.Cmd {
	a.wiz = nil
	a.renderFailed = false
	a.fetching = false
	switch to {
	case "/trash":
		a.page = pageTrash
		return a.trash.Load()
	default:
		a.page = pageDashboard
		return a.dashboard.Load()
	}
}

func (a *App) requestQuit() tea.Cmd {
	if a.page == pageWizard && a.wiz != nil && a.wiz.Controller().Guard().BeforeUnload() {
		a.confirm.Show(confirmQuit, "Quit deckfill?",
			"Your entries are kept for this tab. Reopen it with --tab "+a.opts.TabID+".")
		return nil
	}
	return a.quit()
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	return tea.Quit
}

// Update handles incoming messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSizes()
		return a, nil

	case tea.KeyPressMsg:
		return a, a.handleKeyPress(msg)

	case noticeMsg:
		return a, a.notice.show(msg)

	case noticeExpiredMsg:
		a.notice.expire(msg)
		return a, nil

	case navigateMsg:
		return a, a.navigate(msg.to)

	case quitRequestMsg:
		return a, a.requestQuit()

	case useTemplateMsg:
		a.openWizard()
		return a, a.wiz.Open(msg.tpl)

	case uploadRequestMsg:
		a.openWizard()
		return a, nil

	case deleteRequestMsg:
		a.pendingDelete = msg.tpl
		a.confirm.Show(confirmDelete, "Delete template",
			fmt.Sprintf("Move %q to the trash? It can be restored for %d days.", msg.tpl.Name, int(api.TrashRetention.Hours()/24)))
		return a, nil

	case templateFetchedMsg:
		a.fetching = false
		if msg.err != nil {
			return a, tea.Batch(a.goTo("/"), a.notice.show(noticeMsg{text: api.Message(msg.err), isErr: true}))
		}
		if a.wiz == nil {
			return a, nil
		}
		return a, a.wiz.Open(msg.tpl)

	case templatesLoadedMsg, renamedMsg, deletedMsg:
		return a, a.dashboard.Update(msg)

	case trashLoadedMsg, restoredMsg:
		return a, a.trash.Update(msg)

	case wizard.ExitMsg:
		cmd := a.navigate("/")
		if msg.Notice != "" {
			cmd = tea.Batch(cmd, a.notice.show(noticeMsg{text: msg.Notice}))
		}
		return a, cmd

	case wizard.NoticeMsg:
		return a, a.notice.show(noticeMsg{text: msg.Text})

	case wizard.FinishedMsg:
		return a, tea.Batch(a.notice.show(noticeMsg{text: "Saved to " + msg.Path}), a.runHooks(msg))

	case detailsToggledMsg:
		a.prefs.ShowDetails = msg.visible
		if a.opts.DataDir != "" {
			if err := state.Save(a.opts.DataDir, a.prefs); err != nil {
				logger.Warn("Failed to save UI state: %v", err)
			}
		}
		return a, nil

	case hooksDoneMsg:
		if msg.err != nil {
			logger.Warn("Post-generate hooks interrupted: %v", msg.err)
			return a, nil
		}
		if msg.output != "" {
			logger.Info("Post-generate hooks: %s", msg.output)
		}
		return a, nil
	}

	return a, a.updatePage(msg)
}

func (a *App) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	if a.confirm.IsVisible() {
		return a.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return a.requestQuit()
	case "esc":
		if a.renderFailed {
			return a.goTo("/")
		}
	}
	return a.updatePage(msg)
}

func (a *App) handleConfirmKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		switch a.confirm.Hide() {
		case confirmLeave:
			return a.proceed()
		case confirmQuit:
			return a.quit()
		case confirmDelete:
			tpl := a.pendingDelete
			a.pendingDelete = template.Template{}
			return a.dashboard.Delete(tpl)
		}
	case "n", "N", "esc":
		if a.confirm.Hide() == confirmLeave && a.wiz != nil {
			a.wiz.Controller().Guard().Cancel()
		}
		a.pendingDelete = template.Template{}
	case "ctrl+c":
		a.confirm.Hide()
		return a.quit()
	}
	return nil
}

// proceed replays a navigation the user confirmed.
func (a *App) proceed() tea.Cmd {
	if a.wiz == nil {
		return nil
	}
	g := a.wiz.Controller().Guard()
	target, ok := g.Confirm()
	if !ok {
		return nil
	}
	if g.Navigate(a.Page(), target) != guard.Allowed {
		logger.Warn("Confirmed navigation to %s was held again", target)
		return nil
	}
	return a.goTo(target)
}

func (a *App) updatePage(msg tea.Msg) tea.Cmd {
	switch a.page {
	case pageTrash:
		return a.trash.Update(msg)
	case pageWizard:
		if a.wiz == nil {
			return nil
		}
		return a.wiz.Update(msg)
	default:
		return a.dashboard.Update(msg)
	}
}

// mainSize is the area between the header and the status bar.
func (a *App) mainSize() (int, int) {
	h := a.height - 2
	if h < 1 {
		h = 1
	}
	return a.width, h
}

func (a *App) propagateSizes() {
	w, h := a.mainSize()
	a.dashboard.SetSize(w-2, h)
	a.trash.SetSize(w-2, h)
	if a.wiz != nil {
		a.wiz.SetSize(w, h)
	}
}

// renderPage draws the current page body. A panic while drawing is
// logged and replaced by a static failure message.
func (a *App) renderPage() (out string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Rendering %s failed: %v", a.page, r)
			a.renderFailed = true
			out = renderFailure()
		}
	}()

	pad := lipgloss.NewStyle().Padding(0, 1)
	switch a.page {
	case pageTrash:
		return pad.Render(a.trash.View())
	case pageWizard:
		return a.wiz.View()
	default:
		return pad.Render(a.dashboard.View())
	}
}

func (a *App) hints() string {
	if a.confirm.IsVisible() {
		return RenderHintBar("y", "confirm", "n", "cancel")
	}
	if a.renderFailed {
		return RenderHintBar(KeyEsc, "back", KeyCtrlC, "quit")
	}
	switch a.page {
	case pageTrash:
		return HintTrash()
	case pageWizard:
		return HintWizard()
	}
	switch {
	case a.dashboard.Renaming():
		return HintRename()
	case a.dashboard.Filtering():
		return HintFilter()
	}
	return HintDashboard()
}

func (a *App) busyLabel() string {
	switch {
	case a.fetching:
		return "loading template..."
	case a.page == pageWizard && a.wiz != nil && a.wiz.Busy():
		return "working..."
	case a.page == pageDashboard && a.dashboard.Loading():
		return "loading..."
	}
	return ""
}

// Render draws the whole screen to a string.
func (a *App) Render() string {
	canvas := uv.NewScreenBuffer(a.width, a.height)
	a.Draw(canvas, canvas.Bounds())
	return canvas.Render()
}

// View renders the current view.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipgloss.NewLayer("")
		return view
	}

	view.Content = lipgloss.NewLayer(a.Render())
	view.BackgroundColor = lipgloss.Color(theme.Current().BgCrust)
	return view
}

// Draw renders all components to the screen buffer.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() < 3 {
		DrawText(scr, area, renderFailure())
		return
	}
	headerArea := uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1)
	mainArea := uv.Rect(area.Min.X, area.Min.Y+1, area.Dx(), area.Dy()-2)
	statusArea := uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1)

	a.header.SetPage(a.page.String())
	a.header.Draw(scr, headerArea)

	DrawText(scr, mainArea, a.renderPage())

	a.status.SetHints(a.hints())
	a.status.SetBusy(a.busyLabel())
	a.status.Draw(scr, statusArea)

	if a.confirm.IsVisible() {
		DrawCentered(scr, area, a.confirm.Render())
	}

	if content := a.notice.view(area.Dx()); content != "" {
		DrawBottomRight(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), area.Dy()-1), content)
	}
}

// runHooks runs the post-generate hooks for a saved presentation.
func (a *App) runHooks(msg wizard.FinishedMsg) tea.Cmd {
	if a.opts.Hooks == nil || len(a.opts.Hooks.Hooks.PostGenerate) == 0 {
		return nil
	}
	ctx, cfg, dir := a.ctx, a.opts.Hooks, a.opts.WorkDir
	vars := hooks.Variables{
		File:         msg.Path,
		TemplateID:   string(msg.Template.ID),
		TemplateName: msg.Template.Name,
	}
	return func() tea.Msg {
		out, err := cfg.PostGenerate(ctx, dir, vars)
		return hooksDoneMsg{output: out, err: err}
	}
}
