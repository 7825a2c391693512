// Package workflow drives the template fill wizard: upload and analysis,
// placeholder review, data entry, review and generation.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/guard"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/review"
	"github.com/mark3labs/deckfill/internal/session"
	"github.com/mark3labs/deckfill/internal/template"
)

var (
	ErrNoFile            = errors.New("please select a file to upload")
	ErrEmptyName         = errors.New("please enter a template name")
	ErrPlaceholderName   = errors.New("placeholder names may only contain letters, digits and underscores")
	ErrDuplicate         = errors.New("a placeholder with that name already exists")
	ErrNoSuchPlaceholder = errors.New("no placeholder with that name")
	ErrIncomplete        = errors.New("please fill in all fields")
	ErrEditInProgress    = errors.New("finish editing the current entry first")
	ErrInFlight          = errors.New("generation already in progress")
	ErrBusy              = errors.New("a request is already in progress")
	ErrStaleSession      = errors.New("no saved entries for this template")
	ErrWrongStep         = errors.New("not available at this step")
	ErrCannotGoBack      = errors.New("cannot go back from this step")
	ErrAlreadySaved      = errors.New("the template is already saved, its placeholders can no longer change")
)

// Generator renders a presentation.
type Generator interface {
	Generate(ctx context.Context, id template.ID, values template.Values) (*api.Presentation, error)
}

// Service is the remote surface the wizard needs.
type Service interface {
	Generator
	AnalyzeUpload(ctx context.Context, filename string, data []byte) ([]template.Placeholder, error)
	SaveTemplate(ctx context.Context, req api.SaveRequest) (template.Template, error)
}

// Controller owns the wizard step and gates every transition.
type Controller struct {
	svc   Service
	tab   kv.Store
	store *session.Store
	guard *guard.Guard

	cursor   review.Cursor
	inFlight atomic.Bool

	mu           sync.Mutex
	busy         bool
	step         Step
	fromUpload   bool
	filename     string
	file         []byte
	placeholders []template.Placeholder
	tpl          template.Template
	saved        *template.Template
	result       *api.Presentation
	lastErr      error
}

// New creates a controller whose state lives in the tab store.
func New(svc Service, tab kv.Store) *Controller {
	c := &Controller{
		svc:   svc,
		tab:   tab,
		store: session.NewStore(tab),
	}
	c.guard = guard.New(func() bool {
		return c.store.Dirty() && !c.inFlight.Load()
	})
	return c
}

// Store returns the form state store.
func (c *Controller) Store() *session.Store { return c.store }

// Guard returns the navigation guard.
func (c *Controller) Guard() *guard.Guard { return c.guard }

// Step returns the current step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// FromUpload reports whether this workflow began with a file upload.
func (c *Controller) FromUpload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fromUpload
}

// Saved reports whether this workflow already saved its uploaded template.
func (c *Controller) Saved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved != nil
}

// Filename returns the analyzed file's name.
func (c *Controller) Filename() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filename
}

// Placeholders returns the placeholders under review.
func (c *Controller) Placeholders() []template.Placeholder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]template.Placeholder(nil), c.placeholders...)
}

// Template returns the template being filled.
func (c *Controller) Template() template.Template {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tpl
}

// Result returns the generated presentation after StepGenerated.
func (c *Controller) Result() *api.Presentation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// LastError returns the error from the most recent failed transition.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// fail records err and returns it. mu must be held.
func (c *Controller) fail(op string, err error) error {
	c.lastErr = err
	logger.Warn("workflow %s: %v", op, err)
	return err
}

// Analyze uploads a file for placeholder detection.
func (c *Controller) Analyze(ctx context.Context, filename string, data []byte) error {
	c.mu.Lock()
	if c.step != StepUpload {
		c.mu.Unlock()
		return ErrWrongStep
	}
	if filename == "" || len(data) == 0 {
		defer c.mu.Unlock()
		return c.fail("analyze", ErrNoFile)
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	found, err := c.svc.AnalyzeUpload(ctx, filename, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		return c.fail("analyze", err)
	}

	c.filename = filename
	c.file = data
	c.placeholders = found
	c.saved = nil
	c.fromUpload = true
	c.lastErr = nil
	c.step = StepReviewPlaceholders
	c.guard.Arm()
	logger.Info("Analyzed %s: %d placeholders", filename, len(found))
	return nil
}

// AddPlaceholder appends a placeholder during review.
func (c *Controller) AddPlaceholder(name string, kind template.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepReviewPlaceholders {
		return ErrWrongStep
	}
	if c.busy {
		return ErrBusy
	}
	if c.saved != nil {
		return ErrAlreadySaved
	}
	name = strings.TrimSpace(name)
	if !template.ValidName(name) {
		return ErrPlaceholderName
	}
	if _, err := template.ParseKind(string(kind)); err != nil {
		return err
	}
	for _, p := range c.placeholders {
		if p.Name == name {
			return ErrDuplicate
		}
	}
	c.placeholders = append(c.placeholders, template.Placeholder{Name: name, Kind: kind})
	return nil
}

// RemovePlaceholder drops a placeholder during review.
func (c *Controller) RemovePlaceholder(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepReviewPlaceholders {
		return ErrWrongStep
	}
	if c.busy {
		return ErrBusy
	}
	if c.saved != nil {
		return ErrAlreadySaved
	}
	for i, p := range c.placeholders {
		if p.Name == name {
			c.placeholders = append(c.placeholders[:i], c.placeholders[i+1:]...)
			return nil
		}
	}
	return ErrNoSuchPlaceholder
}

// ConfirmPlaceholders saves the template and moves to data entry, or to
// the empty view when there is nothing to fill. A template this workflow
// already saved is re-entered without saving again, keeping its entries.
func (c *Controller) ConfirmPlaceholders(ctx context.Context, name, description string) error {
	c.mu.Lock()
	if c.step != StepReviewPlaceholders {
		c.mu.Unlock()
		return ErrWrongStep
	}
	if c.saved != nil {
		defer c.mu.Unlock()
		c.lastErr = nil
		return c.begin(ctx, *c.saved)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		defer c.mu.Unlock()
		return c.fail("save", ErrEmptyName)
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	placeholders := append([]template.Placeholder(nil), c.placeholders...)
	req := api.SaveRequest{
		Filename:     c.filename,
		Data:         c.file,
		Name:         name,
		Description:  strings.TrimSpace(description),
		Placeholders: placeholders,
	}
	c.mu.Unlock()

	saved, err := c.svc.SaveTemplate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		return c.fail("save", err)
	}
	if saved.Name == "" {
		saved.Name = name
	}
	if saved.Placeholders == nil {
		saved.Placeholders = placeholders
	}
	logger.Info("Saved template %s (%s)", saved.ID, saved.Name)
	c.saved = &saved
	c.lastErr = nil
	return c.begin(ctx, saved)
}

// Open starts filling an existing template.
func (c *Controller) Open(ctx context.Context, tpl template.Template) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fromUpload = false
	c.filename = ""
	c.file = nil
	c.placeholders = nil
	c.saved = nil
	c.result = nil
	c.lastErr = nil
	c.guard.Arm()
	return c.begin(ctx, tpl)
}

// begin binds tpl to the store and enters data entry. mu must be held.
func (c *Controller) begin(ctx context.Context, tpl template.Template) error {
	c.tpl = tpl
	if len(tpl.Placeholders) == 0 {
		c.step = StepNoPlaceholders
		return nil
	}
	if err := c.store.Initialize(ctx, tpl); err != nil {
		return c.fail("initialize", err)
	}
	c.step = StepFillData
	return nil
}

// SetValue stores a value during data entry.
func (c *Controller) SetValue(ctx context.Context, name string, v template.Value) error {
	if step := c.Step(); step != StepFillData {
		return ErrWrongStep
	}
	return c.store.SetValue(ctx, name, v)
}

// Continue moves from data entry to review once every field is filled.
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepFillData {
		return ErrWrongStep
	}
	if missing := c.store.Missing(); len(missing) > 0 {
		return c.fail("continue", fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", ")))
	}
	c.lastErr = nil
	c.step = StepReviewEntries
	return nil
}

// Back returns to the previous step.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case StepReviewPlaceholders:
		c.step = StepUpload
	case StepFillData:
		if !c.fromUpload {
			return ErrCannotGoBack
		}
		c.step = StepReviewPlaceholders
	case StepReviewEntries:
		c.cursor.Cancel()
		c.step = StepFillData
	default:
		return ErrCannotGoBack
	}
	c.lastErr = nil
	return nil
}

// StartEdit opens a review row for editing.
func (c *Controller) StartEdit(name string) error {
	if c.Step() != StepReviewEntries {
		return ErrWrongStep
	}
	v, ok := c.store.Value(name)
	if !ok {
		return ErrNoSuchPlaceholder
	}
	return c.cursor.Start(name, v)
}

// SetDraft updates the open row's draft.
func (c *Controller) SetDraft(v template.Value) error {
	return c.cursor.SetDraft(v)
}

// CancelEdit closes the open row without saving.
func (c *Controller) CancelEdit() {
	c.cursor.Cancel()
}

// CommitEdit writes the open row's draft through to the store.
func (c *Controller) CommitEdit(ctx context.Context) error {
	name, ok := c.cursor.Active()
	if !ok {
		return review.ErrNotActive
	}
	draft, _ := c.cursor.Draft()
	if err := c.store.SetValue(ctx, name, draft); err != nil {
		return err
	}
	_, _, err := c.cursor.Commit()
	return err
}

// Cursor exposes the review edit cursor for display.
func (c *Controller) Cursor() *review.Cursor { return &c.cursor }

// Generate renders the presentation. On success the session is cleared
// and the guard disarmed before the step changes.
func (c *Controller) Generate(ctx context.Context) (*api.Presentation, error) {
	if c.Step() != StepReviewEntries {
		return nil, ErrWrongStep
	}
	if _, active := c.cursor.Active(); active {
		return nil, ErrEditInProgress
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer c.inFlight.Store(false)

	tpl, ok := c.store.Template()
	if !ok {
		return nil, c.record("generate", ErrStaleSession)
	}
	if missing := c.store.Missing(); len(missing) > 0 {
		return nil, c.record("generate", fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", ")))
	}

	if err := session.PutHandoff(ctx, c.tab, session.Handoff{TemplateID: tpl.ID, Values: c.store.Values()}); err != nil {
		return nil, c.record("generate", err)
	}
	p, err := Download(ctx, c.svc, c.tab)
	if err != nil {
		return nil, c.record("generate", err)
	}

	if err := c.store.Clear(ctx); err != nil {
		logger.Warn("Failed to clear session after generate: %v", err)
	}
	c.guard.Disarm()

	c.mu.Lock()
	c.result = p
	c.lastErr = nil
	c.step = StepGenerated
	c.mu.Unlock()
	logger.Info("Generated %s (%d bytes)", p.Filename, len(p.Data))
	return p, nil
}

func (c *Controller) record(op string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fail(op, err)
}

// ResumeReview re-enters the review step for a template from the
// persisted session. Without a matching session it returns
// ErrStaleSession.
func (c *Controller) ResumeReview(ctx context.Context, id template.ID) error {
	sess, err := c.store.Lookup(ctx)
	if err != nil {
		return err
	}
	if sess == nil || sess.TemplateID != id || len(sess.Template.Placeholders) == 0 {
		return ErrStaleSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Initialize(ctx, sess.Template); err != nil {
		return c.fail("resume", err)
	}
	c.tpl = sess.Template
	c.fromUpload = false
	c.lastErr = nil
	c.guard.Arm()
	c.step = StepReviewEntries
	return nil
}

// Abandon discards the workflow.
func (c *Controller) Abandon(ctx context.Context) error {
	c.cursor.Cancel()
	c.guard.Disarm()

	c.mu.Lock()
	c.step = StepUpload
	c.fromUpload = false
	c.filename = ""
	c.file = nil
	c.placeholders = nil
	c.saved = nil
	c.tpl = template.Template{}
	c.lastErr = nil
	c.mu.Unlock()

	return c.store.Clear(ctx)
}

// Download consumes the tab's pending handoff and generates from it.
func Download(ctx context.Context, gen Generator, tab kv.Store) (*api.Presentation, error) {
	h, err := session.TakeHandoff(ctx, tab)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, h.TemplateID, h.Values)
}
