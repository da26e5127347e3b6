// Package app holds a user's planning session: the page state, the plan in
// memory and the request slot for generation.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/shared"

	"github.com/google/uuid"
)

var (
	// ErrRequestInFlight is returned when a generation is requested while
	// another one is pending.
	ErrRequestInFlight = errors.New("a plan is already being generated")
	// ErrStaleRequest is returned when a completion does not match the
	// pending request.
	ErrStaleRequest = errors.New("generation request is no longer pending")
	ErrNoPlan       = errors.New("no plan for this week")
)

// PlanGenerator produces plans from schedule text.
type PlanGenerator interface {
	Generate(ctx context.Context, rawScheduleText, apiKey string, now time.Time) (planner.Result, error)
}

// MetricsRecorder stores generation metadata.
type MetricsRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Request is the token held in the request slot while a generation runs.
type Request struct {
	ID     string
	Input  string
	APIKey string
	Now    time.Time
}

// View is a read-only snapshot of the session for front ends.
type View struct {
	State   PageState
	Plan    *plan.Plan
	APIKey  string
	Input   string
	Pending bool
	Err     error
}

// App is one user's session context.
type App struct {
	mu sync.Mutex

	store     *planner.PlanStore
	generator PlanGenerator
	metrics   MetricsRecorder
	now       func() time.Time

	state   PageState
	plan    *plan.Plan
	saved   *plan.Plan
	apiKey  string
	input   string
	pending *Request
	lastErr error
}

// Option configures an App.
type Option func(*App)

// WithMetrics records every generation attempt that reached the service.
func WithMetrics(m MetricsRecorder) Option {
	return func(a *App) { a.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New creates a session. Call Start before using it.
func New(store *planner.PlanStore, generator PlanGenerator, opts ...Option) *App {
	a := &App{
		store:     store,
		generator: generator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start applies the weekly reset policy and loads what survived it. The
// session always starts on the input page.
func (a *App) Start() (planner.InitResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.store.Initialize(a.now())
	if err != nil {
		return planner.InitResult{}, fmt.Errorf("failed to start session: %w", err)
	}

	a.state.Reset()
	a.apiKey = res.APIKey
	a.plan = res.Plan
	a.saved = res.Plan.Clone()
	a.pending = nil
	a.lastErr = nil
	if res.RolledOver {
		a.input = ""
	}
	return res, nil
}

// View returns a snapshot of the session.
func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return View{
		State:   a.state,
		Plan:    a.plan.Clone(),
		APIKey:  a.apiKey,
		Input:   a.input,
		Pending: a.pending != nil,
		Err:     a.lastErr,
	}
}

// HasPlan reports whether a plan is loaded.
func (a *App) HasPlan() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plan != nil
}

// SetInput replaces the schedule text.
func (a *App) SetInput(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.input = text
}

// LoadExample replaces the schedule text with the example week.
func (a *App) LoadExample() {
	a.SetInput(planner.ExampleSchedule)
}

// SetAPIKey stores the key for this and later sessions.
func (a *App) SetAPIKey(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key = strings.TrimSpace(key)
	if err := a.store.SaveAPIKey(key); err != nil {
		return err
	}
	a.apiKey = key
	return nil
}

// Generate runs a whole generation: it claims the request slot, calls the
// generator and applies the outcome.
func (a *App) Generate(ctx context.Context) error {
	req, err := a.BeginGeneration()
	if err != nil {
		return err
	}
	res, genErr := a.Execute(ctx, req)
	return a.CompleteGeneration(req, res, genErr)
}

// Execute calls the generator for req. It does not touch the session, so
// front ends can run it off their event loop between BeginGeneration and
// CompleteGeneration.
func (a *App) Execute(ctx context.Context, req *Request) (planner.Result, error) {
	return a.generator.Generate(ctx, req.Input, req.APIKey, req.Now)
}

// BeginGeneration claims the request slot and enters Loading. Empty input
// keeps the session on the input page.
func (a *App) BeginGeneration() (*Request, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		return nil, ErrRequestInFlight
	}
	if a.state.Page() != PageInput {
		return nil, illegal(a.state, "generate")
	}
	if strings.TrimSpace(a.input) == "" {
		err := &planner.GenerationError{Kind: planner.KindEmptyInput}
		a.lastErr = err
		return nil, err
	}
	if err := a.state.StartLoading(); err != nil {
		return nil, err
	}

	a.pending = &Request{
		ID:     uuid.NewString(),
		Input:  a.input,
		APIKey: a.apiKey,
		Now:    a.now(),
	}
	a.lastErr = nil
	req := *a.pending
	return &req, nil
}

// CompleteGeneration applies the outcome of req. On success the plan is
// stored and shown; on failure the session returns to input and the
// previously stored plan is left alone. The returned error is genErr.
func (a *App) CompleteGeneration(req *Request, res planner.Result, genErr error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil || req == nil || a.pending.ID != req.ID {
		return ErrStaleRequest
	}
	a.pending = nil
	a.record(res.Meta)

	if genErr == nil && res.Plan == nil {
		genErr = &planner.GenerationError{Kind: planner.KindInvalidPlanStructure, Detail: "no plan returned"}
	}
	if genErr != nil {
		a.lastErr = genErr
		if err := a.state.Fail(); err != nil {
			return err
		}
		return genErr
	}

	if err := a.store.Save(res.Plan); err != nil {
		log.Printf("Warning: failed to persist generated plan: %v", err)
	}
	a.plan = res.Plan
	a.saved = res.Plan.Clone()
	return a.state.Succeed()
}

// CancelGeneration releases the slot held by req and returns to input.
func (a *App) CancelGeneration(req *Request) error {
	return a.CompleteGeneration(req, planner.Result{}, fmt.Errorf("generation cancelled: %w", context.Canceled))
}

func (a *App) record(meta shared.AgentMeta) {
	if a.metrics == nil || meta.AgentName == "" {
		return
	}
	if err := a.metrics.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

// ResumePlan shows the plan kept in memory without generating a new one.
func (a *App) ResumePlan() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.plan == nil {
		return ErrNoPlan
	}
	return a.state.Resume()
}

// DiscardPlan drops the plan from memory and storage and returns to input.
func (a *App) DiscardPlan() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Page() == PageLoading {
		return illegal(a.state, "discardPlan")
	}
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.plan = nil
	a.saved = nil
	a.state.Reset()
	return nil
}

// ToggleEdit enters edit mode.
func (a *App) ToggleEdit() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.ToggleEdit()
}

// Save persists the edited plan and leaves edit mode. The session stays in
// edit mode when persisting fails.
func (a *App) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.Editing() {
		return illegal(a.state, "save")
	}
	if err := a.store.Save(a.plan); err != nil {
		return err
	}
	a.saved = a.plan.Clone()
	return a.state.LeaveEdit()
}

// DiscardEdits restores the last saved plan and leaves edit mode.
func (a *App) DiscardEdits() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.state.LeaveEdit(); err != nil {
		return err
	}
	a.plan = a.saved.Clone()
	return nil
}

// GoToInput returns to the input page. The plan, including unsaved edits,
// stays in memory.
func (a *App) GoToInput() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.GoToInput()
}

// OpenSession opens a session for editing.
func (a *App) OpenSession(day, session int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.Editing() {
		return illegal(a.state, "openSession")
	}
	if _, err := editor.New(a.plan).Session(day, session); err != nil {
		return err
	}
	return a.state.Open(SessionAddress{Day: day, Session: session})
}

// CloseSession closes the open session; edits already applied are kept.
func (a *App) CloseSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Close()
}

// UpdateField edits one field of one session.
func (a *App) UpdateField(day, session int, field editor.Field, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.Editing() {
		return illegal(a.state, "updateField")
	}
	return editor.New(a.plan).UpdateField(day, session, field, value)
}

// DeleteSession removes a session. The open session follows the shift.
func (a *App) DeleteSession(day, session int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.Editing() {
		return illegal(a.state, "deleteSession")
	}
	if err := editor.New(a.plan).DeleteSession(day, session); err != nil {
		return err
	}
	if open, ok := a.state.OpenSession(); ok && open.Day == day {
		switch {
		case open.Session == session:
			a.state.Close()
		case open.Session > session:
			a.state.Open(SessionAddress{Day: day, Session: open.Session - 1})
		}
	}
	return nil
}

// AddSession appends a default session to a day and opens it.
func (a *App) AddSession(day int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.Editing() {
		return 0, illegal(a.state, "addSession")
	}
	idx, err := editor.New(a.plan).AddSession(day)
	if err != nil {
		return 0, err
	}
	if err := a.state.Open(SessionAddress{Day: day, Session: idx}); err != nil {
		return 0, err
	}
	return idx, nil
}
