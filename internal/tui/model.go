// Package tui is the terminal front end of the planner, built on bubbletea.
package tui

import (
	"context"
	"errors"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/logging"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/planner"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 9
)

// generatedMsg carries the outcome of a generation back to the event loop.
type generatedMsg struct {
	req *app.Request
	res planner.Result
	err error
}

type inputFocus int

const (
	focusSchedule inputFocus = iota
	focusKey
)

// Model is the bubbletea model over one planning session.
type Model struct {
	app     *app.App
	log     *logging.Logger
	timeout time.Duration

	schedule textarea.Model
	apiKey   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	focus    inputFocus

	pending   *app.Request
	cancelGen context.CancelFunc

	day           int
	cursor        int
	form          *sessionForm
	confirmDelete bool

	status string
	err    error

	width  int
	height int
}

// New creates the model for a started session.
func New(a *app.App, logger *logging.Logger, timeout time.Duration) *Model {
	v := a.View()

	ta := textarea.New()
	ta.Placeholder = "Classes and times, work shifts, commute, deadlines, exam dates, energy levels..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(v.Input)
	ta.Focus()

	key := textinput.New()
	key.Prompt = "API key: "
	key.Placeholder = "sk-..."
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.SetValue(v.APIKey)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		app:      a,
		log:      logger,
		timeout:  timeout,
		schedule: ta,
		apiKey:   key,
		spinner:  sp,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
	}
	m.resize(defaultWidth, defaultHeight)
	if v.Plan != nil {
		m.status = "This week's plan is saved. Press ctrl+r to open it."
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.schedule.SetWidth(w - 4)
	m.schedule.SetHeight(max(h-chromeHeight-2, 3))
	m.apiKey.Width = w - 14
	m.viewport.Width = w
	m.viewport.Height = max(h-chromeHeight, 3)
	m.refresh()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case generatedMsg:
		m.finishGeneration(msg)
		return m, nil

	case spinner.TickMsg:
		if m.app.View().State.Page() != app.PageLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopGeneration()
			return m, tea.Quit
		}
		switch m.app.View().State.Page() {
		case app.PageInput:
			return m.updateInput(msg)
		case app.PageLoading:
			return m.updateLoading(msg)
		case app.PageResult:
			return m.updateResult(msg)
		}
	}

	if m.app.View().State.Page() == app.PageInput {
		return m.forwardInput(msg)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focus == focusSchedule {
			m.focus = focusKey
			m.schedule.Blur()
			return m, m.apiKey.Focus()
		}
		m.focus = focusSchedule
		m.apiKey.Blur()
		return m, m.schedule.Focus()
	case "ctrl+l":
		m.app.LoadExample()
		m.schedule.SetValue(m.app.View().Input)
		m.status = "Example schedule loaded."
		m.err = nil
		return m, nil
	case "ctrl+r":
		m.setErr(m.app.ResumePlan())
		if m.err == nil {
			m.status = ""
			m.day, m.cursor = 0, 0
		}
		m.refresh()
		return m, nil
	case "ctrl+g":
		return m, m.startGeneration()
	}
	return m.forwardInput(msg)
}

func (m *Model) forwardInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusKey {
		m.apiKey, cmd = m.apiKey.Update(msg)
	} else {
		m.schedule, cmd = m.schedule.Update(msg)
	}
	return m, cmd
}

// startGeneration saves the key, claims the request slot and runs the
// generator off the event loop.
func (m *Model) startGeneration() tea.Cmd {
	v := m.app.View()
	if key := m.apiKey.Value(); key != v.APIKey {
		if err := m.app.SetAPIKey(key); err != nil {
			m.log.Printf("Warning: failed to save API key: %v", err)
		}
	}
	m.app.SetInput(m.schedule.Value())

	req, err := m.app.BeginGeneration()
	if err != nil {
		m.setErr(err)
		return nil
	}
	m.err = nil
	m.status = ""
	m.pending = req

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.cancelGen = cancel
	a := m.app
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := a.Execute(ctx, req)
		return generatedMsg{req: req, res: res, err: err}
	})
}

func (m *Model) finishGeneration(msg generatedMsg) {
	err := m.app.CompleteGeneration(msg.req, msg.res, msg.err)
	if errors.Is(err, app.ErrStaleRequest) {
		return
	}
	m.stopGeneration()
	if err != nil {
		m.log.Printf("Generation failed (%s): %v", planner.KindOf(err), err)
		m.setErr(err)
		return
	}
	m.log.Printf("Generated plan with %d sessions", msg.res.Plan.SessionCount())
	m.day, m.cursor = 0, 0
	m.status = "Plan ready!"
	m.err = nil
	m.refresh()
}

func (m *Model) stopGeneration() {
	if m.cancelGen != nil {
		m.cancelGen()
		m.cancelGen = nil
	}
	m.pending = nil
}

func (m *Model) updateLoading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "esc" || m.pending == nil {
		return m, nil
	}
	req := m.pending
	m.stopGeneration()
	_ = m.app.CancelGeneration(req)
	m.err = nil
	m.status = "Generation cancelled."
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.confirmDelete {
		return m.updateConfirm(msg)
	}

	v := m.app.View()
	editing := v.State.Editing()
	key := msg.String()

	switch key {
	case "left", "h":
		m.day = (m.day + plan.DaysPerWeek - 1) % plan.DaysPerWeek
		m.cursor = 0
	case "right", "l":
		m.day = (m.day + 1) % plan.DaysPerWeek
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(v.Plan.Days[m.day].Sessions)-1 {
			m.cursor++
		}
	case "b":
		m.setErr(m.app.GoToInput())
		m.schedule.SetValue(m.app.View().Input)
		m.focus = focusSchedule
		m.apiKey.Blur()
		m.status = ""
		return m, m.schedule.Focus()
	case "q":
		return m, tea.Quit
	case "ctrl+d":
		m.setErr(m.app.DiscardPlan())
		if m.err == nil {
			m.status = "This week's plan was deleted."
		}
		m.focus = focusSchedule
		return m, m.schedule.Focus()
	}

	if !editing {
		if key == "e" {
			m.setErr(m.app.ToggleEdit())
		}
		m.refresh()
		return m, nil
	}

	switch key {
	case "enter":
		if err := m.app.OpenSession(m.day, m.cursor); err != nil {
			m.setErr(err)
			break
		}
		m.openForm()
	case "a":
		idx, err := m.app.AddSession(m.day)
		if err != nil {
			m.setErr(err)
			break
		}
		m.cursor = idx
		m.openForm()
	case "d":
		if len(v.Plan.Days[m.day].Sessions) > 0 {
			m.confirmDelete = true
		}
	case "s":
		m.setErr(m.app.Save())
		if m.err == nil {
			m.status = "Changes saved!"
		}
	case "x":
		m.setErr(m.app.DiscardEdits())
		if m.err == nil {
			m.status = "Changes discarded."
			m.clampCursor()
		}
	}
	m.refresh()
	return m, nil
}

func (m *Model) openForm() {
	s, err := editor.New(m.app.View().Plan).Session(m.day, m.cursor)
	if err != nil {
		m.setErr(err)
		return
	}
	m.form = newSessionForm(m.day, m.cursor, s)
	m.err = nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.app.CloseSession()
		m.refresh()
		return m, nil
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "enter":
		current, err := editor.New(m.app.View().Plan).Session(m.form.day, m.form.session)
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		if err := m.form.apply(m.app, current); err != nil {
			m.setErr(err)
			return m, nil
		}
		m.form = nil
		m.err = nil
		m.app.CloseSession()
		m.refresh()
		return m, nil
	}
	return m, m.form.update(msg)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmDelete = false
	if msg.String() == "y" {
		m.setErr(m.app.DeleteSession(m.day, m.cursor))
		m.clampCursor()
	}
	m.refresh()
	return m, nil
}

func (m *Model) clampCursor() {
	p := m.app.View().Plan
	if p == nil {
		m.cursor = 0
		return
	}
	n := len(p.Days[m.day].Sessions)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) setErr(err error) {
	m.err = err
	if err != nil {
		m.status = ""
	}
}

// errText turns an error into the message shown to the user.
func errText(err error) string {
	var genErr *planner.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Remediation()
	}
	return err.Error()
}
