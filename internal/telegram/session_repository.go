package telegram

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/storage"
)

// pendingField is a field edit waiting for the user's next text message.
type pendingField struct {
	Day     int
	Session int
	Field   editor.Field
}

// Session is one chat's planning session.
type Session struct {
	App     *app.App
	WeekKey string

	mu      sync.Mutex
	pending *pendingField
}

// Await records that the next text message is the value for a field.
func (s *Session) Await(f pendingField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &f
}

// TakeAwaited returns and clears the awaited field.
func (s *Session) TakeAwaited() (pendingField, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return pendingField{}, false
	}
	f := *s.pending
	s.pending = nil
	return f, true
}

// SessionDeleted keeps the awaited field on the same session after a delete
// on its day. Awaiting the deleted session itself is cancelled.
func (s *Session) SessionDeleted(day, session int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.Day != day {
		return
	}
	switch {
	case s.pending.Session == session:
		s.pending = nil
	case s.pending.Session > session:
		s.pending.Session--
	}
}

// SessionRepository keeps one Session per chat over a shared store. A
// session is restarted when the calendar week changes so the weekly reset
// applies to long-running processes too.
type SessionRepository struct {
	kv        storage.KV
	generator app.PlanGenerator
	opts      []app.Option
	now       func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(kv storage.KV, generator app.PlanGenerator, now func() time.Time, opts ...app.Option) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{
		kv:        kv,
		generator: generator,
		opts:      append(opts, app.WithClock(now)),
		now:       now,
		sessions:  make(map[int64]*Session),
	}
}

func chatStore(kv storage.KV, chatID int64) storage.KV {
	return storage.Prefixed(kv, "chat:"+strconv.FormatInt(chatID, 10))
}

// Get returns the chat's session, starting a new one on first contact or
// when the week has changed.
func (r *SessionRepository) Get(chatID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	week := plan.CurrentWeekKey(r.now())
	if s, ok := r.sessions[chatID]; ok && s.WeekKey == week {
		return s, nil
	}

	a := app.New(planner.NewPlanStore(chatStore(r.kv, chatID)), r.generator, r.opts...)
	if _, err := a.Start(); err != nil {
		return nil, fmt.Errorf("failed to start session for chat %d: %w", chatID, err)
	}
	s := &Session{App: a, WeekKey: week}
	r.sessions[chatID] = s
	return s, nil
}

// SharedPlan returns the stored plan of a chat and its week key. Plans of
// a past week are not returned.
func (r *SessionRepository) SharedPlan(owner string) (*plan.Plan, string, error) {
	chatID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return nil, "", nil
	}
	kv := chatStore(r.kv, chatID)
	week, found, err := kv.Get(planner.KeyWeek)
	if err != nil {
		return nil, "", err
	}
	if !found || week != plan.CurrentWeekKey(r.now()) {
		return nil, "", nil
	}
	p, err := planner.NewPlanStore(kv).Load()
	if err != nil {
		return nil, "", err
	}
	return p, week, nil
}
