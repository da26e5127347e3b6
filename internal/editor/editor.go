// Package editor applies in-place changes to a weekly plan.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"ai-study-planner/internal/plan"
)

var (
	// ErrAddressOutOfRange is returned when a day or session index does not
	// exist. The plan is left untouched.
	ErrAddressOutOfRange = errors.New("session address out of range")
	ErrUnknownField      = errors.New("unknown session field")
	ErrInvalidValue      = errors.New("invalid field value")
	ErrNoPlan            = errors.New("no plan loaded")
)

// Field names a mutable session attribute.
type Field string

const (
	FieldTitle Field = "title"
	FieldTime  Field = "time"
	FieldType  Field = "type"
	FieldIcon  Field = "icon"
	FieldFocus Field = "focus"
)

// Fields lists the editable fields in form order.
var Fields = []Field{FieldTitle, FieldTime, FieldType, FieldIcon, FieldFocus}

// ParseField maps a field name to a Field.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// NewSession returns the session AddSession appends.
func NewSession() plan.Session {
	return plan.Session{
		Time:  plan.MustTimeRange("09:00-10:00"),
		Type:  plan.TypeStudy,
		Title: "New Session",
		Icon:  "📚",
		Focus: "Add details here",
	}
}

// Editor mutates a plan in place.
type Editor struct {
	plan *plan.Plan
}

// New returns an Editor over p.
func New(p *plan.Plan) *Editor {
	return &Editor{plan: p}
}

// Plan returns the plan being edited.
func (e *Editor) Plan() *plan.Plan {
	return e.plan
}

// Session returns a copy of the addressed session.
func (e *Editor) Session(day, session int) (plan.Session, error) {
	s, err := e.session(day, session)
	if err != nil {
		return plan.Session{}, err
	}
	return *s, nil
}

// UpdateField replaces one field of one session. Title, time and type are
// checked so the plan stays valid; icon and focus take any text.
func (e *Editor) UpdateField(day, session int, field Field, value string) error {
	s, err := e.session(day, session)
	if err != nil {
		return err
	}

	switch field {
	case FieldTitle:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrInvalidValue)
		}
		s.Title = value
	case FieldIcon:
		s.Icon = value
	case FieldFocus:
		s.Focus = value
	case FieldTime:
		r, err := plan.ParseTimeRange(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		s.Time = r
	case FieldType:
		t, err := plan.ParseSessionType(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		s.Type = t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// DeleteSession removes a session; later sessions shift down by one.
func (e *Editor) DeleteSession(day, session int) error {
	if _, err := e.session(day, session); err != nil {
		return err
	}
	d := &e.plan.Days[day]
	d.Sessions = append(d.Sessions[:session], d.Sessions[session+1:]...)
	return nil
}

// AddSession appends a default session to a day and returns its index.
func (e *Editor) AddSession(day int) (int, error) {
	if e.plan == nil {
		return 0, ErrNoPlan
	}
	if day < 0 || day >= len(e.plan.Days) {
		return 0, fmt.Errorf("%w: day %d", ErrAddressOutOfRange, day)
	}
	d := &e.plan.Days[day]
	d.Sessions = append(d.Sessions, NewSession())
	return len(d.Sessions) - 1, nil
}

func (e *Editor) session(day, session int) (*plan.Session, error) {
	if e.plan == nil {
		return nil, ErrNoPlan
	}
	if day < 0 || day >= len(e.plan.Days) {
		return nil, fmt.Errorf("%w: day %d", ErrAddressOutOfRange, day)
	}
	sessions := e.plan.Days[day].Sessions
	if session < 0 || session >= len(sessions) {
		return nil, fmt.Errorf("%w: day %d session %d", ErrAddressOutOfRange, day, session)
	}
	return &sessions[session], nil
}
