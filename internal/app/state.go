package app

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when an action is not allowed in the
// current page or mode. The state is left unchanged.
var ErrIllegalTransition = errors.New("illegal state transition")

// Page is the top-level screen.
type Page int

const (
	PageInput Page = iota
	PageLoading
	PageResult
)

func (p Page) String() string {
	switch p {
	case PageInput:
		return "input"
	case PageLoading:
		return "loading"
	case PageResult:
		return "result"
	default:
		return fmt.Sprintf("Page(%d)", int(p))
	}
}

// Mode is the sub-state of PageResult.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// SessionAddress points at one session of the plan.
type SessionAddress struct {
	Day     int
	Session int
}

// PageState is the page/mode state machine. The zero value is the initial
// Input state.
type PageState struct {
	page Page
	mode Mode
	open *SessionAddress
}

// Page returns the current page.
func (s PageState) Page() Page { return s.page }

// Mode returns the result mode. It is only meaningful on PageResult.
func (s PageState) Mode() Mode { return s.mode }

// Editing reports whether the state is Result{Edit}.
func (s PageState) Editing() bool {
	return s.page == PageResult && s.mode == ModeEdit
}

// OpenSession returns the address of the session open for editing.
func (s PageState) OpenSession() (SessionAddress, bool) {
	if s.open == nil {
		return SessionAddress{}, false
	}
	return *s.open, true
}

func (s PageState) String() string {
	if s.page != PageResult {
		return s.page.String()
	}
	return fmt.Sprintf("%s{%s}", s.page, s.mode)
}

func illegal(s PageState, action string) error {
	return fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, s)
}

// StartLoading moves Input to Loading.
func (s *PageState) StartLoading() error {
	if s.page != PageInput {
		return illegal(*s, "generate")
	}
	s.page = PageLoading
	return nil
}

// Succeed moves Loading to Result{View}.
func (s *PageState) Succeed() error {
	if s.page != PageLoading {
		return illegal(*s, "succeed")
	}
	*s = PageState{page: PageResult, mode: ModeView}
	return nil
}

// Fail moves Loading back to Input.
func (s *PageState) Fail() error {
	if s.page != PageLoading {
		return illegal(*s, "fail")
	}
	*s = PageState{page: PageInput}
	return nil
}

// ToggleEdit moves Result{View} to Result{Edit}.
func (s *PageState) ToggleEdit() error {
	if s.page != PageResult || s.mode != ModeView {
		return illegal(*s, "toggleEdit")
	}
	s.mode = ModeEdit
	s.open = nil
	return nil
}

// LeaveEdit moves Result{Edit} to Result{View}, closing any open session.
// It backs both save and discard.
func (s *PageState) LeaveEdit() error {
	if !s.Editing() {
		return illegal(*s, "leaveEdit")
	}
	s.mode = ModeView
	s.open = nil
	return nil
}

// GoToInput moves Result{*} to Input, dropping the edit flag.
func (s *PageState) GoToInput() error {
	if s.page != PageResult {
		return illegal(*s, "goToInput")
	}
	*s = PageState{page: PageInput}
	return nil
}

// Resume moves Input to Result{View}.
func (s *PageState) Resume() error {
	if s.page != PageInput {
		return illegal(*s, "resume")
	}
	*s = PageState{page: PageResult, mode: ModeView}
	return nil
}

// Open marks a session as open for editing. Opening the same address twice
// is a no-op.
func (s *PageState) Open(addr SessionAddress) error {
	if !s.Editing() {
		return illegal(*s, "openSession")
	}
	s.open = &addr
	return nil
}

// Close clears the open session.
func (s *PageState) Close() {
	s.open = nil
}

// Reset returns to the initial state.
func (s *PageState) Reset() {
	*s = PageState{}
}
