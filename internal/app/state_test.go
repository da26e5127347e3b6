package app

import (
	"errors"
	"testing"
)

func TestPageStateTransitions(t *testing.T) {
	var s PageState
	if s.Page() != PageInput {
		t.Fatalf("Expected initial state input, got %s", s)
	}

	steps := []struct {
		name string
		do   func(*PageState) error
		want string
	}{
		{"generate", (*PageState).StartLoading, "loading"},
		{"fail", (*PageState).Fail, "input"},
		{"generateAgain", (*PageState).StartLoading, "loading"},
		{"succeed", (*PageState).Succeed, "result{view}"},
		{"toggleEdit", (*PageState).ToggleEdit, "result{edit}"},
		{"save", (*PageState).LeaveEdit, "result{view}"},
		{"toggleEditAgain", (*PageState).ToggleEdit, "result{edit}"},
		{"goToInput", (*PageState).GoToInput, "input"},
		{"resume", (*PageState).Resume, "result{view}"},
	}
	for _, step := range steps {
		if err := step.do(&s); err != nil {
			t.Fatalf("%s: unexpected error %v", step.name, err)
		}
		if s.String() != step.want {
			t.Fatalf("%s: expected %s, got %s", step.name, step.want, s)
		}
	}
}

func TestPageStateRejectsIllegalTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []func(*PageState) error
		do    func(*PageState) error
	}{
		{name: "SucceedFromInput", do: (*PageState).Succeed},
		{name: "ToggleEditFromInput", do: (*PageState).ToggleEdit},
		{name: "SaveFromView", setup: []func(*PageState) error{(*PageState).StartLoading, (*PageState).Succeed}, do: (*PageState).LeaveEdit},
		{name: "GenerateWhileLoading", setup: []func(*PageState) error{(*PageState).StartLoading}, do: (*PageState).StartLoading},
		{name: "BackWhileLoading", setup: []func(*PageState) error{(*PageState).StartLoading}, do: (*PageState).GoToInput},
		{name: "ToggleEditTwice", setup: []func(*PageState) error{(*PageState).StartLoading, (*PageState).Succeed, (*PageState).ToggleEdit}, do: (*PageState).ToggleEdit},
		{name: "OpenInView", setup: []func(*PageState) error{(*PageState).StartLoading, (*PageState).Succeed}, do: func(s *PageState) error { return s.Open(SessionAddress{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s PageState
			for _, step := range tt.setup {
				if err := step(&s); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
			}
			before := s.String()
			if err := tt.do(&s); !errors.Is(err, ErrIllegalTransition) {
				t.Fatalf("Expected ErrIllegalTransition, got %v", err)
			}
			if s.String() != before {
				t.Errorf("Expected state %s to be unchanged, got %s", before, s)
			}
		})
	}
}

func TestPageStateOpenSession(t *testing.T) {
	var s PageState
	s.StartLoading()
	s.Succeed()
	s.ToggleEdit()

	addr := SessionAddress{Day: 2, Session: 1}
	for i := 0; i < 2; i++ {
		if err := s.Open(addr); err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
	}
	if got, ok := s.OpenSession(); !ok || got != addr {
		t.Errorf("Expected open session %+v, got %+v %v", addr, got, ok)
	}

	s.Close()
	if _, ok := s.OpenSession(); ok {
		t.Error("Expected no open session after Close")
	}
	if !s.Editing() {
		t.Error("Expected to stay in edit mode after Close")
	}

	s.Open(addr)
	s.LeaveEdit()
	if _, ok := s.OpenSession(); ok {
		t.Error("Expected save to clear the open session")
	}
}
