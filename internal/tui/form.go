package tui

import (
	"fmt"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/plan"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// sessionForm edits the open session, one text input per field.
type sessionForm struct {
	day, session int
	inputs       []textinput.Model
	focus        int
}

func newSessionForm(day, session int, s plan.Session) *sessionForm {
	values := map[editor.Field]string{
		editor.FieldTitle: s.Title,
		editor.FieldTime:  s.Time.String(),
		editor.FieldType:  string(s.Type),
		editor.FieldIcon:  s.Icon,
		editor.FieldFocus: s.Focus,
	}

	f := &sessionForm{day: day, session: session}
	for _, field := range editor.Fields {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-6s ", field)
		ti.CharLimit = 120
		ti.Width = 48
		ti.SetValue(values[field])
		switch field {
		case editor.FieldType:
			types := make([]string, len(plan.SessionTypes))
			for i, t := range plan.SessionTypes {
				types[i] = string(t)
			}
			ti.ShowSuggestions = true
			ti.SetSuggestions(types)
		case editor.FieldIcon:
			ti.ShowSuggestions = true
			ti.SetSuggestions(plan.SuggestedIcons)
		case editor.FieldTime:
			ti.Placeholder = "09:00-10:30"
		}
		f.inputs = append(f.inputs, ti)
	}
	f.inputs[0].Focus()
	return f
}

func (f *sessionForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *sessionForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// apply writes every changed field to the session. It stops at the first
// rejected value and moves focus there.
func (f *sessionForm) apply(a *app.App, current plan.Session) error {
	before := newSessionForm(f.day, f.session, current)
	for i, field := range editor.Fields {
		v := f.inputs[i].Value()
		if v == before.inputs[i].Value() {
			continue
		}
		if err := a.UpdateField(f.day, f.session, field, v); err != nil {
			f.inputs[f.focus].Blur()
			f.focus = i
			f.inputs[i].Focus()
			return err
		}
	}
	return nil
}

func (f *sessionForm) view() string {
	var out string
	for i := range f.inputs {
		out += f.inputs[i].View() + "\n"
	}
	return out
}
