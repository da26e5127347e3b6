package planner

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"ai-study-planner/internal/plan"
)

//go:embed system_prompt.md
var systemPrompt string

//go:embed user_prompt.md
var userPrompt string

var (
	systemTmpl = template.Must(template.New("system").Parse(systemPrompt))
	userTmpl   = template.Must(template.New("user").Parse(userPrompt))
)

type systemPromptData struct {
	ExampleDate  string
	SessionTypes string
	Icons        string
	Colors       string
}

type userPromptData struct {
	Weekday    string
	Date       string
	MondayDate string
	Schedule   string
}

func buildPrompts(schedule string, now time.Time) (system, user string, err error) {
	types := make([]string, len(plan.SessionTypes))
	for i, t := range plan.SessionTypes {
		types[i] = fmt.Sprintf("%q", string(t))
	}

	system, err = render(systemTmpl, systemPromptData{
		ExampleDate:  plan.DateLabel(plan.MondayOf(now)),
		SessionTypes: strings.Join(types, ", "),
		Icons:        strings.Join(plan.SuggestedIcons, ""),
		Colors:       strings.Join(plan.SubjectPalette, ", "),
	})
	if err != nil {
		return "", "", err
	}

	user, err = render(userTmpl, userPromptData{
		Weekday:    now.Weekday().String(),
		Date:       plan.DateLabel(now),
		MondayDate: plan.DateLabel(plan.MondayOf(now)),
		Schedule:   strings.TrimSpace(schedule),
	})
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
