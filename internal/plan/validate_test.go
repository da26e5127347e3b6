package plan_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/plan/plantest"
)

func TestValidate(t *testing.T) {
	t.Run("Sample", func(t *testing.T) {
		if err := plan.Validate(plantest.Sample()); err != nil {
			t.Fatalf("Expected sample plan to be valid, got %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(p *plan.Plan)
		want   string
	}{
		{"NoDays", func(p *plan.Plan) { p.Days = nil }, "days: missing or empty"},
		{"SixDays", func(p *plan.Plan) { p.Days = p.Days[:6] }, "expected 7 entries"},
		{"OutOfOrder", func(p *plan.Plan) { p.Days[0], p.Days[1] = p.Days[1], p.Days[0] }, "days[0].day: expected Monday"},
		{"BadType", func(p *plan.Plan) { p.Days[2].Sessions[0].Type = "party" }, "days[2].sessions[0].type"},
		{"ZeroTime", func(p *plan.Plan) { p.Days[3].Sessions[0].Time = plan.TimeRange{} }, "days[3].sessions[0].time"},
		{"EmptyTitle", func(p *plan.Plan) { p.Days[0].Sessions[1].Title = "" }, "days[0].sessions[1].title"},
		{"NegativeTotal", func(p *plan.Plan) { p.Stats.TotalHours = -1 }, "stats.totalHours"},
		{"NegativeSubject", func(p *plan.Plan) { p.Stats.Subjects[0].Hours = -2 }, "stats.subjects[0].hours"},
		{"BadColour", func(p *plan.Plan) { p.Stats.Subjects[1].Color = "blue" }, "stats.subjects[1].color"},
		{"BadPriority", func(p *plan.Plan) { p.Urgent[0].Priority = "asap" }, "urgent[0].priority"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := plantest.Sample()
			tc.mutate(p)
			err := plan.Validate(p)
			if !errors.Is(err, plan.ErrInvalidPlan) {
				t.Fatalf("Expected ErrInvalidPlan, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error to mention %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	p := plantest.Sample()
	p.Urgent = nil
	p.Tips = []string{"  keep going ", "", "   "}
	p.Days[4].Date = ""
	p.Days[4].Sessions[0].Icon = ""
	p.Days[5].Sessions = nil
	p.Stats.Subjects[1].Color = ""

	plan.Normalize(p, time.Date(2024, time.October, 9, 12, 0, 0, 0, time.UTC))

	if p.Urgent == nil || len(p.Urgent) != 0 {
		t.Errorf("Expected empty urgent list, got %#v", p.Urgent)
	}
	if len(p.Tips) != 1 || p.Tips[0] != "keep going" {
		t.Errorf("Expected trimmed tips, got %#v", p.Tips)
	}
	if p.Days[4].Date != "Oct 11" {
		t.Errorf("Expected Friday label Oct 11, got %q", p.Days[4].Date)
	}
	if p.Days[4].Sessions[0].Icon != plan.TypeRest.DefaultIcon() {
		t.Errorf("Expected default rest icon, got %q", p.Days[4].Sessions[0].Icon)
	}
	if p.Days[5].Sessions == nil {
		t.Error("Expected nil sessions to become an empty slice")
	}
	if p.Stats.Subjects[1].Color != plan.SubjectPalette[1] {
		t.Errorf("Expected palette colour, got %q", p.Stats.Subjects[1].Color)
	}
	if err := plan.Validate(p); err != nil {
		t.Errorf("Expected normalized plan to validate, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := plantest.Sample()
	c := p.Clone()
	c.Days[0].Sessions[0].Title = "changed"
	c.Days[0].Sessions = append(c.Days[0].Sessions, plan.Session{Title: "extra"})
	c.Tips[0] = "changed"
	if p.Days[0].Sessions[0].Title != "A" || len(p.Days[0].Sessions) != 3 || p.Tips[0] == "changed" {
		t.Error("Expected clone mutations not to leak into the original")
	}
}

func TestFormatText(t *testing.T) {
	out := plan.FormatText(plantest.Sample())
	for _, want := range []string{"12 hours", "=== MONDAY, Oct 7 ===", "07:00-07:45  🚂 B [commute]", "> Review notes", "Care plan assignment"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}
