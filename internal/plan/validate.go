package plan

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidPlan wraps every structural problem reported by Validate.
var ErrInvalidPlan = errors.New("invalid plan")

// SubjectPalette is cycled through for subjects that arrive without a colour.
var SubjectPalette = []string{"#3B82F6", "#8B5CF6", "#10B981", "#F97316", "#EF4444", "#EC4899"}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Normalize repairs cosmetic gaps left by the generation service: it trims
// text, replaces absent sequences with empty ones, fills missing icons with
// the type's default glyph, missing subject colours from the palette and
// missing date labels from the week containing now. It never touches the
// fields Validate is responsible for.
func Normalize(p *Plan, now time.Time) {
	if p.Urgent == nil {
		p.Urgent = []Task{}
	}
	for i := range p.Urgent {
		p.Urgent[i].Title = strings.TrimSpace(p.Urgent[i].Title)
		p.Urgent[i].Due = strings.TrimSpace(p.Urgent[i].Due)
	}

	labels := WeekDateLabels(now)
	for i := range p.Days {
		d := &p.Days[i]
		d.Date = strings.TrimSpace(d.Date)
		if d.Date == "" && d.Day.Valid() {
			d.Date = labels[d.Day]
		}
		if d.Sessions == nil {
			d.Sessions = []Session{}
		}
		for j := range d.Sessions {
			s := &d.Sessions[j]
			s.Title = strings.TrimSpace(s.Title)
			s.Icon = strings.TrimSpace(s.Icon)
			s.Focus = strings.TrimSpace(s.Focus)
			if s.Icon == "" {
				s.Icon = s.Type.DefaultIcon()
			}
		}
	}

	if p.Stats.Subjects == nil {
		p.Stats.Subjects = []Subject{}
	}
	for i := range p.Stats.Subjects {
		s := &p.Stats.Subjects[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Color = strings.TrimSpace(s.Color)
		if s.Color == "" {
			s.Color = SubjectPalette[i%len(SubjectPalette)]
		}
	}

	if p.Tips == nil {
		p.Tips = []string{}
	}
	tips := p.Tips[:0]
	for _, t := range p.Tips {
		if t = strings.TrimSpace(t); t != "" {
			tips = append(tips, t)
		}
	}
	p.Tips = tips
}

// Validate checks every invariant of the data model and reports all
// violations at once. The returned error wraps ErrInvalidPlan.
func Validate(p *Plan) error {
	if p == nil {
		return fmt.Errorf("%w: plan is missing", ErrInvalidPlan)
	}
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(p.Days) == 0 {
		add("days: missing or empty")
	} else if len(p.Days) != DaysPerWeek {
		add("days: expected %d entries, got %d", DaysPerWeek, len(p.Days))
	}
	for i, d := range p.Days {
		if i < DaysPerWeek && d.Day != Weekday(i) {
			add("days[%d].day: expected %s, got %s", i, Weekday(i), d.Day)
		}
		for j, s := range d.Sessions {
			path := fmt.Sprintf("days[%d].sessions[%d]", i, j)
			if err := s.Time.Validate(); err != nil {
				add("%s.time: %v", path, err)
			}
			if !s.Type.Valid() {
				add("%s.type: %q is not an allowed type", path, s.Type)
			}
			if s.Title == "" {
				add("%s.title: empty", path)
			}
		}
	}

	for i, t := range p.Urgent {
		if t.Title == "" {
			add("urgent[%d].title: empty", i)
		}
		if !t.Priority.Valid() {
			add("urgent[%d].priority: %q is not high, medium or low", i, t.Priority)
		}
	}

	if p.Stats.TotalHours < 0 {
		add("stats.totalHours: negative")
	}
	for i, s := range p.Stats.Subjects {
		if s.Name == "" {
			add("stats.subjects[%d].name: empty", i)
		}
		if s.Hours < 0 {
			add("stats.subjects[%d].hours: negative", i)
		}
		if !hexColor.MatchString(s.Color) {
			add("stats.subjects[%d].color: %q is not a hex colour", i, s.Color)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return nil
}
