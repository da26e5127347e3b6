package plan

import (
	"fmt"
	"strings"
)

// Priority ranks an urgent task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// UnmarshalText accepts any casing of a known priority.
func (p *Priority) UnmarshalText(text []byte) error {
	v := Priority(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("unknown priority %q", string(text))
	}
	*p = v
	return nil
}

// SessionType classifies what a session is spent on.
type SessionType string

const (
	TypeClass   SessionType = "class"
	TypeStudy   SessionType = "study"
	TypeWork    SessionType = "work"
	TypeRest    SessionType = "rest"
	TypeCommute SessionType = "commute"
	TypeFree    SessionType = "free"
)

// SessionTypes lists every allowed session type in display order.
var SessionTypes = []SessionType{TypeClass, TypeStudy, TypeWork, TypeRest, TypeCommute, TypeFree}

var sessionTypeColors = map[SessionType]string{
	TypeClass:   "#3B82F6",
	TypeStudy:   "#8B5CF6",
	TypeWork:    "#1F2937",
	TypeRest:    "#10B981",
	TypeCommute: "#F97316",
	TypeFree:    "#6B7280",
}

var sessionTypeIcons = map[SessionType]string{
	TypeClass:   "🏥",
	TypeStudy:   "📚",
	TypeWork:    "🏨",
	TypeRest:    "☕",
	TypeCommute: "🚂",
	TypeFree:    "🎯",
}

// SuggestedIcons are offered by edit forms next to the free-text icon field.
var SuggestedIcons = []string{"📚", "💻", "🏥", "💊", "🧪", "🩺", "🎯", "✏️", "🗄️", "🏨", "💤", "🚂", "☕", "🍽️"}

// ParseSessionType parses a session type, ignoring case and surrounding space.
func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sessionTypeColors[t]; !ok {
		return "", fmt.Errorf("unknown session type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the six allowed types.
func (t SessionType) Valid() bool {
	_, ok := sessionTypeColors[t]
	return ok
}

// Color is the display colour of the type. Unknown types render grey.
func (t SessionType) Color() string {
	if c, ok := sessionTypeColors[t]; ok {
		return c
	}
	return sessionTypeColors[TypeFree]
}

// DefaultIcon is used when the generation service leaves a session without an icon.
func (t SessionType) DefaultIcon() string {
	if i, ok := sessionTypeIcons[t]; ok {
		return i
	}
	return "📌"
}

// UnmarshalText rejects anything outside the allowed types.
func (t *SessionType) UnmarshalText(text []byte) error {
	v, err := ParseSessionType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Task is an urgent item surfaced above the weekly view.
type Task struct {
	Title    string   `json:"title"`
	Due      string   `json:"due"`
	Priority Priority `json:"priority"`
}

// Session is one scheduled block of a day.
type Session struct {
	Time  TimeRange   `json:"time"`
	Type  SessionType `json:"type"`
	Title string      `json:"title"`
	Icon  string      `json:"icon"`
	Focus string      `json:"focus,omitempty"`
}

// Day holds the sessions of one weekday.
type Day struct {
	Day      Weekday   `json:"day"`
	Date     string    `json:"date"`
	Sessions []Session `json:"sessions"`
}

// Subject is an entry of the study distribution.
type Subject struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
	Color string  `json:"color"`
}

// Stats aggregates planned study time. Subject hours are advisory and need
// not add up to TotalHours.
type Stats struct {
	TotalHours float64   `json:"totalHours"`
	Subjects   []Subject `json:"subjects"`
}

// Plan is the weekly schedule: seven days Monday through Sunday.
type Plan struct {
	Urgent []Task   `json:"urgent"`
	Days   []Day    `json:"days"`
	Stats  Stats    `json:"stats"`
	Tips   []string `json:"tips"`
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := &Plan{
		Urgent: append([]Task{}, p.Urgent...),
		Days:   make([]Day, len(p.Days)),
		Stats: Stats{
			TotalHours: p.Stats.TotalHours,
			Subjects:   append([]Subject{}, p.Stats.Subjects...),
		},
		Tips: append([]string{}, p.Tips...),
	}
	for i, d := range p.Days {
		c.Days[i] = Day{
			Day:      d.Day,
			Date:     d.Date,
			Sessions: append([]Session{}, d.Sessions...),
		}
	}
	return c
}

// SessionCount returns the total number of sessions across the week.
func (p *Plan) SessionCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Sessions)
	}
	return n
}
