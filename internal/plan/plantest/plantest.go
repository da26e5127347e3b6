// Package plantest provides plan fixtures shared by tests across packages.
package plantest

import (
	"encoding/json"

	"ai-study-planner/internal/plan"
)

// Sample returns a valid plan. Monday holds three sessions (A, B, C) and
// Tuesday holds three as well; the other days hold one each.
func Sample() *plan.Plan {
	p := &plan.Plan{
		Urgent: []plan.Task{
			{Title: "Care plan assignment", Due: "Thursday 23:59", Priority: plan.PriorityHigh},
		},
		Stats: plan.Stats{
			TotalHours: 12,
			Subjects: []plan.Subject{
				{Name: "Anatomy", Hours: 7, Color: "#3B82F6"},
				{Name: "Pharmacology", Hours: 5, Color: "#8B5CF6"},
			},
		},
		Tips: []string{"• Review notes on the train"},
	}
	labels := [plan.DaysPerWeek]string{"Oct 7", "Oct 8", "Oct 9", "Oct 10", "Oct 11", "Oct 12", "Oct 13"}
	for i := 0; i < plan.DaysPerWeek; i++ {
		p.Days = append(p.Days, plan.Day{
			Day:  plan.Weekday(i),
			Date: labels[i],
			Sessions: []plan.Session{
				{Time: plan.MustTimeRange("06:00-07:00"), Type: plan.TypeRest, Title: "Morning Routine", Icon: "☕"},
			},
		})
	}
	p.Days[0].Sessions = []plan.Session{
		{Time: plan.MustTimeRange("06:00-07:00"), Type: plan.TypeRest, Title: "A", Icon: "☕"},
		{Time: plan.MustTimeRange("07:00-07:45"), Type: plan.TypeCommute, Title: "B", Icon: "🚂", Focus: "Review notes"},
		{Time: plan.MustTimeRange("09:00-12:00"), Type: plan.TypeClass, Title: "C", Icon: "🏥"},
	}
	p.Days[1].Sessions = []plan.Session{
		{Time: plan.MustTimeRange("06:00-07:00"), Type: plan.TypeRest, Title: "Breakfast", Icon: "🍽️"},
		{Time: plan.MustTimeRange("07:00-09:00"), Type: plan.TypeStudy, Title: "Anatomy review", Icon: "📚", Focus: "Chapters 3-4"},
		{Time: plan.MustTimeRange("10:00-12:00"), Type: plan.TypeClass, Title: "Pharmacology lecture", Icon: "💊"},
	}
	return p
}

// SampleJSON is Sample encoded the way the generation service answers.
func SampleJSON() string {
	b, err := json.Marshal(Sample())
	if err != nil {
		panic(err)
	}
	return string(b)
}
