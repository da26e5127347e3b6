package plan

import (
	"fmt"
	"time"
)

// DateLabelLayout formats the short day label shown next to a weekday, e.g. "Oct 7".
const DateLabelLayout = "Jan 2"

// MondayOf returns midnight of the Monday starting the week that contains t,
// in t's location. Sunday belongs to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	offset := int(WeekdayOf(t.Weekday()))
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// CurrentWeekKey identifies the Monday-starting week containing now. The
// month is zero based: the key only has to be stable, and existing stores
// already hold keys in this form.
func CurrentWeekKey(now time.Time) string {
	monday := MondayOf(now)
	return fmt.Sprintf("week-%d-%d-%d", monday.Year(), int(monday.Month())-1, monday.Day())
}

// DateLabel is the short label of t, e.g. "Oct 7".
func DateLabel(t time.Time) string {
	return t.Format(DateLabelLayout)
}

// WeekDateLabels returns the labels of Monday..Sunday of now's week.
func WeekDateLabels(now time.Time) [DaysPerWeek]string {
	var labels [DaysPerWeek]string
	monday := MondayOf(now)
	for i := range labels {
		labels[i] = DateLabel(monday.AddDate(0, 0, i))
	}
	return labels
}
