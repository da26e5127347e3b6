package plan

import (
	"fmt"
	"strings"
	"time"
)

// Weekday numbers the days of a plan week, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of Day entries every plan carries.
const DaysPerWeek = 7

var weekdayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayOf converts a calendar weekday to its position in a Monday-first week.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// ParseWeekday accepts full names and three letter abbreviations in any case.
func ParseWeekday(s string) (Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		lower := strings.ToLower(name)
		if v == lower || (len(v) == 3 && strings.HasPrefix(lower, v)) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Valid reports whether d is Monday..Sunday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalText writes the full English name.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(weekdayNames[d]), nil
}

// UnmarshalText parses a weekday name.
func (d *Weekday) UnmarshalText(text []byte) error {
	v, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
