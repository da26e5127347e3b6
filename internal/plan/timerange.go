package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	// EndOfDay is 24:00, accepted only as the end of a range.
	EndOfDay = 24 * minutesPerHour
)

// ErrInvalidTimeRange is returned for intervals that do not parse or do not
// move forward within a single day.
var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange is a same-day interval in minutes since midnight. On the wire it
// is the string "HH:MM-HH:MM".
type TimeRange struct {
	Start int
	End   int
}

// NewTimeRange builds a range from clock values, validating it.
func NewTimeRange(startHour, startMin, endHour, endMin int) (TimeRange, error) {
	r := TimeRange{Start: startHour*minutesPerHour + startMin, End: endHour*minutesPerHour + endMin}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// MustTimeRange parses s and panics on failure. Intended for constants and tests.
func MustTimeRange(s string) TimeRange {
	r, err := ParseTimeRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseTimeRange parses "HH:MM-HH:MM". Single digit hours, spaces around the
// separator and en/em dashes are tolerated.
func ParseTimeRange(s string) (TimeRange, error) {
	v := strings.NewReplacer("–", "-", "—", "-", " ", "").Replace(strings.TrimSpace(s))
	parts := strings.Split(v, "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: %q is not HH:MM-HH:MM", ErrInvalidTimeRange, s)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: start of %q: %v", ErrInvalidTimeRange, s, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: end of %q: %v", ErrInvalidTimeRange, s, err)
	}
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, fmt.Errorf("%w (%q)", err, s)
	}
	return r, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m >= minutesPerHour || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return h*minutesPerHour + m, nil
}

// Validate checks both bounds are clock values and End is strictly after Start.
func (r TimeRange) Validate() error {
	if r.Start < 0 || r.Start >= EndOfDay {
		return fmt.Errorf("%w: start %d out of range", ErrInvalidTimeRange, r.Start)
	}
	if r.End <= 0 || r.End > EndOfDay {
		return fmt.Errorf("%w: end %d out of range", ErrInvalidTimeRange, r.End)
	}
	if r.End <= r.Start {
		return fmt.Errorf("%w: end must be after start", ErrInvalidTimeRange)
	}
	return nil
}

// Minutes is the length of the interval.
func (r TimeRange) Minutes() int {
	return r.End - r.Start
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", formatClock(r.Start), formatClock(r.End))
}

func formatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/minutesPerHour, m%minutesPerHour)
}

// MarshalText writes the canonical "HH:MM-HH:MM" form.
func (r TimeRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses and validates the wire form.
func (r *TimeRange) UnmarshalText(text []byte) error {
	v, err := ParseTimeRange(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
