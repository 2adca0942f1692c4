package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// DayFormat is the calendar-day layout used throughout the service.
const DayFormat = "2006-01-02"

// ErrInvalidInterval is returned when an interval's end precedes its start.
var ErrInvalidInterval = errors.New("interval end is before its start")

// DurationMinutes returns b minus a in whole minutes. Fails when b is before
// a; a zero-length interval is fine.
func DurationMinutes(a, b time.Time) (int, error) {
	if b.Before(a) {
		return 0, fmt.Errorf("%w: %s < %s", ErrInvalidInterval,
			b.Format(time.RFC3339), a.Format(time.RFC3339))
	}
	return int(b.Sub(a).Minutes()), nil
}

// SameCalendarDay reports whether ts falls on the given calendar day in the
// organization's timezone. A check-in near midnight must land on the local
// day, not the UTC one.
func SameCalendarDay(ts time.Time, day string, loc *time.Location) bool {
	return ts.In(loc).Format(DayFormat) == day
}

// DayString returns ts's calendar day in loc.
func DayString(ts time.Time, loc *time.Location) string {
	return ts.In(loc).Format(DayFormat)
}

// ParseDay parses a "YYYY-MM-DD" calendar day.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DayFormat, day)
}

// AtTimeOfDay materializes a local time of day ("15:04") on a calendar day
// as an absolute instant in loc.
func AtTimeOfDay(day, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.Parse(DayFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", clock, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}

// FormatClock renders an instant as a local 24h clock reading. Display only.
func FormatClock(ts time.Time, loc *time.Location) string {
	return ts.In(loc).Format("15:04")
}
