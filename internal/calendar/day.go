// Package calendar provides a civil-date type used for habit completion keys,
// week and month boundaries, and timezone-aware "today" lookups.
package calendar

import (
	"strings"
	"time"

	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
)

// Day is a calendar date with no time of day. The zero value is not a valid
// day; construct one with Date, ParseDay, FromTime or Today.
type Day struct {
	t time.Time // always midnight UTC
}

// Date returns the day for the given year, month and day of month.
// Out-of-range values are normalized the way time.Date normalizes them.
func Date(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses an ISO YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Day{}, errors.InvalidInputf("malformed date %q (expected YYYY-MM-DD)", s)
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

// FromTime returns the calendar day of t in t's own location.
// A zero time is treated as a missing timestamp.
func FromTime(t time.Time) (Day, error) {
	if t.IsZero() {
		return Day{}, errors.InvalidInputf("missing timestamp")
	}
	y, m, d := t.Date()
	return Date(y, m, d), nil
}

// Today returns the current day in loc. A nil loc means time.Local.
func Today(loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := time.Now().In(loc).Date()
	return Date(y, m, d)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// Key returns the ISO YYYY-MM-DD form used as a completion key.
func (d Day) Key() string {
	return d.t.Format(constants.DateFormat)
}

func (d Day) String() string {
	return d.Key()
}

// Weekday returns the day of the week.
func (d Day) Weekday() time.Weekday {
	return d.t.Weekday()
}

// AddDays returns the day n days after d (before, if n is negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// StartOfWeek returns the Monday on or before d.
func (d Day) StartOfWeek() Day {
	offset := (int(d.t.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Week returns the seven days, Monday first, of the week containing d.
func (d Day) Week() [constants.DaysPerWeek]Day {
	var days [constants.DaysPerWeek]Day
	start := d.StartOfWeek()
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

// StartOfMonth returns the first day of d's month.
func (d Day) StartOfMonth() Day {
	return Date(d.t.Year(), d.t.Month(), 1)
}

// MonthDays returns every day of d's calendar month in order.
func (d Day) MonthDays() []Day {
	start := d.StartOfMonth()
	days := make([]Day, 0, 31)
	for cur := start; cur.t.Month() == start.t.Month(); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

// Before reports whether d is earlier than o.
func (d Day) Before(o Day) bool {
	return d.t.Before(o.t)
}

// After reports whether d is later than o.
func (d Day) After(o Day) bool {
	return d.t.After(o.t)
}

// Equal reports whether d and o are the same day.
func (d Day) Equal(o Day) bool {
	return d.t.Equal(o.t)
}

// Time returns midnight of d in UTC.
func (d Day) Time() time.Time {
	return d.t
}

// In returns midnight of d in loc.
func (d Day) In(loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
}

// Range returns the n consecutive days ending at end (inclusive), oldest first.
func Range(end Day, n int) []Day {
	if n <= 0 {
		return nil
	}
	days := make([]Day, n)
	for i := 0; i < n; i++ {
		days[i] = end.AddDays(i - (n - 1))
	}
	return days
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string yields
// the zero Day.
func (d *Day) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
