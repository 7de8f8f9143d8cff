package calendar

import (
	"fmt"
	"time"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// TodayInTimezone returns today's Day in the named timezone, so that "today"
// follows the configured timezone rather than the host's.
func TodayInTimezone(timezone string) (Day, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Day{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Today(loc), nil
}

// ResolveDay parses s when given, otherwise returns today in timezone.
// CLI flags and API query parameters both default to today this way.
func ResolveDay(s, timezone string) (Day, error) {
	if s == "" {
		return TodayInTimezone(timezone)
	}
	return ParseDay(s)
}
