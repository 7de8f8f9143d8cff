package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/errors"
)

type HabitType string

const (
	HabitDaily   HabitType = "daily"
	HabitMorning HabitType = "morning"
	HabitWeekly  HabitType = "weekly"
)

// HabitTypes lists the habit types in dashboard order.
var HabitTypes = []HabitType{HabitMorning, HabitDaily, HabitWeekly}

// ParseHabitType parses a habit type token, ignoring case.
func ParseHabitType(s string) (HabitType, error) {
	switch t := HabitType(strings.ToLower(strings.TrimSpace(s))); t {
	case HabitDaily, HabitMorning, HabitWeekly:
		return t, nil
	default:
		return "", errors.InvalidInputf("unknown habit type %q (use daily, morning or weekly)", s)
	}
}

// Title returns the display name of t, or t unchanged if it is not a known type.
func (t HabitType) Title() string {
	switch t {
	case HabitDaily:
		return "Daily"
	case HabitMorning:
		return "Morning"
	case HabitWeekly:
		return "Weekly"
	default:
		return string(t)
	}
}

// Valid reports whether t is one of the known habit types.
func (t HabitType) Valid() bool {
	return t == HabitDaily || t == HabitMorning || t == HabitWeekly
}

// weekdayTokens is indexed by time.Weekday.
var weekdayTokens = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var weekdayAliases = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// WeekdayToken returns the lower-case token ("monday") for wd.
func WeekdayToken(wd time.Weekday) string {
	return weekdayTokens[wd%7]
}

// ParseWeekday parses a weekday token or its common abbreviation, ignoring case.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.InvalidInputf("unknown weekday %q", s)
	}
	return wd, nil
}

// WeekdaySet is a set of weekdays, one bit per time.Weekday.
// It serializes as a JSON array of tokens in Monday-first order.
type WeekdaySet uint8

// NewWeekdaySet returns a set containing days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// ParseWeekdaySet parses a list of tokens. Each element may itself be a
// comma-separated list, so both ["mon","wed"] and ["mon,wed"] work.
func ParseWeekdaySet(tokens []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, tok := range tokens {
		for _, part := range strings.Split(tok, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			wd, err := ParseWeekday(part)
			if err != nil {
				return 0, err
			}
			s = s.With(wd)
		}
	}
	return s, nil
}

// With returns a copy of s that also contains wd.
func (s WeekdaySet) With(wd time.Weekday) WeekdaySet {
	return s | 1<<uint(wd%7)
}

// Contains reports whether wd is in the set.
func (s WeekdaySet) Contains(wd time.Weekday) bool {
	return s&(1<<uint(wd%7)) != 0
}

// IsEmpty reports whether the set has no days.
func (s WeekdaySet) IsEmpty() bool {
	return s&0x7f == 0
}

// Len returns the number of days in the set.
func (s WeekdaySet) Len() int {
	n := 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if s.Contains(wd) {
			n++
		}
	}
	return n
}

// Weekdays returns the members Monday first.
func (s WeekdaySet) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		if s.Contains(wd) {
			days = append(days, wd)
		}
	}
	return days
}

// Tokens returns the member tokens Monday first.
func (s WeekdaySet) Tokens() []string {
	days := s.Weekdays()
	tokens := make([]string, len(days))
	for i, d := range days {
		tokens[i] = WeekdayToken(d)
	}
	return tokens
}

func (s WeekdaySet) String() string {
	return strings.Join(s.Tokens(), ",")
}

// MarshalJSON encodes the set as an array of weekday tokens.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Tokens())
}

// UnmarshalJSON decodes an array of weekday tokens. Looser stored shapes are
// handled by the storage codec, not here.
func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var tokens []string
	if err := json.Unmarshal(b, &tokens); err != nil {
		return errors.InvalidInputf("frequency must be an array of weekday names")
	}
	parsed, err := ParseWeekdaySet(tokens)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Completions maps ISO day keys to true. A missing key means not completed;
// keys are never stored with a false value.
type Completions map[string]bool

// Has reports whether day has a completion.
func (c Completions) Has(day calendar.Day) bool {
	return c[day.Key()]
}

// Toggle adds the completion for day if absent, removes it otherwise, and
// reports whether day is completed afterwards. c must be non-nil.
func (c Completions) Toggle(day calendar.Day) bool {
	key := day.Key()
	if c[key] {
		delete(c, key)
		return false
	}
	c[key] = true
	return true
}

// Clone returns an independent copy. Cloning nil yields an empty map.
func (c Completions) Clone() Completions {
	out := make(Completions, len(c))
	for k, v := range c {
		if v {
			out[k] = true
		}
	}
	return out
}

// Keys returns the completed day keys in ascending order.
func (c Completions) Keys() []string {
	keys := make([]string, 0, len(c))
	for k, v := range c {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Habit is a recurring behavior tracked by completion days.
type Habit struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Name        string      `json:"name"`
	Type        HabitType   `json:"type"`
	Frequency   WeekdaySet  `json:"frequency"`
	CreatedAt   time.Time   `json:"created_at"`
	Completions Completions `json:"completions"`
}

// Clone returns a copy whose completions map is not shared with h.
func (h Habit) Clone() Habit {
	h.Completions = h.Completions.Clone()
	return h
}

func (h Habit) String() string {
	if h.Type == HabitWeekly {
		return fmt.Sprintf("%s (%s: %s)", h.Name, h.Type, h.Frequency)
	}
	return fmt.Sprintf("%s (%s)", h.Name, h.Type)
}
