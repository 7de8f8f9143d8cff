// Package progress computes habit completion state and aggregate progress
// from an immutable snapshot of habits and a reference day.
//
// Every function here is pure: inputs are never mutated and no state is kept
// between calls. Dates arrive as calendar.Day values, so malformed dates are
// rejected before they reach the engine.
package progress

import (
	"math"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
)

// DefaultTrendWindow is the number of days in a trend series when the caller
// does not ask for a specific window.
const DefaultTrendWindow = constants.DefaultTrendDays

// MaxTrendWindow is the longest trend series TrendSeries will build.
const MaxTrendWindow = constants.MaxTrendWindow

// Mode selects which habits count towards a group percentage.
type Mode string

const (
	// DailyView counts daily and morning habits plus weekly habits due on
	// the reference day, completed on that day.
	DailyView Mode = "daily"
	// WeeklyOverall counts every weekly habit, completed at any point in the
	// reference week.
	WeeklyOverall Mode = "weekly"
)

// ParseMode parses a mode name as used by the CLI and API.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case DailyView, WeeklyOverall:
		return Mode(s), nil
	default:
		return "", errors.InvalidInputf("unknown progress mode %q", s)
	}
}

// WeekCount is the number of completed days in a Monday-start week.
type WeekCount struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// MonthCount compares completed scheduled days against scheduled days in a month.
type MonthCount struct {
	Completed int `json:"completed"`
	Expected  int `json:"expected"`
}

// TrendPoint is the DailyView percentage for one day.
type TrendPoint struct {
	Day        calendar.Day `json:"date"`
	Percentage float64      `json:"percentage"`
}

// IsDueOnDate reports whether h applies on day. Daily and morning habits are
// always due; weekly habits are due on their frequency days only.
func IsDueOnDate(h models.Habit, day calendar.Day) bool {
	switch h.Type {
	case models.HabitDaily, models.HabitMorning:
		return true
	case models.HabitWeekly:
		return h.Frequency.Contains(day.Weekday())
	default:
		return false
	}
}

// IsCompletedOnDate reports whether h has a completion for day.
func IsCompletedOnDate(h models.Habit, day calendar.Day) bool {
	return h.Completions.Has(day)
}

// IsCompletedInWeek reports whether h has a completion on any day of the
// Monday-start week containing ref.
func IsCompletedInWeek(h models.Habit, ref calendar.Day) bool {
	for _, d := range ref.Week() {
		if h.Completions.Has(d) {
			return true
		}
	}
	return false
}

// counts returns the applicable and completed totals for mode.
func counts(habits []models.Habit, ref calendar.Day, mode Mode) (applicable, completed int) {
	for _, h := range habits {
		switch mode {
		case DailyView:
			if !IsDueOnDate(h, ref) {
				continue
			}
			applicable++
			if IsCompletedOnDate(h, ref) {
				completed++
			}
		case WeeklyOverall:
			if h.Type != models.HabitWeekly {
				continue
			}
			applicable++
			if IsCompletedInWeek(h, ref) {
				completed++
			}
		}
	}
	return applicable, completed
}

func percent(completed, applicable int) float64 {
	if applicable == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(applicable)
}

// GroupProgress returns the exact completion percentage of habits for mode.
// An empty applicable set yields 0.
func GroupProgress(habits []models.Habit, ref calendar.Day, mode Mode) (float64, error) {
	if mode != DailyView && mode != WeeklyOverall {
		return 0, errors.InvalidInputf("unknown progress mode %q", mode)
	}
	applicable, completed := counts(habits, ref, mode)
	return percent(completed, applicable), nil
}

// WeeklyCompletionCount counts completions across the Monday-start week containing ref.
func WeeklyCompletionCount(h models.Habit, ref calendar.Day) WeekCount {
	wc := WeekCount{Total: constants.DaysPerWeek}
	for _, d := range ref.Week() {
		if h.Completions.Has(d) {
			wc.Completed++
		}
	}
	return wc
}

// MonthlyExpectedVsCompleted walks the calendar month containing ref once and
// counts the frequency days and the frequency days that were completed.
// Habits with an empty frequency yield a zero count.
func MonthlyExpectedVsCompleted(h models.Habit, ref calendar.Day) MonthCount {
	var mc MonthCount
	if h.Frequency.IsEmpty() {
		return mc
	}
	for _, d := range ref.MonthDays() {
		if !h.Frequency.Contains(d.Weekday()) {
			continue
		}
		mc.Expected++
		if h.Completions.Has(d) {
			mc.Completed++
		}
	}
	return mc
}

// TrendSeries returns one DailyView percentage per day for the windowDays
// days ending at end, oldest first. The window must be between 1 and
// MaxTrendWindow days.
func TrendSeries(habits []models.Habit, windowDays int, end calendar.Day) ([]TrendPoint, error) {
	if windowDays <= 0 {
		return nil, errors.InvalidInputf("trend window must be positive, got %d", windowDays)
	}
	if windowDays > MaxTrendWindow {
		return nil, errors.InvalidInputf("trend window is at most %d days, got %d", MaxTrendWindow, windowDays)
	}
	if end.IsZero() {
		return nil, errors.InvalidInputf("trend needs an end date")
	}
	days := calendar.Range(end, windowDays)
	points := make([]TrendPoint, len(days))
	for i, d := range days {
		applicable, completed := counts(habits, d, DailyView)
		points[i] = TrendPoint{Day: d, Percentage: percent(completed, applicable)}
	}
	return points, nil
}

// Group returns the habits of type t, preserving order.
func Group(habits []models.Habit, t models.HabitType) []models.Habit {
	var out []models.Habit
	for _, h := range habits {
		if h.Type == t {
			out = append(out, h)
		}
	}
	return out
}

// Summary holds the dashboard percentages for each habit section.
type Summary struct {
	Morning float64 `json:"morning"`
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Overall float64 `json:"overall"`
}

// Summarize computes every section percentage for ref. Morning and daily use
// DailyView over their group, weekly uses WeeklyOverall, and overall is
// DailyView over the whole snapshot.
func Summarize(habits []models.Habit, ref calendar.Day) Summary {
	ma, mc := counts(Group(habits, models.HabitMorning), ref, DailyView)
	da, dc := counts(Group(habits, models.HabitDaily), ref, DailyView)
	wa, wc := counts(habits, ref, WeeklyOverall)
	oa, oc := counts(habits, ref, DailyView)
	return Summary{
		Morning: percent(mc, ma),
		Daily:   percent(dc, da),
		Weekly:  percent(wc, wa),
		Overall: percent(oc, oa),
	}
}

// Round rounds a percentage to the nearest whole number for display.
func Round(pct float64) int {
	return int(math.Round(pct))
}
