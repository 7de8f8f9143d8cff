package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/models"
)

// TimeLayout is the fixed-width UTC layout used for stored timestamps, so
// that text ordering matches chronological ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. Any RFC 3339 form is accepted.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// EncodeFrequency stores a weekday set as a JSON array of tokens.
func EncodeFrequency(s models.WeekdaySet) string {
	b, _ := json.Marshal(s.Tokens())
	return string(b)
}

// DecodeFrequency normalizes a stored frequency into a WeekdaySet. Stored
// values may be a JSON array of tokens, an object mapping indices to tokens
// ({"0":"monday"}), an object mapping tokens to booleans ({"monday":true}),
// or a comma-separated string. Empty and null values decode to an empty set.
// Token case is ignored.
func DecodeFrequency(raw string) (models.WeekdaySet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return 0, nil
	}

	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err == nil {
		return models.ParseWeekdaySet(tokens)
	}

	var byIndex map[string]string
	if err := json.Unmarshal([]byte(raw), &byIndex); err == nil {
		keys := make([]string, 0, len(byIndex))
		for k := range byIndex {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tokens = append(tokens, byIndex[k])
		}
		return models.ParseWeekdaySet(tokens)
	}

	var flags map[string]bool
	if err := json.Unmarshal([]byte(raw), &flags); err == nil {
		for tok, on := range flags {
			if on {
				tokens = append(tokens, tok)
			}
		}
		return models.ParseWeekdaySet(tokens)
	}

	var csv string
	if err := json.Unmarshal([]byte(raw), &csv); err == nil {
		return models.ParseWeekdaySet([]string{csv})
	}

	return 0, errors.InvalidInputf("frequency must be a list of weekdays, got %s", raw)
}

// EncodeCompletions stores completions as a JSON object of day keys.
func EncodeCompletions(c models.Completions) string {
	if len(c) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(c.Clone())
	return string(b)
}

// DecodeCompletions reads a stored completion map. False entries and keys
// that are not ISO dates are dropped. A legacy JSON array of day keys is
// also accepted.
func DecodeCompletions(raw string) (models.Completions, error) {
	out := models.Completions{}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return out, nil
	}

	var m map[string]bool
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		var keys []string
		if errList := json.Unmarshal([]byte(raw), &keys); errList != nil {
			return nil, errors.InvalidInputf("completions must be an object of dates: %v", err)
		}
		m = make(map[string]bool, len(keys))
		for _, k := range keys {
			m[k] = true
		}
	}

	for k, v := range m {
		if !v {
			continue
		}
		day, err := calendar.ParseDay(k)
		if err != nil {
			logger.Warn("Dropping malformed completion key", "key", k)
			continue
		}
		out[day.Key()] = true
	}
	return out, nil
}

// EncodeSubtasks stores subtasks as a JSON array.
func EncodeSubtasks(subtasks []models.Subtask) string {
	if len(subtasks) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(subtasks)
	return string(b)
}

// DecodeSubtasks reads a stored subtask array.
func DecodeSubtasks(raw string) ([]models.Subtask, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []models.Subtask{}, nil
	}
	var subtasks []models.Subtask
	if err := json.Unmarshal([]byte(raw), &subtasks); err != nil {
		return nil, fmt.Errorf("failed to decode subtasks: %w", err)
	}
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}
	return subtasks, nil
}
