package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/progress"
)

// Bar renders pct as a fixed-width text progress bar.
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// Percent formats pct the way every view shows it: rounded, no decimals.
func Percent(pct float64) string {
	return fmt.Sprintf("%3d%%", progress.Round(pct))
}

func Check(done bool) string {
	if done {
		return "✓"
	}
	return "·"
}

// FormatHabit renders a habit with its schedule and a short id.
func FormatHabit(h models.Habit) string {
	return fmt.Sprintf("%s  %s", ShortID(h.ID), h.String())
}

// ShortID returns the first eight characters of id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// MatchID finds the single id in ids that starts with prefix, so commands
// accept the short ids printed by list.
func MatchID(ids []string, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errors.InvalidInputf("id is required")
	}
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", errors.InvalidInputf("id %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return prefix, nil
	}
	return match, nil
}
