package trend

import (
	"strings"
	"testing"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/progress"
)

func series(values ...float64) []progress.TrendPoint {
	end := calendar.Date(2024, 3, 31)
	points := make([]progress.TrendPoint, len(values))
	for i, v := range values {
		points[i] = progress.TrendPoint{Day: end.AddDays(i - len(values) + 1), Percentage: v}
	}
	return points
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		points []progress.TrendPoint
		want   string
	}{
		{"empty", nil, ""},
		{"three days", series(100, 0, 50), "3-day average 50%, latest 50%"},
		{"rounds", series(33.3333, 66.6667), "2-day average 50%, latest 67%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.points); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAxis(t *testing.T) {
	axis := Axis(series(make([]float64, 30)...))
	if !strings.HasPrefix(strings.TrimSpace(axis), "2024-03-02") || !strings.HasSuffix(strings.TrimSpace(axis), "2024-03-31") {
		t.Errorf("unexpected axis: %q", axis)
	}

	short := Axis(series(10, 20))
	if !strings.Contains(short, "…") {
		t.Errorf("expected a narrow axis to be elided, got %q", short)
	}
}

func TestRender(t *testing.T) {
	if got := Sparkline(nil, 4); !strings.Contains(got, "no data") {
		t.Errorf("expected placeholder for an empty series, got %q", got)
	}
	out := Render(series(0, 50, 100), 3)
	if !strings.Contains(out, "latest 100%") {
		t.Errorf("render missing summary:\n%s", out)
	}
}
