// Package trend renders the daily progress series as an ntcharts sparkline.
package trend

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/orbitflow/internal/progress"
)

var (
	lineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Sparkline draws one column per point, scaled to 0..100.
func Sparkline(points []progress.TrendPoint, height int) string {
	if len(points) == 0 {
		return labelStyle.Render("no data")
	}
	if height < 1 {
		height = 1
	}

	spark := sparkline.New(len(points), height, sparkline.WithMaxValue(100), sparkline.WithStyle(lineStyle))
	for _, p := range points {
		spark.Push(p.Percentage)
	}
	spark.Draw()
	return spark.View()
}

// Axis returns the first and last dates under a sparkline of len(points)
// columns.
func Axis(points []progress.TrendPoint) string {
	if len(points) == 0 {
		return ""
	}
	first, last := points[0].Day.Key(), points[len(points)-1].Day.Key()
	gap := len(points) - len(first) - len(last)
	if gap < 1 {
		return labelStyle.Render(first + " … " + last)
	}
	return labelStyle.Render(first + strings.Repeat(" ", gap) + last)
}

// Summary reports the average and latest value of the series.
func Summary(points []progress.TrendPoint) string {
	if len(points) == 0 {
		return ""
	}
	var sum float64
	for _, p := range points {
		sum += p.Percentage
	}
	avg := sum / float64(len(points))
	latest := points[len(points)-1].Percentage
	return fmt.Sprintf("%d-day average %d%%, latest %d%%", len(points), progress.Round(avg), progress.Round(latest))
}

// Render combines the sparkline, axis and summary.
func Render(points []progress.TrendPoint, height int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		Sparkline(points, height),
		Axis(points),
		Summary(points),
	)
}
