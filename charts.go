package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"berlinstats/internal/analytics"
)

var (
	colorAccent   = lipgloss.Color("62")
	colorMuted    = lipgloss.Color("241")
	colorEmpty    = lipgloss.Color("240")
	colorUp       = lipgloss.Color("82")
	colorDown     = lipgloss.Color("196")
	colorFlat     = lipgloss.Color("226")
	seriesColors  = []lipgloss.Color{"33", "201", "214"}
	sparkBlocks   = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	emptyBarStyle = lipgloss.NewStyle().Foreground(colorEmpty)
)

// BarChart creates a horizontal bar chart with the value text after the bar
func BarChart(label string, value, max float64, width int, color lipgloss.Color, valueText string) string {
	if max <= 0 {
		max = value
	}

	filledWidth := 0
	if max > 0 {
		filledWidth = int(math.Round(float64(width) * value / max))
	}
	if filledWidth < 0 {
		filledWidth = 0
	}
	if filledWidth > width {
		filledWidth = width
	}

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(color)

	return fmt.Sprintf("%s %s%s %s",
		label,
		barStyle.Render(filled),
		emptyBarStyle.Render(empty),
		valueText,
	)
}

// ShareBar shows a percentage of the population, for example the foreign share
func ShareBar(label string, percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	var color lipgloss.Color
	switch {
	case percentage >= 30:
		color = lipgloss.Color("201")
	case percentage >= 20:
		color = lipgloss.Color("33")
	default:
		color = lipgloss.Color("45")
	}

	return BarChart(label, percentage, 100, width, color, analytics.FormatPercent(percentage))
}

// Sparkline draws a series with block characters. Heights come from the
// same scaling the web sparkline uses, so both agree on the shape.
func Sparkline(values []float64) string {
	points := analytics.SparklinePath(values)
	if len(points) == 0 {
		return ""
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, p := range points {
		// y grows downwards
		height := (analytics.SparklineBox - p.Y) / analytics.SparklineBox
		b.WriteRune(sparkBlocks[int(math.Round(height*float64(top)))])
	}
	return b.String()
}

// TrendColor is the color used for a direction
func TrendColor(t analytics.Trend) lipgloss.Color {
	switch t {
	case analytics.TrendIncreasing:
		return colorUp
	case analytics.TrendDecreasing:
		return colorDown
	default:
		return colorFlat
	}
}

// DeltaBadge renders a percent change with its arrow, colored by direction
func DeltaBadge(percent float64) string {
	trend := analytics.ClassifyTrend(percent)
	style := lipgloss.NewStyle().Foreground(TrendColor(trend)).Bold(true)
	return style.Render(analytics.TrendArrow(trend) + " " + analytics.FormatPercentChange(percent))
}

// MetricCard shows a headline figure and its change against the previous year
func MetricCard(title, value string, change *float64) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent)

	valueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230"))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 2).
		Width(24)

	content := titleStyle.Render(title) + "\n" + valueStyle.Render(value)
	if change != nil {
		content += "\n" + DeltaBadge(*change)
	} else {
		content += "\n" + lipgloss.NewStyle().Foreground(colorMuted).Render("no previous year")
	}

	return cardStyle.Render(content)
}

// ComparisonBars renders one metric group as bars scaled to its largest value
func ComparisonBars(group analytics.MetricGroup, width int, format func(float64) string) string {
	max := group.Max()

	labelWidth := 0
	for _, v := range group.Values {
		if w := lipgloss.Width(v.District); w > labelWidth {
			labelWidth = w
		}
	}
	labelStyle := lipgloss.NewStyle().Width(labelWidth)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(group.Metric))
	b.WriteString("\n")
	for i, v := range group.Values {
		color := seriesColors[i%len(seriesColors)]
		b.WriteString(BarChart(labelStyle.Render(v.District), v.Value, max, width, color, format(v.Value)))
		b.WriteString("\n")
	}
	return b.String()
}

// DistributionBar shows the communities' shares as one segmented bar.
// Shares are relative to the whole population, so the rest stays empty.
func DistributionBar(communities []analytics.Community, width int) string {
	if len(communities) == 0 {
		return "No data"
	}

	var bar strings.Builder
	remaining := width
	for i, c := range communities {
		segWidth := int(math.Round(c.LatestPercentage / 100 * float64(width)))
		if segWidth < 0 {
			segWidth = 0
		}
		if segWidth > remaining {
			segWidth = remaining
		}
		style := lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
		bar.WriteString(style.Render(strings.Repeat("█", segWidth)))
		remaining -= segWidth
	}
	bar.WriteString(emptyBarStyle.Render(strings.Repeat("░", remaining)))

	return bar.String()
}
