package analytics

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators ("3,850,809").
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent renders a share with one decimal ("34.6%").
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatPercentChange renders a change with one decimal and a plus sign for
// growth ("+21.0%", "-20.0%", "0.0%").
func FormatPercentChange(p float64) string {
	r := math.Round(p*10) / 10
	switch {
	case r > 0:
		return fmt.Sprintf("+%.1f%%", r)
	case r == 0:
		// no "-0.0%"
		return "0.0%"
	default:
		return fmt.Sprintf("%.1f%%", r)
	}
}

// FormatArea renders an area in km² with one decimal.
func FormatArea(km2 float64) string {
	return fmt.Sprintf("%.1f km²", km2)
}

// ProgressionLabel describes a series' overall change, for example
// "+21.0% in 3 years". Series with fewer than two points have no label.
func ProgressionLabel(ts TrendSeries) string {
	if !ts.HasProgression() {
		return ""
	}
	return fmt.Sprintf("%s in %d years", FormatPercentChange(ts.PercentChange), ts.Points)
}

// TrendArrow is a one-character indicator of a direction.
func TrendArrow(t Trend) string {
	switch t {
	case TrendIncreasing:
		return "▲"
	case TrendDecreasing:
		return "▼"
	default:
		return "–"
	}
}
