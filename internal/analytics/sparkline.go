package analytics

import (
	"strconv"
	"strings"
)

// SparklineBox is the side length of the logical coordinate box.
const SparklineBox = 100.0

// Point is a coordinate inside the sparkline box. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SparklinePath scales values into the box: x spreads the indices evenly
// across the width and y is min-max scaled with the maximum at the top.
// A flat series uses a range of 1 and sits on the bottom edge.
func SparklinePath(values []float64) []Point {
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	n := len(values)
	points := make([]Point, n)
	for i, v := range values {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1) * SparklineBox
		}
		points[i] = Point{
			X: x,
			Y: SparklineBox - (v-min)/span*SparklineBox,
		}
	}
	return points
}

// SVGPath renders points as an SVG path ("M x,y L x,y ...").
func SVGPath(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatCoord(p.X) + "," + formatCoord(p.Y)
	}
	return "M " + strings.Join(parts, " L ")
}

// SeriesTrend classifies a raw series by comparing its first and last value.
func SeriesTrend(values []float64) Trend {
	if len(values) < 2 {
		return TrendFlat
	}
	return ClassifyTrend(PercentChange(values[len(values)-1], values[0]))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
