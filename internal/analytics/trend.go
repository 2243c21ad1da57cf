package analytics

// StepChange is the change of one point against the point before it.
type StepChange struct {
	FromYear int     `json:"fromYear"`
	ToYear   int     `json:"toYear"`
	Percent  float64 `json:"percent"`
}

// TrendSeries summarizes a population series in the order it was given.
// An empty series has every field zeroed and Empty set.
type TrendSeries struct {
	Points        int          `json:"points"`
	First         int          `json:"first"`
	Last          int          `json:"last"`
	Min           int          `json:"min"`
	Max           int          `json:"max"`
	PercentChange float64      `json:"percentChange"`
	Steps         []StepChange `json:"steps"`
	Empty         bool         `json:"empty"`
}

// NewTrendSeries computes the summary of points. The input is not sorted.
func NewTrendSeries(points []CommunityProgressionPoint) TrendSeries {
	if len(points) == 0 {
		return TrendSeries{Empty: true, Steps: []StepChange{}}
	}

	ts := TrendSeries{
		Points: len(points),
		First:  points[0].Population,
		Last:   points[len(points)-1].Population,
		Min:    points[0].Population,
		Max:    points[0].Population,
		Steps:  make([]StepChange, 0, len(points)-1),
	}

	for i, p := range points {
		if p.Population < ts.Min {
			ts.Min = p.Population
		}
		if p.Population > ts.Max {
			ts.Max = p.Population
		}
		if i == 0 {
			continue
		}
		prev := points[i-1]
		ts.Steps = append(ts.Steps, StepChange{
			FromYear: prev.Year,
			ToYear:   p.Year,
			Percent:  PercentChange(float64(p.Population), float64(prev.Population)),
		})
	}

	ts.PercentChange = PercentChange(float64(ts.Last), float64(ts.First))
	return ts
}

// Direction classifies the overall change with TrendDeadBand.
func (ts TrendSeries) Direction() Trend {
	return ClassifyTrend(ts.PercentChange)
}

// HasProgression reports whether there are enough points to show a change.
func (ts TrendSeries) HasProgression() bool {
	return ts.Points >= 2
}
