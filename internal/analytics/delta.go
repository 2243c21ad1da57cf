package analytics

// TrendDeadBand is the half-width, in percent, of the band around zero
// change that is classified as flat. Every trend classification uses it.
const TrendDeadBand = 0.5

// Trend is the direction of a series or a delta.
type Trend int

const (
	TrendFlat Trend = iota
	TrendIncreasing
	TrendDecreasing
)

func (t Trend) String() string {
	switch t {
	case TrendIncreasing:
		return "increasing"
	case TrendDecreasing:
		return "decreasing"
	default:
		return "flat"
	}
}

// PercentChange returns ((current - previous) / previous) * 100.
// A zero previous value yields 0 instead of an infinity. No rounding.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// SnapshotDelta is PercentChange over optional counts; a nil side yields 0.
func SnapshotDelta(current, previous *int) float64 {
	if current == nil || previous == nil {
		return 0
	}
	return PercentChange(float64(*current), float64(*previous))
}

// ClassifyTrend maps a percent change onto a direction using TrendDeadBand.
func ClassifyTrend(percent float64) Trend {
	switch {
	case percent > TrendDeadBand:
		return TrendIncreasing
	case percent < -TrendDeadBand:
		return TrendDecreasing
	default:
		return TrendFlat
	}
}

// InfrastructureChange is the year-over-year change of the three
// religious-building counts of a city.
type InfrastructureChange struct {
	Mosques    float64 `json:"mosques"`
	Churches   float64 `json:"churches"`
	Synagogues float64 `json:"synagogues"`
	Population float64 `json:"population"`
}

// InfrastructureDeltas compares the current and previous snapshot of a
// summary. All deltas are zero unless both snapshots are present.
func InfrastructureDeltas(s CitySummary) InfrastructureChange {
	if s.Current == nil || s.Previous == nil {
		return InfrastructureChange{}
	}
	cur, prev := s.Current, s.Previous
	return InfrastructureChange{
		Mosques:    PercentChange(float64(cur.MosquesCount), float64(prev.MosquesCount)),
		Churches:   PercentChange(float64(cur.ChurchesCount), float64(prev.ChurchesCount)),
		Synagogues: PercentChange(float64(cur.SynagoguesCount), float64(prev.SynagoguesCount)),
		Population: PercentChange(float64(cur.TotalPopulation), float64(prev.TotalPopulation)),
	}
}
