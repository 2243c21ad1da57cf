package analytics

// Metric group names shown in a district comparison.
const (
	MetricPopulation = "Population"
	MetricArea       = "Area (km²)"
	MetricForeign    = "Foreign %"
)

// MetricValue is one district's value inside a metric group.
type MetricValue struct {
	District string  `json:"district"`
	Value    float64 `json:"value"`
}

// MetricGroup holds one metric for every compared district, in selection order.
type MetricGroup struct {
	Metric string        `json:"metric"`
	Values []MetricValue `json:"values"`
}

// Map returns the group as district name to value.
func (g MetricGroup) Map() map[string]float64 {
	m := make(map[string]float64, len(g.Values))
	for _, v := range g.Values {
		m[v.District] = v.Value
	}
	return m
}

// Max returns the largest value of the group, used to scale bars.
func (g MetricGroup) Max() float64 {
	max := 0.0
	for _, v := range g.Values {
		if v.Value > max {
			max = v.Value
		}
	}
	return max
}

// DistrictCard is the per-district summary of a comparison.
type DistrictCard struct {
	District DistrictRecord `json:"district"`
	Density  int            `json:"density"`
}

// Comparison lays districts side by side.
type Comparison struct {
	Cards  []DistrictCard `json:"cards"`
	Groups []MetricGroup  `json:"groups"`
}

// BuildComparison builds cards and the population, area and foreign share
// groups for the given districts, keeping their order. Callers decide
// whether the number of districts is enough to show; see Selection.
func BuildComparison(districts []DistrictRecord) Comparison {
	cmp := Comparison{
		Cards: make([]DistrictCard, 0, len(districts)),
		Groups: []MetricGroup{
			{Metric: MetricPopulation, Values: make([]MetricValue, 0, len(districts))},
			{Metric: MetricArea, Values: make([]MetricValue, 0, len(districts))},
			{Metric: MetricForeign, Values: make([]MetricValue, 0, len(districts))},
		},
	}
	for _, d := range districts {
		name := d.DisplayName()
		cmp.Cards = append(cmp.Cards, DistrictCard{District: d, Density: d.Density()})
		cmp.Groups[0].Values = append(cmp.Groups[0].Values, MetricValue{District: name, Value: float64(d.Population)})
		cmp.Groups[1].Values = append(cmp.Groups[1].Values, MetricValue{District: name, Value: d.Area})
		cmp.Groups[2].Values = append(cmp.Groups[2].Values, MetricValue{District: name, Value: d.ForeignerPercentage})
	}
	return cmp
}

// Group returns the metric group with the given name.
func (c Comparison) Group(metric string) (MetricGroup, bool) {
	for _, g := range c.Groups {
		if g.Metric == metric {
			return g, true
		}
	}
	return MetricGroup{}, false
}

// CityOverview is one city's summary with its year-over-year changes.
type CityOverview struct {
	City    string               `json:"city"`
	Year    int                  `json:"year"`
	Summary CitySummary          `json:"summary"`
	Change  InfrastructureChange `json:"change"`
}

// NewCityOverview derives the changes of a summary.
func NewCityOverview(city string, year int, s CitySummary) CityOverview {
	return CityOverview{
		City:    city,
		Year:    year,
		Summary: s,
		Change:  InfrastructureDeltas(s),
	}
}

// TrendDetail backs the detail view of one community series.
type TrendDetail struct {
	Community string      `json:"community"`
	Series    TrendSeries `json:"series"`
	Path      []Point     `json:"path"`
	Trend     string      `json:"trend"`
	Label     string      `json:"label"`
}

// Current is the latest population of the series.
func (t TrendDetail) Current() int { return t.Series.Last }

// Peak is the highest population of the series.
func (t TrendDetail) Peak() int { return t.Series.Max }

// NewTrendDetail summarizes a community's progression for display.
func NewTrendDetail(c Community) TrendDetail {
	series := NewTrendSeries(c.Progression)
	return TrendDetail{
		Community: c.Name,
		Series:    series,
		Path:      SparklinePath(c.Populations()),
		Trend:     series.Direction().String(),
		Label:     ProgressionLabel(series),
	}
}
