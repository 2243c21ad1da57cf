package analytics

import "math"

// DistrictRecord is one district of a city as delivered by a Source.
// Infrastructure counts are nil when the source does not know them.
type DistrictRecord struct {
	ID                  int     `json:"id"`
	City                string  `json:"city"`
	Name                string  `json:"name"`
	NameEn              string  `json:"nameEn"`
	Population          int     `json:"population"`
	Area                float64 `json:"area"`
	ForeignerPercentage float64 `json:"foreignerPercentage"`
	DominantCommunity   string  `json:"dominantCommunity"`
	Mosques             *int    `json:"mosques,omitempty"`
	Churches            *int    `json:"churches,omitempty"`
	Synagogues          *int    `json:"synagogues,omitempty"`
}

// DisplayName prefers the English name.
func (d DistrictRecord) DisplayName() string {
	if d.NameEn != "" {
		return d.NameEn
	}
	return d.Name
}

// Density returns inhabitants per km², rounded. Zero when the area is unknown.
func (d DistrictRecord) Density() int {
	if d.Area <= 0 {
		return 0
	}
	return int(math.Round(float64(d.Population) / d.Area))
}

// CommunityProgressionPoint is a community's population in a given year.
type CommunityProgressionPoint struct {
	Year       int `json:"year"`
	Population int `json:"population"`
}

// Community is one demographic group of a city with its history,
// ordered by ascending year.
type Community struct {
	Name             string                      `json:"name"`
	LatestPercentage float64                     `json:"latestPercentage"`
	Progression      []CommunityProgressionPoint `json:"progression"`
}

// Populations returns the progression values in order.
func (c Community) Populations() []float64 {
	values := make([]float64, len(c.Progression))
	for i, p := range c.Progression {
		values[i] = float64(p.Population)
	}
	return values
}

// CitySnapshot holds the aggregate counts of a city for one year.
type CitySnapshot struct {
	City            string `json:"city"`
	Year            int    `json:"year"`
	MosquesCount    int    `json:"mosquesCount"`
	ChurchesCount   int    `json:"churchesCount"`
	SynagoguesCount int    `json:"synagoguesCount"`
	TotalPopulation int    `json:"totalPopulation"`
}

// CitySummary pairs the snapshot for a requested year with the closest
// earlier one. Either side may be nil.
type CitySummary struct {
	Current  *CitySnapshot `json:"current,omitempty"`
	Previous *CitySnapshot `json:"previous,omitempty"`
}

// IntPtr is a convenience for building records with known counts.
func IntPtr(v int) *int {
	return &v
}
