// Package export turns a city's summary and community data into a report
// and writes it to CSV or PostgreSQL.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"berlinstats/internal/analytics"
)

// ErrNotLoaded is returned when a report is requested before its data arrived.
var ErrNotLoaded = errors.New("data not loaded yet")

// CommunityRow is one community line of a report.
type CommunityRow struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Trend      float64 `json:"trend"`
	Year       int     `json:"year"`
}

// InfrastructureRow is one building category of a report.
type InfrastructureRow struct {
	Type               string  `json:"type"`
	Count              int     `json:"count"`
	YearOverYearChange float64 `json:"yearOverYearChange"`
}

// Report is the exported snapshot of one city.
type Report struct {
	City           string              `json:"city"`
	Year           int                 `json:"year"`
	Population     int                 `json:"population"`
	Communities    []CommunityRow      `json:"communities"`
	Infrastructure []InfrastructureRow `json:"infrastructure"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}

// BuildReport assembles a report. Both inputs must be ready; a missing
// current snapshot only zeroes the counts.
func BuildReport(city string, year int, summary analytics.Result[analytics.CitySummary], communities analytics.Result[[]analytics.Community]) (Report, error) {
	if !summary.IsReady() || !communities.IsReady() {
		return Report{}, ErrNotLoaded
	}

	s := summary.Data
	change := analytics.InfrastructureDeltas(s)

	r := Report{
		City:        city,
		Year:        year,
		Communities: make([]CommunityRow, 0, len(communities.Data)),
		GeneratedAt: time.Now(),
	}

	var cur analytics.CitySnapshot
	if s.Current != nil {
		cur = *s.Current
	}
	r.Population = cur.TotalPopulation
	r.Infrastructure = []InfrastructureRow{
		{Type: "Mosques", Count: cur.MosquesCount, YearOverYearChange: change.Mosques},
		{Type: "Churches", Count: cur.ChurchesCount, YearOverYearChange: change.Churches},
		{Type: "Synagogues", Count: cur.SynagoguesCount, YearOverYearChange: change.Synagogues},
	}

	for _, c := range communities.Data {
		series := analytics.NewTrendSeries(c.Progression)
		row := CommunityRow{
			Name:       c.Name,
			Percentage: c.LatestPercentage,
			Trend:      series.PercentChange,
			Year:       year,
		}
		if n := len(c.Progression); n > 0 {
			row.Year = c.Progression[n-1].Year
		}
		r.Communities = append(r.Communities, row)
	}

	return r, nil
}

// FileName is the suggested download name, e.g. "berlin-demographics-2024.csv".
func FileName(r Report) string {
	city := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(r.City), " ", "-"))
	if city == "" {
		city = "city"
	}
	return fmt.Sprintf("%s-demographics-%d.csv", city, r.Year)
}

// ReportWriter is implemented by every report destination.
type ReportWriter interface {
	Write(r Report) error
	Close() error
}
