package analytics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"berlinstats/internal/analytics"
)

func TestBuildComparison(t *testing.T) {
	mitte := analytics.DistrictRecord{ID: 1, Name: "Mitte", NameEn: "Mitte", Population: 397134, Area: 39.47, ForeignerPercentage: 34.6}
	neukoelln := analytics.DistrictRecord{ID: 8, Name: "Neukölln", Population: 330017, Area: 44.93, ForeignerPercentage: 26.1}

	cmp := analytics.BuildComparison([]analytics.DistrictRecord{mitte, neukoelln})

	require.Len(t, cmp.Cards, 2)
	assert.Equal(t, 10062, cmp.Cards[0].Density)
	assert.Equal(t, 7345, cmp.Cards[1].Density)

	require.Len(t, cmp.Groups, 3)
	pop, ok := cmp.Group(analytics.MetricPopulation)
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"Mitte": 397134, "Neukölln": 330017}, pop.Map())
	assert.Equal(t, 397134.0, pop.Max())

	area, ok := cmp.Group(analytics.MetricArea)
	require.True(t, ok)
	assert.Equal(t, "Neukölln", area.Values[1].District)
	assert.InDelta(t, 44.93, area.Values[1].Value, 1e-9)

	foreign, ok := cmp.Group(analytics.MetricForeign)
	require.True(t, ok)
	assert.InDelta(t, 34.6, foreign.Map()["Mitte"], 1e-9)

	_, ok = cmp.Group("Height")
	assert.False(t, ok)
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 0, analytics.DistrictRecord{Population: 1000}.Density())
	assert.Equal(t, 3, analytics.DistrictRecord{Population: 5, Area: 2}.Density())
}

func TestNewTrendDetail(t *testing.T) {
	c := analytics.Community{
		Name:             "Turkish",
		LatestPercentage: 4.8,
		Progression:      points(2020, 100, 2021, 110, 2022, 121),
	}

	detail := analytics.NewTrendDetail(c)

	assert.Equal(t, "Turkish", detail.Community)
	assert.Equal(t, 121, detail.Current())
	assert.Equal(t, 121, detail.Peak())
	assert.Equal(t, "increasing", detail.Trend)
	assert.Equal(t, "+21.0% in 3 years", detail.Label)
	assert.Len(t, detail.Path, 3)

	empty := analytics.NewTrendDetail(analytics.Community{Name: "Other"})
	assert.Equal(t, "", empty.Label)
	assert.Empty(t, empty.Path)
	assert.Equal(t, "flat", empty.Trend)
}

func TestNewCityOverview(t *testing.T) {
	s := analytics.CitySummary{
		Current:  &analytics.CitySnapshot{Year: 2024, MosquesCount: 5, ChurchesCount: 4},
		Previous: &analytics.CitySnapshot{Year: 2023, MosquesCount: 4, ChurchesCount: 5},
	}

	o := analytics.NewCityOverview("Berlin", 2024, s)

	assert.Equal(t, "Berlin", o.City)
	assert.InDelta(t, 25.0, o.Change.Mosques, 1e-9)
	assert.InDelta(t, -20.0, o.Change.Churches, 1e-9)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "3,850,809", analytics.FormatCount(3850809))
	assert.Equal(t, "42", analytics.FormatCount(42))
	assert.Equal(t, "+21.0%", analytics.FormatPercentChange(21))
	assert.Equal(t, "-20.0%", analytics.FormatPercentChange(-20))
	assert.Equal(t, "0.0%", analytics.FormatPercentChange(-0.01))
	assert.Equal(t, "34.6%", analytics.FormatPercent(34.6))
	assert.Equal(t, "39.5 km²", analytics.FormatArea(39.47))
	assert.Equal(t, "▲", analytics.TrendArrow(analytics.TrendIncreasing))
}

func TestResult(t *testing.T) {
	var pending analytics.Result[[]analytics.DistrictRecord]
	assert.True(t, pending.IsLoading())
	assert.Empty(t, analytics.FilterDistricts(pending.OrZero(), analytics.FilterCriteria{}))

	failed := analytics.From[[]int](nil, errors.New("boom"))
	assert.True(t, failed.IsError())
	assert.EqualError(t, failed.Err, "boom")

	ready := analytics.From([]int{1, 2}, nil)
	assert.True(t, ready.IsReady())
	assert.Equal(t, []int{1, 2}, ready.OrZero())
	assert.Equal(t, "ready", ready.State.String())
}

type stubSource struct {
	analytics.Source
	districts map[int]analytics.DistrictRecord
}

func (s stubSource) GetDistrictByID(_ context.Context, id int) (analytics.DistrictRecord, error) {
	d, ok := s.districts[id]
	if !ok {
		return analytics.DistrictRecord{}, analytics.ErrNotFound
	}
	return d, nil
}

func TestDistrictsByIDs(t *testing.T) {
	src := stubSource{districts: map[int]analytics.DistrictRecord{
		1: {ID: 1, Name: "Mitte"},
		2: {ID: 2, Name: "Pankow"},
	}}

	got, err := analytics.DistrictsByIDs(context.Background(), src, []int{2, 1})
	require.NoError(t, err)
	assert.Equal(t, "Pankow", got[0].Name)
	assert.Equal(t, "Mitte", got[1].Name)

	_, err = analytics.DistrictsByIDs(context.Background(), src, []int{1, 3})
	assert.ErrorIs(t, err, analytics.ErrNotFound)
}
