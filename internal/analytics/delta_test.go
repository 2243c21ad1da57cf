package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"berlinstats/internal/analytics"
)

func TestPercentChange(t *testing.T) {
	testCases := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"growth", 5, 4, 25},
		{"decline", 4, 5, -20},
		{"unchanged", 7, 7, 0},
		{"zero previous", 12, 0, 0},
		{"zero previous and current", 0, 0, 0},
		{"negative current over zero", -3, 0, 0},
		{"drop to zero", 0, 8, -100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, analytics.PercentChange(tc.current, tc.previous), 1e-9)
		})
	}
}

func TestSnapshotDelta(t *testing.T) {
	assert.Equal(t, 0.0, analytics.SnapshotDelta(nil, analytics.IntPtr(4)))
	assert.Equal(t, 0.0, analytics.SnapshotDelta(analytics.IntPtr(4), nil))
	assert.Equal(t, 0.0, analytics.SnapshotDelta(nil, nil))
	assert.InDelta(t, 25.0, analytics.SnapshotDelta(analytics.IntPtr(5), analytics.IntPtr(4)), 1e-9)
}

func TestClassifyTrend(t *testing.T) {
	testCases := []struct {
		percent float64
		want    analytics.Trend
	}{
		{0, analytics.TrendFlat},
		{0.5, analytics.TrendFlat},
		{-0.5, analytics.TrendFlat},
		{0.51, analytics.TrendIncreasing},
		{-0.51, analytics.TrendDecreasing},
		{21, analytics.TrendIncreasing},
		{-100, analytics.TrendDecreasing},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, analytics.ClassifyTrend(tc.percent), "percent %v", tc.percent)
	}
}

func TestInfrastructureDeltas(t *testing.T) {
	current := &analytics.CitySnapshot{City: "Berlin", Year: 2024, MosquesCount: 100, ChurchesCount: 180, SynagoguesCount: 12, TotalPopulation: 3_850_000}
	previous := &analytics.CitySnapshot{City: "Berlin", Year: 2023, MosquesCount: 80, ChurchesCount: 200, SynagoguesCount: 0, TotalPopulation: 3_850_000}

	t.Run("both snapshots", func(t *testing.T) {
		got := analytics.InfrastructureDeltas(analytics.CitySummary{Current: current, Previous: previous})
		assert.InDelta(t, 25.0, got.Mosques, 1e-9)
		assert.InDelta(t, -10.0, got.Churches, 1e-9)
		assert.Equal(t, 0.0, got.Synagogues, "zero previous count must not divide")
		assert.Equal(t, 0.0, got.Population)
	})

	t.Run("missing previous", func(t *testing.T) {
		got := analytics.InfrastructureDeltas(analytics.CitySummary{Current: current})
		assert.Equal(t, analytics.InfrastructureChange{}, got)
	})

	t.Run("nothing loaded", func(t *testing.T) {
		assert.Equal(t, analytics.InfrastructureChange{}, analytics.InfrastructureDeltas(analytics.CitySummary{}))
	})
}
