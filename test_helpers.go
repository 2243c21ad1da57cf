package main

import (
	"os"
	"testing"

	"berlinstats/internal/analytics"
)

// SetupTestDB creates a test database from the bundled CSV files
func SetupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "berlinstats-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	if err := WriteSeedFiles(tmpDir, RequiredDataFiles); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to write seed files: %v", err)
	}

	db, err := NewDB(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to initialize test database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

// MockDistrict creates a district with known infrastructure counts
func MockDistrict(id int, name string, population int, area float64, mosques, churches, synagogues int) analytics.DistrictRecord {
	return analytics.DistrictRecord{
		ID:                  id,
		City:                analytics.DefaultCity,
		Name:                name,
		NameEn:              name,
		Population:          population,
		Area:                area,
		ForeignerPercentage: 20.0,
		DominantCommunity:   "Turkish",
		Mosques:             analytics.IntPtr(mosques),
		Churches:            analytics.IntPtr(churches),
		Synagogues:          analytics.IntPtr(synagogues),
	}
}

// MockCommunity creates a community whose progression starts in 2020
func MockCommunity(name string, latest float64, populations ...int) analytics.Community {
	c := analytics.Community{
		Name:             name,
		LatestPercentage: latest,
		Progression:      make([]analytics.CommunityProgressionPoint, len(populations)),
	}
	for i, p := range populations {
		c.Progression[i] = analytics.CommunityProgressionPoint{Year: 2020 + i, Population: p}
	}
	return c
}
