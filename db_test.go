package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"berlinstats/internal/analytics"
)

// TestNewDB tests database initialization with the bundled data
func TestNewDB(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	if db == nil {
		t.Fatal("Expected database to be initialized")
	}

	if db.conn == nil {
		t.Fatal("Expected database connection to be established")
	}
}

func TestListCities(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	cities, err := db.ListCities(context.Background())
	if err != nil {
		t.Fatalf("ListCities failed: %v", err)
	}

	if len(cities) != 2 {
		t.Fatalf("Expected 2 cities, got %d", len(cities))
	}
	if cities[0] != "Berlin" {
		t.Errorf("Expected Berlin first, got %s", cities[0])
	}
}

func TestListDistricts(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	testCases := []struct {
		name          string
		city          string
		expectedCount int
		expectedFirst string
	}{
		{
			name:          "Berlin districts",
			city:          "Berlin",
			expectedCount: 12,
			expectedFirst: "Mitte",
		},
		{
			name:          "Hamburg districts",
			city:          "Hamburg",
			expectedCount: 7,
			expectedFirst: "Hamburg-Mitte",
		},
		{
			name:          "Unknown city",
			city:          "Atlantis",
			expectedCount: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			districts, err := db.ListDistricts(context.Background(), tc.city)
			if err != nil {
				t.Fatalf("ListDistricts failed: %v", err)
			}

			if districts == nil {
				t.Fatal("Expected an empty slice, got nil")
			}

			if len(districts) != tc.expectedCount {
				t.Errorf("Expected %d districts, got %d", tc.expectedCount, len(districts))
			}

			if tc.expectedFirst != "" && len(districts) > 0 && districts[0].Name != tc.expectedFirst {
				t.Errorf("Expected first district %s, got %s", tc.expectedFirst, districts[0].Name)
			}
		})
	}
}

func TestGetDistrictByID(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	d, err := db.GetDistrictByID(ctx, 8)
	if err != nil {
		t.Fatalf("GetDistrictByID failed: %v", err)
	}
	if d.Name != "Neukölln" || d.NameEn != "Neukoelln" {
		t.Errorf("Unexpected names: %s / %s", d.Name, d.NameEn)
	}
	if d.Mosques == nil || *d.Mosques != 21 {
		t.Errorf("Expected 21 mosques, got %v", d.Mosques)
	}
	if d.Density() != 7345 {
		t.Errorf("Expected density 7345, got %d", d.Density())
	}

	// Treptow-Köpenick has no synagogue figure
	d, err = db.GetDistrictByID(ctx, 9)
	if err != nil {
		t.Fatalf("GetDistrictByID failed: %v", err)
	}
	if d.Synagogues != nil {
		t.Errorf("Expected unknown synagogue count, got %d", *d.Synagogues)
	}

	_, err = db.GetDistrictByID(ctx, 999)
	if !errors.Is(err, analytics.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetCitySummary(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	testCases := []struct {
		name         string
		city         string
		year         int
		currentYear  int
		previousYear int
	}{
		{"Latest Berlin year", "Berlin", 2024, 2024, 2023},
		{"Earlier Berlin year", "Berlin", 2023, 2023, 2022},
		{"First Berlin year", "Berlin", 2022, 2022, 0},
		{"Year without snapshot", "Berlin", 2030, 0, 2024},
		{"Hamburg", "Hamburg", 2024, 2024, 2023},
		{"Unknown city", "Atlantis", 2024, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := db.GetCitySummary(context.Background(), tc.city, tc.year)
			if err != nil {
				t.Fatalf("GetCitySummary failed: %v", err)
			}

			if tc.currentYear == 0 {
				if s.Current != nil {
					t.Errorf("Expected no current snapshot, got %d", s.Current.Year)
				}
			} else if s.Current == nil || s.Current.Year != tc.currentYear {
				t.Errorf("Expected current year %d, got %+v", tc.currentYear, s.Current)
			}

			if tc.previousYear == 0 {
				if s.Previous != nil {
					t.Errorf("Expected no previous snapshot, got %d", s.Previous.Year)
				}
			} else if s.Previous == nil || s.Previous.Year != tc.previousYear {
				t.Errorf("Expected previous year %d, got %+v", tc.previousYear, s.Previous)
			}
		})
	}
}

func TestGetCommunityComposition(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	communities, err := db.GetCommunityComposition(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("GetCommunityComposition failed: %v", err)
	}

	if len(communities) != 6 {
		t.Fatalf("Expected 6 communities, got %d", len(communities))
	}

	turkish := communities[0]
	if turkish.Name != "Turkish" || turkish.LatestPercentage != 2.5 {
		t.Errorf("Expected Turkish 2.5 first, got %s %.1f", turkish.Name, turkish.LatestPercentage)
	}
	if len(turkish.Progression) != 5 {
		t.Fatalf("Expected 5 progression points, got %d", len(turkish.Progression))
	}
	for i := 1; i < len(turkish.Progression); i++ {
		if turkish.Progression[i].Year <= turkish.Progression[i-1].Year {
			t.Errorf("Progression not in ascending year order: %+v", turkish.Progression)
		}
	}

	empty, err := db.GetCommunityComposition(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("GetCommunityComposition failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", empty)
	}
}

func TestYears(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	years, err := db.Years(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Years failed: %v", err)
	}

	expected := []int{2024, 2023, 2022}
	if len(years) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, years)
	}
	for i := range expected {
		if years[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, years)
		}
	}
}

func TestExecuteQuery(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	rows, err := db.ExecuteQuery("SELECT name, mosques FROM districts WHERE city = 'Berlin' ORDER BY mosques DESC LIMIT 1")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0]["name"] != "Neukölln" {
		t.Errorf("Expected Neukölln, got %v", rows[0]["name"])
	}

	if _, err := db.ExecuteQuery("SELECT * FROM missing_table"); err == nil {
		t.Error("Expected error for unknown table")
	}
}

func TestBriefCache(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	if _, _, err := db.LoadBrief(1, time.Hour); err == nil {
		t.Fatal("Expected cache miss before saving")
	}

	generated := time.Now().Add(-time.Minute)
	if err := db.SaveBrief(1, "Mitte", "test-model", "# Mitte", generated); err != nil {
		t.Fatalf("SaveBrief failed: %v", err)
	}

	content, _, err := db.LoadBrief(1, time.Hour)
	if err != nil {
		t.Fatalf("LoadBrief failed: %v", err)
	}
	if content != "# Mitte" {
		t.Errorf("Expected cached content, got %q", content)
	}

	// overwrite keeps one row per district
	if err := db.SaveBrief(1, "Mitte", "test-model", "# Mitte v2", time.Now()); err != nil {
		t.Fatalf("SaveBrief failed: %v", err)
	}
	content, _, err = db.LoadBrief(1, time.Hour)
	if err != nil || content != "# Mitte v2" {
		t.Errorf("Expected updated content, got %q (%v)", content, err)
	}

	if _, _, err := db.LoadBrief(1, time.Nanosecond); err == nil {
		t.Error("Expected expired cache entry")
	}
}
