package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckDataFiles(t *testing.T) {
	dir := t.TempDir()

	missing, err := CheckDataFiles(dir)
	if err != nil {
		t.Fatalf("CheckDataFiles failed: %v", err)
	}
	if len(missing) != len(RequiredDataFiles) {
		t.Fatalf("Expected all %d files missing, got %d", len(RequiredDataFiles), len(missing))
	}

	if err := WriteSeedFiles(dir, missing[:1]); err != nil {
		t.Fatalf("WriteSeedFiles failed: %v", err)
	}
	missing, err = CheckDataFiles(dir)
	if err != nil {
		t.Fatalf("CheckDataFiles failed: %v", err)
	}
	if len(missing) != len(RequiredDataFiles)-1 {
		t.Errorf("Expected %d missing files, got %d", len(RequiredDataFiles)-1, len(missing))
	}

	if err := EnsureDataFiles(dir); err != nil {
		t.Fatalf("EnsureDataFiles failed: %v", err)
	}
	missing, _ = CheckDataFiles(dir)
	if len(missing) != 0 {
		t.Errorf("Expected no missing files, got %v", missing)
	}
}

// TestPullDataFiles rebuilds a store from another store's data
func TestPullDataFiles(t *testing.T) {
	src, cleanup := SetupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	// a stale database must be dropped by the pull
	if err := os.WriteFile(filepath.Join(dir, "data.duckdb"), []byte("stale"), 0644); err != nil {
		t.Fatalf("failed to write stale db: %v", err)
	}

	ctx := context.Background()
	if err := PullDataFiles(ctx, src, dir, []string{"Berlin"}, 2024); err != nil {
		t.Fatalf("PullDataFiles failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "data.duckdb")); !os.IsNotExist(err) {
		t.Fatal("Expected the stale database to be removed")
	}

	pulled, err := NewDB(dir)
	if err != nil {
		t.Fatalf("NewDB on pulled files failed: %v", err)
	}
	defer pulled.Close()

	cities, err := pulled.ListCities(ctx)
	if err != nil || len(cities) != 1 || cities[0] != "Berlin" {
		t.Errorf("Expected only Berlin, got %v (%v)", cities, err)
	}

	districts, _ := pulled.ListDistricts(ctx, "Berlin")
	if len(districts) != 12 {
		t.Errorf("Expected 12 districts, got %d", len(districts))
	}
	if districts[9].Synagogues != nil {
		t.Error("Expected unknown counts to stay unknown")
	}

	summary, err := pulled.GetCitySummary(ctx, "Berlin", 2024)
	if err != nil || summary.Current == nil || summary.Previous == nil {
		t.Errorf("Expected both snapshots, got %+v (%v)", summary, err)
	}

	communities, _ := pulled.GetCommunityComposition(ctx, "Berlin")
	if len(communities) != 6 || communities[0].Name != "Turkish" || len(communities[0].Progression) != 5 {
		t.Errorf("Unexpected communities after pull: %+v", communities)
	}
}
