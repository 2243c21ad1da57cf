package main

import (
	"bufio"
	"context"
	"embed"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"berlinstats/internal/analytics"
)

//go:embed seed/*.csv
var seedFS embed.FS

// DataFile is one CSV file the store is built from.
type DataFile struct {
	Name string
	Seed string
}

// RequiredDataFiles lists the files needed to build the store.
var RequiredDataFiles = []DataFile{
	{Name: "districts.csv", Seed: "seed/districts.csv"},
	{Name: "city_snapshots.csv", Seed: "seed/city_snapshots.csv"},
	{Name: "communities.csv", Seed: "seed/communities.csv"},
	{Name: "community_progression.csv", Seed: "seed/community_progression.csv"},
}

// CheckDataFiles returns the required files missing from dataDir.
func CheckDataFiles(dataDir string) ([]DataFile, error) {
	var missing []DataFile

	for _, file := range RequiredDataFiles {
		filePath := filepath.Join(dataDir, file.Name)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			missing = append(missing, file)
		} else if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", filePath, err)
		}
	}

	return missing, nil
}

// PromptUserForSeed asks whether the bundled sample data should be used.
func PromptUserForSeed(missing []DataFile) bool {
	if len(missing) == 0 {
		return false
	}

	fmt.Println("\n⚠️  Missing data files:")
	for _, file := range missing {
		fmt.Printf("   - %s\n", file.Name)
	}
	fmt.Println("\nThe bundled Berlin and Hamburg figures can be written to the data directory.")
	fmt.Println("Use `berlinstats sync --api-url ...` later to replace them with live data.")
	fmt.Print("\nWrite the bundled data now? (Y/n): ")

	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))

	return response == "" || response == "y" || response == "yes"
}

// WriteSeedFiles copies the bundled CSV files for every missing entry.
func WriteSeedFiles(dataDir string, missing []DataFile) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	for _, file := range missing {
		data, err := seedFS.ReadFile(file.Seed)
		if err != nil {
			return fmt.Errorf("failed to read bundled %s: %w", file.Name, err)
		}
		dst := filepath.Join(dataDir, file.Name)
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
		if logger != nil {
			logger.Info("Wrote bundled data file", "file", dst)
		}
	}

	return nil
}

// EnsureDataFiles writes the bundled files that are missing, without asking.
func EnsureDataFiles(dataDir string) error {
	missing, err := CheckDataFiles(dataDir)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	return WriteSeedFiles(dataDir, missing)
}

// PullDataFiles rewrites the CSV files of dataDir from src, for the given
// cities and summary year. The local store must be rebuilt afterwards.
func PullDataFiles(ctx context.Context, src analytics.Source, dataDir string, cities []string, year int) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	districts := [][]string{{"id", "city", "name", "name_en", "population", "area", "foreigner_percentage", "dominant_community", "mosques", "churches", "synagogues"}}
	snapshots := [][]string{{"city", "year", "mosques_count", "churches_count", "synagogues_count", "total_population"}}
	communities := [][]string{{"city", "community", "latest_percentage", "rank"}}
	progression := [][]string{{"city", "community", "year", "population"}}

	for _, city := range cities {
		fmt.Printf("   Fetching %s...\n", city)

		ds, err := src.ListDistricts(ctx, city)
		if err != nil {
			return fmt.Errorf("failed to fetch districts of %s: %w", city, err)
		}
		for _, d := range ds {
			districts = append(districts, []string{
				strconv.Itoa(d.ID), city, d.Name, d.NameEn,
				strconv.Itoa(d.Population),
				strconv.FormatFloat(d.Area, 'f', -1, 64),
				strconv.FormatFloat(d.ForeignerPercentage, 'f', -1, 64),
				d.DominantCommunity,
				optionalCount(d.Mosques), optionalCount(d.Churches), optionalCount(d.Synagogues),
			})
		}

		summary, err := src.GetCitySummary(ctx, city, year)
		if err != nil {
			return fmt.Errorf("failed to fetch summary of %s: %w", city, err)
		}
		for _, snap := range []*analytics.CitySnapshot{summary.Previous, summary.Current} {
			if snap == nil {
				continue
			}
			snapshots = append(snapshots, []string{
				city, strconv.Itoa(snap.Year),
				strconv.Itoa(snap.MosquesCount), strconv.Itoa(snap.ChurchesCount),
				strconv.Itoa(snap.SynagoguesCount), strconv.Itoa(snap.TotalPopulation),
			})
		}

		comms, err := src.GetCommunityComposition(ctx, city)
		if err != nil {
			return fmt.Errorf("failed to fetch communities of %s: %w", city, err)
		}
		for rank, c := range comms {
			communities = append(communities, []string{
				city, c.Name, strconv.FormatFloat(c.LatestPercentage, 'f', -1, 64), strconv.Itoa(rank + 1),
			})
			for _, p := range c.Progression {
				progression = append(progression, []string{city, c.Name, strconv.Itoa(p.Year), strconv.Itoa(p.Population)})
			}
		}
	}

	files := map[string][][]string{
		"districts.csv":             districts,
		"city_snapshots.csv":        snapshots,
		"communities.csv":           communities,
		"community_progression.csv": progression,
	}
	for name, rows := range files {
		if err := writeCSVFile(filepath.Join(dataDir, name), rows); err != nil {
			return err
		}
	}

	// the store is rebuilt from the new files on next open
	dbPath := filepath.Join(dataDir, "data.duckdb")
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale database: %w", err)
	}

	return nil
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func optionalCount(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
