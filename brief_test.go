package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"berlinstats/internal/analytics"
)

func TestNewBriefServiceRequiresKey(t *testing.T) {
	if _, err := NewBriefService("", nil); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestBriefPrompt(t *testing.T) {
	d := MockDistrict(8, "Neukoelln", 330017, 44.93, 21, 31, 0)
	d.Synagogues = nil

	summary := analytics.CitySummary{
		Current:  &analytics.CitySnapshot{City: "Berlin", Year: 2024, MosquesCount: 5, TotalPopulation: 3878100},
		Previous: &analytics.CitySnapshot{City: "Berlin", Year: 2023, MosquesCount: 4, TotalPopulation: 3850809},
	}

	prompt := BriefPrompt(d, summary)

	for _, want := range []string{
		"Neukoelln in Berlin",
		"Population: 330,017",
		"Density: 7,345",
		"synagogues: unknown",
		"Berlin as a whole (2024)",
		"Mosques: 5 (+25.0%)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q\n%s", want, prompt)
		}
	}

	// no city context without a current snapshot
	if strings.Contains(BriefPrompt(d, analytics.CitySummary{}), "as a whole") {
		t.Error("Expected no city section without a snapshot")
	}
}

func TestBriefCaching(t *testing.T) {
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	calls := 0
	s := &BriefService{
		db:       db,
		cacheTTL: time.Hour,
		generate: func(ctx context.Context, prompt string) (string, error) {
			calls++
			return "# Brief " + strings.Repeat("!", calls), nil
		},
	}

	d, err := db.GetDistrictByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetDistrictByID failed: %v", err)
	}

	if s.Cached(d) != nil {
		t.Fatal("Expected no cached brief yet")
	}

	first, err := s.Brief(context.Background(), d, analytics.CitySummary{})
	if err != nil {
		t.Fatalf("Brief failed: %v", err)
	}
	if first.Cached || first.MarkdownContent != "# Brief !" {
		t.Errorf("Expected a fresh brief, got %+v", first)
	}

	second, err := s.Brief(context.Background(), d, analytics.CitySummary{})
	if err != nil {
		t.Fatalf("Brief failed: %v", err)
	}
	if !second.Cached || second.MarkdownContent != first.MarkdownContent {
		t.Errorf("Expected the cached brief, got %+v", second)
	}
	if calls != 1 {
		t.Errorf("Expected 1 generation, got %d", calls)
	}

	third, err := s.Regenerate(context.Background(), d, analytics.CitySummary{})
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if third.MarkdownContent != "# Brief !!" || calls != 2 {
		t.Errorf("Expected a regenerated brief, got %+v after %d calls", third, calls)
	}
}

func TestBriefGenerationError(t *testing.T) {
	s := &BriefService{
		cacheTTL: time.Hour,
		generate: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("rate limited")
		},
	}

	_, err := s.Brief(context.Background(), MockDistrict(1, "Mitte", 1, 1, 0, 0, 0), analytics.CitySummary{})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Expected generation error, got %v", err)
	}
}
