package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"berlinstats/internal/analytics"
)

func TestSparkline(t *testing.T) {
	testCases := []struct {
		name     string
		values   []float64
		expected string
	}{
		{"empty", nil, ""},
		{"single", []float64{5}, "▁"},
		{"flat", []float64{7, 7, 7}, "▁▁▁"},
		{"rising", []float64{1, 2, 3}, "▁▅█"},
		{"falling", []float64{30, 10}, "█▁"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sparkline(tc.values); got != tc.expected {
				t.Errorf("Sparkline(%v) = %q, want %q", tc.values, got, tc.expected)
			}
		})
	}
}

func TestBarChartClamps(t *testing.T) {
	testCases := []struct {
		name   string
		value  float64
		max    float64
		filled int
	}{
		{"half", 50, 100, 5},
		{"over max", 150, 100, 10},
		{"negative", -5, 100, 0},
		{"zero max uses value", 3, 0, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bar := BarChart("x", tc.value, tc.max, 10, lipgloss.Color("33"), "")
			if got := strings.Count(bar, "█"); got != tc.filled {
				t.Errorf("Expected %d filled cells, got %d", tc.filled, got)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
				t.Errorf("Expected bar width 10, got %d", got)
			}
		})
	}
}

func TestDeltaBadge(t *testing.T) {
	if got := DeltaBadge(25); !strings.Contains(got, "▲ +25.0%") {
		t.Errorf("Expected rising badge, got %q", got)
	}
	if got := DeltaBadge(-20); !strings.Contains(got, "▼ -20.0%") {
		t.Errorf("Expected falling badge, got %q", got)
	}
	if TrendColor(analytics.TrendIncreasing) != colorUp || TrendColor(analytics.TrendFlat) != colorFlat {
		t.Error("Unexpected trend colors")
	}
}

func TestDistributionBar(t *testing.T) {
	if got := DistributionBar(nil, 20); got != "No data" {
		t.Errorf("Expected placeholder, got %q", got)
	}

	bar := DistributionBar([]analytics.Community{
		MockCommunity("Turkish", 50, 1),
		MockCommunity("Syrian", 80, 1),
	}, 20)
	// segments never exceed the width
	if got := strings.Count(bar, "█"); got != 20 {
		t.Errorf("Expected 20 filled cells, got %d", got)
	}
}

func TestDistributionBarNegativeShare(t *testing.T) {
	bar := DistributionBar([]analytics.Community{
		MockCommunity("Unknown", -5, 1),
		MockCommunity("Turkish", 50, 1),
	}, 20)
	if got := strings.Count(bar, "█"); got != 10 {
		t.Errorf("Expected 10 filled cells, got %d", got)
	}
	if got := strings.Count(bar, "░"); got != 10 {
		t.Errorf("Expected 10 empty cells, got %d", got)
	}
}
