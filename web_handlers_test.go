package main

import (
	"html"
	"io"
	"net/http"
	"strings"
	"testing"

	"berlinstats/internal/analytics"
)

func getPage(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read %s: %v", url, err)
	}
	// html/template escapes characters such as '+' in text
	return resp.StatusCode, html.UnescapeString(string(body))
}

func TestWebPages(t *testing.T) {
	srv, _ := newTestServer(t)

	testCases := []struct {
		name           string
		path           string
		expectedStatus int
		contains       []string
		notContains    []string
	}{
		{
			name:           "Home",
			path:           "/",
			expectedStatus: http.StatusOK,
			contains:       []string{"Demographic Snapshot: Berlin", "3,878,100", "+3.3%", "Turkish", "in 5 years", "Export CSV"},
		},
		{
			name:           "Home for a year without data",
			path:           "/?year=2030",
			expectedStatus: http.StatusOK,
			contains:       []string{"No figures for this year."},
		},
		{
			name:           "Districts without filters",
			path:           "/districts",
			expectedStatus: http.StatusOK,
			contains:       []string{"Showing 12 of 12 districts", "Neukoelln", "Select at least 2 districts"},
		},
		{
			name:           "Filters are ignored until applied",
			path:           "/districts?minMosques=10",
			expectedStatus: http.StatusOK,
			contains:       []string{"Showing 12 of 12 districts"},
		},
		{
			name:           "Applied filters",
			path:           "/districts?apply=1&minMosques=10",
			expectedStatus: http.StatusOK,
			contains:       []string{"Showing 3 of 12 districts (filters active)"},
			notContains:    []string{"Pankow"},
		},
		{
			name:           "Invalid filter",
			path:           "/districts?apply=1&minMosques=lots",
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"not a whole number", "Showing 12 of 12 districts"},
		},
		{
			name:           "Selection ready to compare",
			path:           "/districts?selected=1,8",
			expectedStatus: http.StatusOK,
			contains:       []string{"Selected 2/3", "/compare?ids=1,8"},
		},
		{
			name:           "District detail",
			path:           "/districts/1",
			expectedStatus: http.StatusOK,
			contains:       []string{"Mitte", "10,062", "39.5 km²", "Set ANTHROPIC_API_KEY"},
		},
		{
			name:           "Missing district",
			path:           "/districts/999",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Compare",
			path:           "/compare?ids=1,8",
			expectedStatus: http.StatusOK,
			contains:       []string{"Population", "Area (km²)", "Foreign %", "Neukoelln", "7,345"},
		},
		{
			name:           "Compare needs two districts",
			path:           "/compare?ids=1",
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"select at least 2 districts"},
		},
		{
			name:           "Cities",
			path:           "/cities?names=Berlin,Hamburg",
			expectedStatus: http.StatusOK,
			contains:       []string{"Berlin", "Hamburg", "1,910,160"},
		},
		{
			name:           "Community trend",
			path:           "/communities/Syrian",
			expectedStatus: http.StatusOK,
			contains:       []string{"Syrian community in Berlin", "49,800", "M 0,"},
		},
		{
			name:           "Unknown community",
			path:           "/communities/Martian",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := getPage(t, srv.URL+tc.path)

			if status != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tc.expectedStatus, status)
			}
			for _, want := range tc.contains {
				if !strings.Contains(body, want) {
					t.Errorf("Expected page to contain %q", want)
				}
			}
			for _, unwanted := range tc.notContains {
				if strings.Contains(body, unwanted) {
					t.Errorf("Expected page not to contain %q", unwanted)
				}
			}
		})
	}
}

func TestDistrictsURL(t *testing.T) {
	criteria := analytics.FilterCriteria{MinMosques: analytics.IntPtr(3)}

	testCases := []struct {
		name     string
		active   bool
		ids      []int
		expected string
	}{
		{"Plain", false, nil, "/districts?city=Berlin"},
		{"Inactive criteria are dropped", false, []int{2}, "/districts?city=Berlin&selected=2"},
		{"Active criteria", true, []int{2, 5}, "/districts?apply=1&city=Berlin&minMosques=3&selected=2%2C5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := districtsURL("Berlin", criteria, tc.active, tc.ids)
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
