package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"berlinstats/internal/analytics"
	"berlinstats/internal/remote"
)

// TestTRPCRoundTrip points the remote client at our own procedure endpoint
// and checks it sees the same data as the local store
func TestTRPCRoundTrip(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()

	for _, superJSON := range []bool{false, true} {
		opts := []remote.Option{remote.WithBaseDelay(time.Millisecond), remote.WithCacheTTL(0)}
		if superJSON {
			opts = append(opts, remote.WithSuperJSON())
		}
		client := remote.New(srv.URL, opts...)

		cities, err := client.ListCities(ctx)
		if err != nil {
			t.Fatalf("ListCities failed: %v", err)
		}
		if len(cities) != 2 || cities[0] != "Berlin" {
			t.Errorf("Unexpected cities: %v", cities)
		}

		remoteDistricts, err := client.ListDistricts(ctx, "Berlin")
		if err != nil {
			t.Fatalf("ListDistricts failed: %v", err)
		}
		localDistricts, _ := db.ListDistricts(ctx, "Berlin")
		if len(remoteDistricts) != len(localDistricts) {
			t.Fatalf("Expected %d districts, got %d", len(localDistricts), len(remoteDistricts))
		}
		if remoteDistricts[8].Synagogues != nil {
			t.Errorf("Expected unknown count to survive the round trip")
		}

		d, err := client.GetDistrictByID(ctx, 8)
		if err != nil || d.Name != "Neukölln" {
			t.Errorf("Expected Neukölln, got %+v (%v)", d, err)
		}

		_, err = client.GetDistrictByID(ctx, 999)
		if !errors.Is(err, analytics.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		summary, err := client.GetCitySummary(ctx, "Berlin", 2024)
		if err != nil {
			t.Fatalf("GetCitySummary failed: %v", err)
		}
		if summary.Current == nil || summary.Previous == nil || summary.Previous.Year != 2023 {
			t.Errorf("Unexpected summary: %+v", summary)
		}

		communities, err := client.GetCommunityComposition(ctx, "Hamburg")
		if err != nil {
			t.Fatalf("GetCommunityComposition failed: %v", err)
		}
		if len(communities) != 3 {
			t.Errorf("Expected 3 Hamburg communities, got %d", len(communities))
		}
	}
}

func TestTRPCErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	testCases := []struct {
		name           string
		path           string
		input          string
		expectedStatus int
	}{
		{"Unknown procedure", "districts.delete", "", http.StatusNotFound},
		{"Malformed input", remote.ProcDistrictByID, "{not json", http.StatusBadRequest},
		{"Summary without year", remote.ProcCitySummary, `{"city":"Berlin"}`, http.StatusBadRequest},
		{"Missing district", remote.ProcDistrictByID, `{"id":999}`, http.StatusNotFound},
		{"Default city", remote.ProcDistrictsList, "", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := srv.URL + "/api/trpc/" + tc.path
			if tc.input != "" {
				u += "?input=" + url.QueryEscape(tc.input)
			}

			var env remote.Envelope
			status := getJSON(t, u, &env)
			if status != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tc.expectedStatus, status)
			}

			if status == http.StatusOK {
				if env.Result == nil {
					t.Fatal("Expected a result")
				}
				var districts []analytics.DistrictRecord
				if err := json.Unmarshal(env.Result.Data, &districts); err != nil || len(districts) != 12 {
					t.Errorf("Expected 12 Berlin districts, got %d (%v)", len(districts), err)
				}
				return
			}
			if env.Error == nil || env.Error.Code != tc.expectedStatus {
				t.Errorf("Expected error body with code %d, got %+v", tc.expectedStatus, env.Error)
			}
		})
	}
}
