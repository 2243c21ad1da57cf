package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"berlinstats/internal/analytics"
)

// fakeAPI serves a couple of procedures and counts the requests it sees.
type fakeAPI struct {
	hits      atomic.Int32
	failFirst int32
	superJSON bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := f.hits.Add(1)
	if n <= f.failFirst {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
		return
	}

	var payload any
	switch r.URL.Path {
	case "/api/trpc/" + ProcCities:
		payload = []string{"Berlin", "Hamburg"}
	case "/api/trpc/" + ProcDistrictsList:
		var in CityInput
		_ = json.Unmarshal([]byte(r.URL.Query().Get("input")), &in)
		if in.City != "Berlin" {
			payload = []analytics.DistrictRecord{}
			break
		}
		payload = []analytics.DistrictRecord{
			{ID: 1, City: "Berlin", Name: "Mitte", Population: 397134, Area: 39.47, Mosques: analytics.IntPtr(12)},
			{ID: 2, City: "Berlin", Name: "Pankow", Population: 424307, Area: 103.01},
		}
	case "/api/trpc/" + ProcDistrictByID:
		var in IDInput
		_ = json.Unmarshal([]byte(r.URL.Query().Get("input")), &in)
		if in.ID != 1 {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(NewError(http.StatusNotFound, "District not found"))
			return
		}
		payload = analytics.DistrictRecord{ID: 1, City: "Berlin", Name: "Mitte"}
	case "/api/trpc/" + ProcCitySummary:
		payload = analytics.CitySummary{
			Current:  &analytics.CitySnapshot{City: "Berlin", Year: 2024, MosquesCount: 5},
			Previous: &analytics.CitySnapshot{City: "Berlin", Year: 2023, MosquesCount: 4},
		}
	case "/api/trpc/" + ProcCommunityComposition:
		payload = []analytics.Community{{Name: "Turkish", LatestPercentage: 4.8}}
	default:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(NewError(http.StatusBadRequest, "unknown procedure"))
		return
	}

	if f.superJSON {
		payload = map[string]any{"json": payload}
	}
	env, err := NewResult(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(env)
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseDelay(time.Millisecond)}, opts...)
	return New(srv.URL, opts...)
}

func TestClientListDistricts(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	districts, err := c.ListDistricts(context.Background(), "Berlin")
	require.NoError(t, err)
	require.Len(t, districts, 2)
	assert.Equal(t, "Mitte", districts[0].Name)
	require.NotNil(t, districts[0].Mosques)
	assert.Equal(t, 12, *districts[0].Mosques)
	assert.Nil(t, districts[1].Mosques, "unknown counts stay unknown")

	empty, err := c.ListDistricts(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestClientCachesResponses(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	ctx := context.Background()

	_, err := c.ListCities(ctx)
	require.NoError(t, err)
	cities, err := c.ListCities(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Berlin", "Hamburg"}, cities)
	assert.Equal(t, int32(1), api.hits.Load())

	c.Flush()
	_, err = c.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.hits.Load())
}

func TestClientWithoutCache(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, WithCacheTTL(0))

	for i := 0; i < 3; i++ {
		_, err := c.ListCities(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), api.hits.Load())
}

func TestClientRetriesServerErrors(t *testing.T) {
	api := &fakeAPI{failFirst: 2}
	c := newTestClient(t, api, WithMaxRetries(3))

	summary, err := c.GetCitySummary(context.Background(), "Berlin", 2024)
	require.NoError(t, err)
	require.NotNil(t, summary.Current)
	assert.Equal(t, 5, summary.Current.MosquesCount)
	assert.Equal(t, int32(3), api.hits.Load())
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	api := &fakeAPI{failFirst: 10}
	c := newTestClient(t, api, WithMaxRetries(2))

	_, err := c.GetCommunityComposition(context.Background(), "Berlin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), api.hits.Load())
}

func TestClientNotFoundIsNotRetried(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, WithMaxRetries(5))

	_, err := c.GetDistrictByID(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, analytics.ErrNotFound)
	assert.Equal(t, int32(1), api.hits.Load())

	d, err := c.GetDistrictByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mitte", d.Name)
}

func TestClientUnwrapsSuperJSON(t *testing.T) {
	api := &fakeAPI{superJSON: true}
	c := newTestClient(t, api)

	communities, err := c.GetCommunityComposition(context.Background(), "Berlin")
	require.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Equal(t, "Turkish", communities[0].Name)
}

func TestClientHonoursCancellation(t *testing.T) {
	api := &fakeAPI{failFirst: 100}
	c := newTestClient(t, api, WithMaxRetries(50), WithBaseDelay(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.ListCities(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestUnwrap(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"superjson", `{"json":[1,2]}`, `[1,2]`},
		{"superjson with meta", `{"json":{"a":1},"meta":{}}`, `{"a":1}`},
		{"plain object", `{"id":1}`, `{"id":1}`},
		{"object with json and more", `{"json":1,"id":2}`, `{"json":1,"id":2}`},
		{"array", `[1]`, `[1]`},
		{"null", `null`, `null`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.JSONEq(t, tc.want, string(Unwrap(json.RawMessage(tc.in))))
		})
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "districts.list:{\"city\":\"Berlin\"}", CacheKey(ProcDistrictsList, `{"city":"Berlin"}`))
	assert.Equal(t, "demographics.cities", CacheKey(ProcCities))
}
