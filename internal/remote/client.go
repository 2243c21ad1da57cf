// Package remote talks to a demographics API that serves tRPC-style
// query procedures over HTTP GET.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"berlinstats/internal/analytics"
)

const (
	defaultCacheTTL  = 10 * time.Minute
	defaultBaseDelay = 250 * time.Millisecond
	maxBodyBytes     = 4 << 20
)

// APIError is a failure reported by the API itself.
type APIError struct {
	Procedure string
	Status    int
	Message   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Procedure, e.Status, e.Message)
}

// Client implements analytics.Source against a remote API. Responses are
// cached per procedure and input.
type Client struct {
	baseURL   string
	http      *http.Client
	cache     *cache.Cache
	retry     RetryConfig
	superJSON bool
	logger    *slog.Logger
}

var _ analytics.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCacheTTL sets how long responses are reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithMaxRetries sets the number of attempts per call.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.retry.MaxAttempts = n }
}

// WithBaseDelay sets the first back-off delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.retry.BaseDelay = d }
}

// WithSuperJSON wraps inputs as {"json": input}, for servers using superjson.
func WithSuperJSON() Option {
	return func(c *Client) { c.superJSON = true }
}

// WithLogger sets the logger for retries and cache activity.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
		c.retry.Logger = l
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   defaultBaseDelay,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey builds the cache key of a call.
func CacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += ":" + fmt.Sprintf("%v", param)
	}
	return key
}

// Flush drops every cached response.
func (c *Client) Flush() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

func (c *Client) ListCities(ctx context.Context) ([]string, error) {
	var cities []string
	if err := c.call(ctx, ProcCities, nil, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *Client) ListDistricts(ctx context.Context, city string) ([]analytics.DistrictRecord, error) {
	var districts []analytics.DistrictRecord
	if err := c.call(ctx, ProcDistrictsList, CityInput{City: city}, &districts); err != nil {
		return nil, err
	}
	if districts == nil {
		districts = []analytics.DistrictRecord{}
	}
	return districts, nil
}

func (c *Client) GetDistrictByID(ctx context.Context, id int) (analytics.DistrictRecord, error) {
	var d *analytics.DistrictRecord
	if err := c.call(ctx, ProcDistrictByID, IDInput{ID: id}, &d); err != nil {
		return analytics.DistrictRecord{}, err
	}
	if d == nil {
		return analytics.DistrictRecord{}, fmt.Errorf("district %d: %w", id, analytics.ErrNotFound)
	}
	return *d, nil
}

func (c *Client) GetCitySummary(ctx context.Context, city string, year int) (analytics.CitySummary, error) {
	var s analytics.CitySummary
	if err := c.call(ctx, ProcCitySummary, SummaryInput{City: city, Year: year}, &s); err != nil {
		return analytics.CitySummary{}, err
	}
	return s, nil
}

func (c *Client) GetCommunityComposition(ctx context.Context, city string) ([]analytics.Community, error) {
	var communities []analytics.Community
	if err := c.call(ctx, ProcCommunityComposition, CityInput{City: city}, &communities); err != nil {
		return nil, err
	}
	if communities == nil {
		communities = []analytics.Community{}
	}
	return communities, nil
}

// call runs one procedure and decodes its payload into out.
func (c *Client) call(ctx context.Context, procedure string, input any, out any) error {
	inputJSON, err := c.encodeInput(input)
	if err != nil {
		return err
	}

	key := CacheKey(procedure, inputJSON)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return decodePayload(procedure, cached.([]byte), out)
		}
	}

	var payload []byte
	err = c.retry.Do(ctx, procedure, func() error {
		var fetchErr error
		payload, fetchErr = c.fetch(ctx, procedure, inputJSON)
		return fetchErr
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Remote call failed", "procedure", procedure, "input", inputJSON, "error", err)
		}
		return err
	}

	if c.cache != nil {
		c.cache.Set(key, payload, cache.DefaultExpiration)
	}
	return decodePayload(procedure, payload, out)
}

func (c *Client) encodeInput(input any) (string, error) {
	if input == nil {
		return "", nil
	}
	if c.superJSON {
		input = map[string]any{"json": input}
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode input: %w", err)
	}
	return string(raw), nil
}

// fetch performs a single HTTP round trip. Errors that a retry cannot fix
// are marked permanent.
func (c *Client) fetch(ctx context.Context, procedure, inputJSON string) ([]byte, error) {
	endpoint := c.baseURL + "/api/trpc/" + procedure
	if inputJSON != "" {
		endpoint += "?input=" + url.QueryEscape(inputJSON)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, permanent(ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 500 {
			return nil, &APIError{Procedure: procedure, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, permanent(fmt.Errorf("%s: malformed response: %w", procedure, err))
	}

	if env.Error != nil || resp.StatusCode >= 400 {
		apiErr := &APIError{Procedure: procedure, Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Message = env.Error.Message
			if env.Error.Code != 0 {
				apiErr.Status = env.Error.Code
			}
		}
		switch {
		case apiErr.Status == http.StatusNotFound:
			return nil, permanent(fmt.Errorf("%s: %s: %w", procedure, apiErr.Message, analytics.ErrNotFound))
		case apiErr.Status >= 500:
			return nil, apiErr
		default:
			return nil, permanent(apiErr)
		}
	}

	if env.Result == nil {
		return nil, permanent(fmt.Errorf("%s: response has no result", procedure))
	}
	return Unwrap(env.Result.Data), nil
}

func decodePayload(procedure string, payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: failed to decode payload: %w", procedure, err)
	}
	return nil
}
