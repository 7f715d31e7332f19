// Package geocode provides a client for the Nominatim reverse-geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the reverse-geocoding operation.
type Client interface {
	// Reverse resolves a coordinate pair into address components.
	Reverse(ctx context.Context, lat, lng float64) (*Result, error)
}

// Result holds the address components of a reverse lookup.
type Result struct {
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

// Address is the component breakdown Nominatim returns.
type Address struct {
	Road     string `json:"road"`
	Suburb   string `json:"suburb"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.client = hc
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithRateLimit overrides the outbound request rate. The public API allows
// at most one request per second.
func WithRateLimit(lim *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = lim
	}
}

type httpClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient creates a Nominatim client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://nominatim.openstreetmap.org",
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: "twb-cli/1.0",
		limiter:   rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Reverse(ctx context.Context, lat, lng float64) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limiter wait")
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lng))

	endpoint := c.baseURL + "/reverse?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: reverse request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("geocode: http %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, eris.Wrap(err, "geocode: decode response")
	}
	return &result, nil
}
