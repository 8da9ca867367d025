// Package geocode resolves postal codes to approximate GPS coordinates.
//
// Resolution is best-effort: a resolver never fails outward. Anything that
// goes wrong (network, bad response, zero results) degrades to the (0, 0)
// origin so routing keeps working without location data.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/relaydesk/agentrouter/internal/domain/model"
	"github.com/relaydesk/agentrouter/pkg/logger"
	"github.com/relaydesk/agentrouter/pkg/metrics"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultTimeout = 5 * time.Second
)

// Resolver maps a postal code to coordinates. Implementations never return
// an error: failures degrade to the zero value.
type Resolver interface {
	Resolve(ctx context.Context, postalCode string) model.Coordinates
}

// Client resolves postal codes against a Google-style geocoding endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the geocoding endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithAPIKey sets the API key sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout bounds each resolution request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a geocoding client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// geocodeResponse mirrors the subset of the geocoding payload we read.
type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve looks up the postal code. Any failure returns the origin.
func (c *Client) Resolve(ctx context.Context, postalCode string) model.Coordinates {
	coords, err := c.lookup(ctx, postalCode)
	if err != nil {
		metrics.RecordGeocodeFailure()
		c.log.Warn(ctx, "geocode lookup failed, defaulting to origin",
			logger.String("postal_code", postalCode),
			logger.Error(err),
		)
		return model.Coordinates{}
	}
	return coords
}

func (c *Client) lookup(ctx context.Context, postalCode string) (model.Coordinates, error) {
	query := url.Values{}
	query.Set("address", postalCode)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinates{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(payload.Results) == 0 {
		return model.Coordinates{}, fmt.Errorf("geocode: no results for %q", postalCode)
	}

	loc := payload.Results[0].Geometry.Location
	return model.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Static resolves every postal code to a fixed coordinate. Useful when no
// geocoding endpoint is configured.
type Static struct {
	Coords model.Coordinates
}

// Resolve returns the fixed coordinates regardless of input.
func (s Static) Resolve(_ context.Context, _ string) model.Coordinates {
	return s.Coords
}
