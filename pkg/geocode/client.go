// Package geocode resolves free-text German location descriptions to
// coordinates via the Google Geocoding API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client resolves location text to coordinates.
type Client interface {
	// Resolve geocodes a single location description. An unresolvable
	// location is reported via Result.Matched, not an error: transport
	// and API failures are logged and collapse to an unmatched result.
	Resolve(ctx context.Context, location string) *Result
}

// Result holds the geocoding output for a location.
type Result struct {
	Latitude  float64
	Longitude float64
	Matched   bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the default Geocoding API base URL.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		g.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type geocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a geocoding Client with the given options.
func NewClient(apiKey string, opts ...Option) Client {
	g := &geocoder{
		apiKey:     apiKey,
		baseURL:    googleGeocodeURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve geocodes a location description. Raw coordinate input short-circuits
// the API entirely. A region-biased query runs first; when it yields nothing,
// an unfiltered retry runs before giving up.
func (g *geocoder) Resolve(ctx context.Context, location string) *Result {
	if coords, ok := ParseCoordinates(location); ok {
		return &Result{Latitude: coords.Latitude, Longitude: coords.Longitude, Matched: true}
	}

	query := NormalizeQuery(location)
	hints := ExtractHints(location)

	result, err := g.geocodeGoogle(ctx, query, hints, true)
	if err != nil {
		zap.L().Warn("geocode: biased lookup failed",
			zap.String("location", location),
			zap.Error(err),
		)
	}
	if result != nil && result.Matched {
		return result
	}

	result, err = g.geocodeGoogle(ctx, query, hints, false)
	if err != nil {
		zap.L().Warn("geocode: unfiltered lookup failed",
			zap.String("location", location),
			zap.Error(err),
		)
		return &Result{Matched: false}
	}
	return result
}
