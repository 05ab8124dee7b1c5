// Package places wraps the Google Places API operations used for broker
// discovery: keyword nearby search and per-place detail lookup.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client performs Google Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)
	Details(ctx context.Context, placeID string, fields []string) (*PlaceDetail, error)
}

// NearbySearchRequest holds the parameters for a nearby search call.
type NearbySearchRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Keyword      string
	Type         string
	PageToken    string
}

// NearbySearchResponse is one page of nearby search results.
type NearbySearchResponse struct {
	Results       []PlaceSummary `json:"results"`
	NextPageToken string         `json:"next_page_token"`
	Status        string         `json:"status"`
}

// PlaceSummary is the abbreviated place record a nearby search returns.
type PlaceSummary struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	Vicinity         string  `json:"vicinity"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	BusinessStatus   string  `json:"business_status"`
}

// PlaceDetail is the full place record from a details lookup.
type PlaceDetail struct {
	Name                 string  `json:"name"`
	FormattedAddress     string  `json:"formatted_address"`
	FormattedPhoneNumber string  `json:"formatted_phone_number"`
	Website              string  `json:"website"`
	Rating               float64 `json:"rating"`
	UserRatingsTotal     int     `json:"user_ratings_total"`
	BusinessStatus       string  `json:"business_status"`
	OpeningHours         struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type detailsResponse struct {
	Result PlaceDetail `json:"result"`
	Status string      `json:"status"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(10, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NearbySearch runs a single nearby search page. When req.PageToken is set
// the other parameters are ignored by the API and the next page is fetched.
func (c *httpClient) NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	params := url.Values{"key": {c.apiKey}}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	} else {
		params.Set("location", fmt.Sprintf("%f,%f", req.Latitude, req.Longitude))
		params.Set("radius", fmt.Sprintf("%d", req.RadiusMeters))
		params.Set("keyword", req.Keyword)
		if req.Type != "" {
			params.Set("type", req.Type)
		}
	}

	var result NearbySearchResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &result); err != nil {
		return nil, err
	}
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("places: nearby search status %s", result.Status)
	}
	return &result, nil
}

// Details fetches the requested fields for a single place.
func (c *httpClient) Details(ctx context.Context, placeID string, fields []string) (*PlaceDetail, error) {
	params := url.Values{
		"key":      {c.apiKey},
		"place_id": {placeID},
	}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var result detailsResponse
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, err
	}
	if result.Status != "OK" {
		return nil, eris.Errorf("places: details status %s for place %s", result.Status, placeID)
	}
	return &result.Result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "places: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}
