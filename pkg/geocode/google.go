package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results []googleResult `json:"results"`
	Status  string         `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Types             []string           `json:"types"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// geocodeGoogle runs a single Geocoding API request and picks the
// best-scoring candidate. When biased is set, the request carries a
// Germany component filter plus the postal code hint.
func (g *geocoder) geocodeGoogle(ctx context.Context, query string, hints Hints, biased bool) (*Result, error) {
	if g.apiKey == "" {
		return nil, eris.New("geocode: api key not configured")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"address":  {query},
		"key":      {g.apiKey},
		"language": {"de"},
		"region":   {"de"},
	}
	if biased {
		components := "country:DE"
		if hints.PostalCode != "" {
			components += "|postal_code:" + hints.PostalCode
		}
		params.Set("components", components)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	var googleResp googleGeocodeResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	if googleResp.Status != "OK" || len(googleResp.Results) == 0 {
		return &Result{Matched: false}, nil
	}

	best := pickBestCandidate(googleResp.Results, hints)
	return &Result{
		Latitude:  best.Geometry.Location.Lat,
		Longitude: best.Geometry.Location.Lng,
		Matched:   true,
	}, nil
}

// candidateTypes are result types worth a precision bonus.
var candidateTypes = map[string]bool{
	"route":          true,
	"street_address": true,
	"locality":       true,
	"postal_code":    true,
}

// pickBestCandidate scores each API result against the extracted hints and
// returns the highest scorer. Ties keep the earliest result, preserving the
// API's own relevance ordering.
func pickBestCandidate(results []googleResult, hints Hints) googleResult {
	best := results[0]
	bestScore := scoreCandidate(results[0], hints)
	for _, r := range results[1:] {
		if s := scoreCandidate(r, hints); s > bestScore {
			best, bestScore = r, s
		}
	}
	return best
}

func scoreCandidate(r googleResult, hints Hints) int {
	score := 0
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "postal_code":
				if hints.PostalCode != "" && c.LongName == hints.PostalCode {
					score += 5
				}
			case "locality":
				if hints.City != "" && strings.EqualFold(c.LongName, hints.City) {
					score += 3
				}
			case "country":
				if c.ShortName == "DE" {
					score += 2
				}
			}
		}
	}
	for _, t := range r.Types {
		if candidateTypes[t] {
			score++
			break
		}
	}
	return score
}
