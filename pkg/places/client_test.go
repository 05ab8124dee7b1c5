package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		gotQuery = map[string]string{
			"location": r.URL.Query().Get("location"),
			"radius":   r.URL.Query().Get("radius"),
			"keyword":  r.URL.Query().Get("keyword"),
			"type":     r.URL.Query().Get("type"),
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []map[string]any{
				{
					"place_id":           "pid-1",
					"name":               "Maklerbüro Schmidt",
					"vicinity":           "Hauptstr. 5, Berlin",
					"rating":             4.5,
					"user_ratings_total": 31,
					"business_status":    "OPERATIONAL",
				},
			},
			"next_page_token": "tok-2",
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.NearbySearch(context.Background(), NearbySearchRequest{
		Latitude:     52.52,
		Longitude:    13.405,
		RadiusMeters: 25000,
		Keyword:      "Versicherungsmakler",
		Type:         "insurance_agency",
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "pid-1", resp.Results[0].PlaceID)
	assert.Equal(t, "Maklerbüro Schmidt", resp.Results[0].Name)
	assert.Equal(t, 4.5, resp.Results[0].Rating)
	assert.Equal(t, "tok-2", resp.NextPageToken)
	assert.Equal(t, "52.520000,13.405000", gotQuery["location"])
	assert.Equal(t, "25000", gotQuery["radius"])
	assert.Equal(t, "Versicherungsmakler", gotQuery["keyword"])
	assert.Equal(t, "insurance_agency", gotQuery["type"])
}

func TestNearbySearchPageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-2", r.URL.Query().Get("pagetoken"))
		assert.Empty(t, r.URL.Query().Get("keyword"), "token requests carry no search parameters")
		json.NewEncoder(w).Encode(map[string]any{"status": "OK", "results": []any{}})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.NearbySearch(context.Background(), NearbySearchRequest{PageToken: "tok-2"})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestNearbySearchZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.NearbySearch(context.Background(), NearbySearchRequest{Keyword: "Versicherungsmakler"})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestNearbySearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "OVER_QUERY_LIMIT"})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.NearbySearch(context.Background(), NearbySearchRequest{Keyword: "Versicherungsmakler"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVER_QUERY_LIMIT")
}

func TestDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "pid-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "name,formatted_address,website", r.URL.Query().Get("fields"))
		json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"result": map[string]any{
				"name":                   "Maklerbüro Schmidt",
				"formatted_address":      "Hauptstr. 5, 10115 Berlin, Deutschland",
				"formatted_phone_number": "030 1234567",
				"website":                "https://makler-schmidt.de",
				"opening_hours":          map[string]any{"weekday_text": []string{"Montag: 09:00–17:00"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	detail, err := c.Details(context.Background(), "pid-1", []string{"name", "formatted_address", "website"})

	require.NoError(t, err)
	assert.Equal(t, "Maklerbüro Schmidt", detail.Name)
	assert.Equal(t, "Hauptstr. 5, 10115 Berlin, Deutschland", detail.FormattedAddress)
	assert.Equal(t, "030 1234567", detail.FormattedPhoneNumber)
	assert.Equal(t, []string{"Montag: 09:00–17:00"}, detail.OpeningHours.WeekdayText)
}

func TestDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "NOT_FOUND"})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Details(context.Background(), "pid-missing", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestDetailsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Details(context.Background(), "pid-1", nil)

	require.Error(t, err)
}
