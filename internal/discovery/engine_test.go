package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/broker-finder/internal/model"
	"github.com/sells-group/broker-finder/pkg/places"
)

// fakePlaces serves canned results per keyword and records calls.
type fakePlaces struct {
	byKeyword   map[string][]places.PlaceSummary
	pages       map[string]*places.NearbySearchResponse
	failKeyword string
	failDetails map[string]bool
	details     map[string]*places.PlaceDetail

	searchCalls []places.NearbySearchRequest
	detailCalls []string
}

func (f *fakePlaces) NearbySearch(_ context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	f.searchCalls = append(f.searchCalls, req)
	if req.PageToken != "" {
		if page, ok := f.pages[req.PageToken]; ok {
			return page, nil
		}
		return &places.NearbySearchResponse{Status: "OK"}, nil
	}
	if req.Keyword == f.failKeyword {
		return nil, eris.New("places: nearby search status OVER_QUERY_LIMIT")
	}
	return &places.NearbySearchResponse{Status: "OK", Results: f.byKeyword[req.Keyword]}, nil
}

func (f *fakePlaces) Details(_ context.Context, placeID string, _ []string) (*places.PlaceDetail, error) {
	f.detailCalls = append(f.detailCalls, placeID)
	if f.failDetails[placeID] {
		return nil, eris.Errorf("places: details status NOT_FOUND for place %s", placeID)
	}
	if d, ok := f.details[placeID]; ok {
		return d, nil
	}
	return &places.PlaceDetail{Name: "Detail " + placeID}, nil
}

func summary(id string, rating float64) places.PlaceSummary {
	return places.PlaceSummary{PlaceID: id, Name: "Makler " + id, Vicinity: "Str. 1, Berlin", Rating: rating}
}

func newTestEngine(f *fakePlaces) *Engine {
	return NewEngine(f, WithPageDelay(time.Millisecond))
}

func TestSearchMergesKeywordsByPlaceID(t *testing.T) {
	f := &fakePlaces{
		byKeyword: map[string][]places.PlaceSummary{
			"Versicherungsmakler":  {summary("a", 4), summary("b", 4), summary("c", 4), summary("d", 4), summary("e", 4)},
			"Versicherungsberater": {summary("d", 4), summary("e", 4), summary("f", 4)},
		},
	}

	got := newTestEngine(f).Search(context.Background(), model.Coordinates{Latitude: 52.5, Longitude: 13.4}, 25000)

	require.Len(t, got, 6, "overlapping place ids must collapse")
	ids := make(map[string]bool)
	for _, c := range got {
		ids[c.PlaceID] = true
	}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.True(t, ids[id], "missing place %s", id)
	}
	// One detail lookup per unique place.
	assert.Len(t, f.detailCalls, 6)
}

func TestSearchKeywordFailureIsIsolated(t *testing.T) {
	f := &fakePlaces{
		byKeyword: map[string][]places.PlaceSummary{
			"Versicherungsagentur": {summary("x", 3)},
		},
		failKeyword: "Versicherungsmakler",
	}

	got := newTestEngine(f).Search(context.Background(), model.Coordinates{}, 10000)

	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].PlaceID)
}

func TestSearchDetailFallbackToSummary(t *testing.T) {
	f := &fakePlaces{
		byKeyword: map[string][]places.PlaceSummary{
			"Versicherungsmakler": {summary("broken", 4.2)},
		},
		failDetails: map[string]bool{"broken": true},
	}

	got := newTestEngine(f).Search(context.Background(), model.Coordinates{}, 10000)

	require.Len(t, got, 1)
	assert.True(t, got[0].DetailLookupFailed)
	assert.Equal(t, "Makler broken", got[0].Name)
	assert.Equal(t, "Str. 1, Berlin", got[0].Address)
	assert.Equal(t, 4.2, got[0].Rating)
	assert.Empty(t, got[0].Website)
}

func TestSearchSortsByRatingDescending(t *testing.T) {
	f := &fakePlaces{
		byKeyword: map[string][]places.PlaceSummary{
			"Versicherungsmakler": {summary("low", 2.1), summary("high", 4.9), summary("mid", 3.5)},
		},
		details: map[string]*places.PlaceDetail{
			"low":  {Name: "Low", Rating: 2.1},
			"high": {Name: "High", Rating: 4.9},
			"mid":  {Name: "Mid", Rating: 3.5},
		},
	}

	got := newTestEngine(f).Search(context.Background(), model.Coordinates{}, 10000)

	require.Len(t, got, 3)
	assert.Equal(t, "High", got[0].Name)
	assert.Equal(t, "Mid", got[1].Name)
	assert.Equal(t, "Low", got[2].Name)
}

func TestSearchFollowsPagination(t *testing.T) {
	f := &fakePlaces{
		byKeyword: map[string][]places.PlaceSummary{},
		pages: map[string]*places.NearbySearchResponse{
			"page-2": {Status: "OK", Results: []places.PlaceSummary{summary("p2", 4)}},
		},
	}
	// First page for one keyword carries a token.
	f.byKeyword["Versicherungsmakler"] = []places.PlaceSummary{summary("p1", 4)}

	e := NewEngine(&paginatingPlaces{fakePlaces: f}, WithPageDelay(time.Millisecond))
	got := e.Search(context.Background(), model.Coordinates{}, 10000)

	require.Len(t, got, 2)
	var tokenCalls int
	for _, call := range f.searchCalls {
		if call.PageToken != "" {
			tokenCalls++
		}
	}
	assert.Equal(t, 1, tokenCalls, "expected exactly one follow-up page fetch")
}

// paginatingPlaces attaches a next_page_token to the first keyword's page.
type paginatingPlaces struct {
	*fakePlaces
}

func (p *paginatingPlaces) NearbySearch(ctx context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	resp, err := p.fakePlaces.NearbySearch(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Keyword == "Versicherungsmakler" && req.PageToken == "" {
		resp.NextPageToken = "page-2"
	}
	return resp, nil
}

func TestSearchNonPositiveRadius(t *testing.T) {
	f := &fakePlaces{}
	for _, radius := range []int{0, -5} {
		got := newTestEngine(f).Search(context.Background(), model.Coordinates{}, radius)
		assert.Empty(t, got, fmt.Sprintf("radius %d must yield no results", radius))
	}
	assert.Empty(t, f.searchCalls, "non-positive radius must not hit the API")
}
