// Package discovery finds insurance brokers around a coordinate using
// keyword nearby searches against the Places API.
package discovery

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/model"
	"github.com/sells-group/broker-finder/pkg/places"
)

// searchKeywords are the German broker search terms. Each runs as its own
// nearby search; results are merged by place_id.
var searchKeywords = []string{
	"Versicherungsmakler",
	"Versicherungsberater",
	"Versicherungsagentur",
	"Generalagentur Versicherung",
}

const placeType = "insurance_agency"

// detailFields is the field set requested from the details endpoint.
var detailFields = []string{
	"name",
	"formatted_address",
	"formatted_phone_number",
	"website",
	"rating",
	"user_ratings_total",
	"opening_hours",
	"business_status",
}

// Engine runs keyword searches and detail lookups against the Places API.
type Engine struct {
	client    places.Client
	pageDelay time.Duration
}

// Option configures the engine.
type Option func(*Engine)

// WithPageDelay overrides the wait before fetching a pagination token.
// Tokens are not valid immediately after being issued.
func WithPageDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.pageDelay = d
	}
}

// NewEngine creates a discovery engine backed by the given Places client.
func NewEngine(client places.Client, opts ...Option) *Engine {
	e := &Engine{
		client:    client,
		pageDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs every keyword search around the coordinate and returns the
// deduplicated candidates sorted by rating, highest first. A failing
// keyword is logged and skipped; it never aborts the remaining keywords.
// A non-positive radius yields no results.
func (e *Engine) Search(ctx context.Context, coords model.Coordinates, radiusMeters int) []model.BrokerCandidate {
	if radiusMeters <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []model.BrokerCandidate

	for _, keyword := range searchKeywords {
		summaries, err := e.searchKeyword(ctx, coords, radiusMeters, keyword)
		if err != nil {
			zap.L().Warn("discovery: keyword search failed",
				zap.String("keyword", keyword),
				zap.Error(err),
			)
			continue
		}

		for _, s := range summaries {
			if s.PlaceID == "" || seen[s.PlaceID] {
				continue
			}
			seen[s.PlaceID] = true
			candidates = append(candidates, e.lookupDetail(ctx, s))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Rating > candidates[j].Rating
	})
	return candidates
}

// searchKeyword fetches all pages for a single keyword.
func (e *Engine) searchKeyword(ctx context.Context, coords model.Coordinates, radiusMeters int, keyword string) ([]places.PlaceSummary, error) {
	req := places.NearbySearchRequest{
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		RadiusMeters: radiusMeters,
		Keyword:      keyword,
		Type:         placeType,
	}

	var summaries []places.PlaceSummary
	for {
		resp, err := e.client.NearbySearch(ctx, req)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, resp.Results...)

		if resp.NextPageToken == "" {
			break
		}
		if err := e.waitPageDelay(ctx); err != nil {
			return summaries, nil
		}
		req = places.NearbySearchRequest{PageToken: resp.NextPageToken}
	}
	return summaries, nil
}

func (e *Engine) waitPageDelay(ctx context.Context) error {
	t := time.NewTimer(e.pageDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// lookupDetail fetches the full record for a summary. A failed lookup
// degrades to the summary fields instead of dropping the candidate.
func (e *Engine) lookupDetail(ctx context.Context, s places.PlaceSummary) model.BrokerCandidate {
	detail, err := e.client.Details(ctx, s.PlaceID, detailFields)
	if err != nil {
		zap.L().Warn("discovery: detail lookup failed, using summary",
			zap.String("place_id", s.PlaceID),
			zap.Error(err),
		)
		return model.BrokerCandidate{
			PlaceID:            s.PlaceID,
			Name:               s.Name,
			Address:            s.Vicinity,
			Rating:             s.Rating,
			RatingCount:        s.UserRatingsTotal,
			BusinessStatus:     s.BusinessStatus,
			DetailLookupFailed: true,
		}
	}

	return model.BrokerCandidate{
		PlaceID:        s.PlaceID,
		Name:           detail.Name,
		Address:        detail.FormattedAddress,
		Phone:          detail.FormattedPhoneNumber,
		Website:        detail.Website,
		Rating:         detail.Rating,
		RatingCount:    detail.UserRatingsTotal,
		BusinessStatus: detail.BusinessStatus,
		OpeningHours:   detail.OpeningHours.WeekdayText,
	}
}
