// Package pipeline orchestrates a broker search: location resolution,
// discovery, enrichment, and the merge into final records.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/broker-finder/internal/config"
	"github.com/sells-group/broker-finder/internal/model"
	"github.com/sells-group/broker-finder/pkg/geocode"
)

// ErrLocationNotFound reports that the location text could not be resolved
// to coordinates. Distinct from a search that resolves but finds nothing.
var ErrLocationNotFound = eris.New("pipeline: location not resolvable")

// ErrEmptyLocation reports missing location input.
var ErrEmptyLocation = eris.New("pipeline: location required")

// Geocoder resolves location text to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, location string) *geocode.Result
}

// Discoverer finds broker candidates around a coordinate.
type Discoverer interface {
	Search(ctx context.Context, coords model.Coordinates, radiusMeters int) []model.BrokerCandidate
}

// Enricher scrapes a broker website for contact data.
type Enricher interface {
	Enrich(ctx context.Context, rawURL string) model.EnrichmentResult
}

// Result is a completed search run.
type Result struct {
	ID          uuid.UUID              `json:"id"`
	Location    string                 `json:"location"`
	RadiusKm    int                    `json:"radius_km"`
	Coordinates model.Coordinates      `json:"coordinates"`
	Brokers     []model.EnrichedBroker `json:"brokers"`
	TotalFound  int                    `json:"total_found"`
	CompletedAt time.Time              `json:"completed_at"`
}

// Pipeline wires the search stages together.
type Pipeline struct {
	geocoder Geocoder
	engine   Discoverer
	scraper  Enricher
	cfg      config.SearchConfig
	now      func() time.Time
}

// New creates a Pipeline.
func New(g Geocoder, d Discoverer, e Enricher, cfg config.SearchConfig) *Pipeline {
	if cfg.MaxEnriched <= 0 {
		cfg.MaxEnriched = 10
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = 1
	}
	return &Pipeline{
		geocoder: g,
		engine:   d,
		scraper:  e,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run executes a full search. An unresolvable location returns
// ErrLocationNotFound; a resolvable one with no brokers in range returns a
// Result with an empty broker list.
func (p *Pipeline) Run(ctx context.Context, location string, radiusKm int) (*Result, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	if p.cfg.MaxRadiusKm > 0 && radiusKm > p.cfg.MaxRadiusKm {
		zap.L().Warn("pipeline: radius clamped",
			zap.Int("requested_km", radiusKm),
			zap.Int("max_km", p.cfg.MaxRadiusKm),
		)
		radiusKm = p.cfg.MaxRadiusKm
	}

	geo := p.geocoder.Resolve(ctx, location)
	if !geo.Matched {
		return nil, ErrLocationNotFound
	}
	coords := model.Coordinates{Latitude: geo.Latitude, Longitude: geo.Longitude}

	candidates := p.engine.Search(ctx, coords, radiusKm*1000)
	zap.L().Info("pipeline: discovery complete",
		zap.String("location", location),
		zap.Int("radius_km", radiusKm),
		zap.Int("candidates", len(candidates)),
	)

	totalFound := len(candidates)
	if len(candidates) > p.cfg.MaxEnriched {
		candidates = candidates[:p.cfg.MaxEnriched]
	}

	brokers := p.enrichAll(ctx, candidates, location, radiusKm)

	return &Result{
		ID:          uuid.New(),
		Location:    location,
		RadiusKm:    radiusKm,
		Coordinates: coords,
		Brokers:     brokers,
		TotalFound:  totalFound,
		CompletedAt: p.now().UTC(),
	}, nil
}

// enrichAll scrapes every candidate's website with bounded concurrency.
// Output order follows candidate order regardless of completion order.
func (p *Pipeline) enrichAll(ctx context.Context, candidates []model.BrokerCandidate, location string, radiusKm int) []model.EnrichedBroker {
	brokers := make([]model.EnrichedBroker, len(candidates))
	discoveredAt := p.now().UTC()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EnrichConcurrency)

	for i, c := range candidates {
		g.Go(func() error {
			enrichment := model.UnavailableEnrichment()
			if c.Website != "" {
				enrichment = p.scraper.Enrich(gCtx, c.Website)
			}
			brokers[i] = merge(c, enrichment, location, radiusKm, discoveredAt)
			return nil
		})
	}
	_ = g.Wait()

	return brokers
}

// merge combines API fields with scraped data. API data wins for phone;
// the scrape fills the gap. Every output field is a real value or the
// Unavailable sentinel.
func merge(c model.BrokerCandidate, e model.EnrichmentResult, location string, radiusKm int, discoveredAt time.Time) model.EnrichedBroker {
	phone := c.Phone
	if phone == "" {
		phone = e.Phone
	}
	return model.EnrichedBroker{
		Name:           orUnavailable(c.Name),
		Address:        orUnavailable(c.Address),
		Phone:          orUnavailable(phone),
		Email:          orUnavailable(e.Email),
		Website:        orUnavailable(c.Website),
		ContactPerson:  orUnavailable(e.ContactPerson),
		Rating:         c.Rating,
		RatingCount:    c.RatingCount,
		PlaceID:        c.PlaceID,
		BusinessStatus: c.BusinessStatus,
		SearchLocation: location,
		SearchRadiusKm: radiusKm,
		DiscoveredAt:   discoveredAt,
	}
}

func orUnavailable(s string) string {
	if s == "" {
		return model.Unavailable
	}
	return s
}
