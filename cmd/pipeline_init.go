package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/config"
	"github.com/sells-group/broker-finder/internal/discovery"
	"github.com/sells-group/broker-finder/internal/enrich"
	"github.com/sells-group/broker-finder/internal/forward"
	"github.com/sells-group/broker-finder/internal/pipeline"
	"github.com/sells-group/broker-finder/pkg/geocode"
	"github.com/sells-group/broker-finder/pkg/places"
)

// settingsPath is where runtime settings updates are persisted.
const settingsPath = "settings.yaml"

// searchRunner runs a full broker search. Satisfied by pipeline.Pipeline;
// the indirection keeps the HTTP handlers testable with a stub.
type searchRunner interface {
	Run(ctx context.Context, location string, radiusKm int) (*pipeline.Result, error)
}

// pipelineEnv holds the initialized clients and the pipeline needed by the
// search/import/forward/serve commands.
type pipelineEnv struct {
	Settings  *config.Service
	Pipeline  searchRunner
	Forwarder *forward.Forwarder
	Cache     *pipeline.Cache
}

// initPipeline builds all API clients and wires the pipeline.
func initPipeline() (*pipelineEnv, error) {
	if cfg.Google.APIKey == "" {
		return nil, eris.New("google api key not configured (set BROKERFINDER_GOOGLE_API_KEY or google.api_key)")
	}

	geocoder := geocode.NewClient(cfg.Google.APIKey,
		geocode.WithRateLimit(cfg.Google.RateLimit),
	)
	placesClient := places.NewClient(cfg.Google.APIKey,
		places.WithRateLimit(cfg.Google.RateLimit),
	)

	engineOpts := []discovery.Option{}
	if cfg.Search.PageDelaySecs > 0 {
		engineOpts = append(engineOpts, discovery.WithPageDelay(time.Duration(cfg.Search.PageDelaySecs)*time.Second))
	}
	engine := discovery.NewEngine(placesClient, engineOpts...)

	scraperOpts := []enrich.Option{}
	if cfg.Scrape.TimeoutSecs > 0 {
		scraperOpts = append(scraperOpts, enrich.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		}))
	}
	if cfg.Scrape.UserAgent != "" {
		scraperOpts = append(scraperOpts, enrich.WithUserAgent(cfg.Scrape.UserAgent))
	}
	if cfg.Scrape.MaxBodyBytes > 0 {
		scraperOpts = append(scraperOpts, enrich.WithMaxBodyBytes(cfg.Scrape.MaxBodyBytes))
	}
	scraper := enrich.NewScraper(scraperOpts...)

	settings := config.NewService(cfg.Forward, settingsPath)
	forwarder := forward.NewForwarder(settings.Forward)

	p := pipeline.New(geocoder, engine, scraper, cfg.Search)

	zap.L().Debug("pipeline initialized",
		zap.Int("max_enriched", cfg.Search.MaxEnriched),
		zap.Int("enrich_concurrency", cfg.Search.EnrichConcurrency),
	)

	return &pipelineEnv{
		Settings:  settings,
		Pipeline:  p,
		Forwarder: forwarder,
		Cache:     pipeline.NewCache(),
	}, nil
}
