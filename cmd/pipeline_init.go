package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/twbmap/twb-cli/internal/cache"
	"github.com/twbmap/twb-cli/internal/enrich"
	"github.com/twbmap/twb-cli/internal/fetcher"
	"github.com/twbmap/twb-cli/internal/pipeline"
	"github.com/twbmap/twb-cli/internal/store"
	"github.com/twbmap/twb-cli/pkg/geocode"
)

// pipelineEnv holds the initialized cache, store, and orchestrator shared by
// the run/enrich commands.
type pipelineEnv struct {
	Store        store.Store
	Orchestrator *pipeline.Orchestrator
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the run-history database and applies migrations.
func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Data.RunsDB), 0o755); err != nil {
		return nil, eris.Wrap(err, "create data dir")
	}
	st, err := store.NewSQLite(cfg.Data.RunsDB)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPipeline sets up the cache, fetcher, store, geocoder, and orchestrator.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Data.CacheDir)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.Options{
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	geo := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.Geocode.RatePerSec), 1)),
	)
	enricher := enrich.New(geo, c, time.Duration(cfg.Geocode.CacheTTLDays)*24*time.Hour)

	return &pipelineEnv{
		Store:        st,
		Orchestrator: pipeline.New(cfg, f, c, st, enricher),
	}, nil
}
