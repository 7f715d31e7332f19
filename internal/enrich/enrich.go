// Package enrich fills missing addresses and regions via reverse geocoding
// and attaches the synthetic presentation fields. Geocode lookups are cached
// by rounded coordinate and rate-limited by the client; a failed lookup falls
// back to the coordinate-box region heuristic and never blocks the run.
package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/cache"
	"github.com/twbmap/twb-cli/internal/classify"
	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/pkg/geocode"
)

// Enricher runs the enrichment pass.
type Enricher struct {
	geo   geocode.Client
	cache *cache.Cache
	ttl   time.Duration
}

// New creates an Enricher. ttl bounds the age of cached geocode results;
// zero means the default seven days.
func New(geo geocode.Client, c *cache.Cache, ttl time.Duration) *Enricher {
	if ttl == 0 {
		ttl = cache.TTLGeocode
	}
	return &Enricher{geo: geo, cache: c, ttl: ttl}
}

// Enrich returns a new slice with every location's gaps filled and synthetic
// fields attached. Lookups run one at a time: the geocoding service allows
// no more than one request per second.
func (e *Enricher) Enrich(ctx context.Context, locs []model.Location) []model.Location {
	out := make([]model.Location, 0, len(locs))
	for _, loc := range locs {
		if ctx.Err() != nil {
			zap.L().Warn("enrich: cancelled, passing remainder through unenriched")
			out = append(out, locs[len(out):]...)
			break
		}
		e.fill(ctx, &loc)
		Synthesize(&loc)
		out = append(out, loc)
	}
	return out
}

func (e *Enricher) fill(ctx context.Context, loc *model.Location) {
	needsAddress := loc.Address == ""
	needsRegion := loc.Region == model.RegionUnknown || loc.Region == ""
	if !needsAddress && !needsRegion {
		return
	}

	res, err := e.reverse(ctx, loc.Coordinates)
	if err != nil {
		zap.L().Warn("enrich: reverse geocode failed",
			zap.String("id", loc.ID),
			zap.Error(err),
		)
		if needsRegion {
			loc.Region = classify.RegionFromCoords(loc.Coordinates)
		}
		return
	}

	if needsAddress && res.DisplayName != "" {
		loc.Address = res.DisplayName
	}
	if needsRegion {
		if r := classify.Region(*loc); r != model.RegionUnknown {
			loc.Region = r
		} else {
			loc.Region = classify.RegionFromCoords(loc.Coordinates)
		}
	}
}

func (e *Enricher) reverse(ctx context.Context, c model.Coordinates) (*geocode.Result, error) {
	key := "geocode:" + c.Key4()

	var cached geocode.Result
	if e.cache != nil && e.cache.Get(key, e.ttl, &cached) {
		return &cached, nil
	}

	res, err := e.geo.Reverse(ctx, c.Lat, c.Lng)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if err := e.cache.Put(key, res); err != nil {
			zap.L().Warn("enrich: cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return res, nil
}
