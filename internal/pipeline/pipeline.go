// Package pipeline orchestrates the full fetch, merge, classify, enrich, and
// persist flow. Stages fail soft: a broken source contributes an empty result
// and the run continues. The run as a whole fails only when the merged
// collection came out empty AND at least one fetch failed outright.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twbmap/twb-cli/internal/cache"
	"github.com/twbmap/twb-cli/internal/classify"
	"github.com/twbmap/twb-cli/internal/config"
	"github.com/twbmap/twb-cli/internal/enrich"
	"github.com/twbmap/twb-cli/internal/fetcher"
	"github.com/twbmap/twb-cli/internal/linker"
	"github.com/twbmap/twb-cli/internal/merge"
	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/internal/source"
	"github.com/twbmap/twb-cli/internal/store"
)

// Output file names under the data directory.
const (
	CombinedFile = "combined.geojson"
	EnrichedFile = "enriched.geojson"
)

// Options tunes one pipeline run.
type Options struct {
	// ForceRefresh bypasses the raw-payload cache.
	ForceRefresh bool
	// SkipEnrich stops after persisting the combined collection.
	SkipEnrich bool
	// XLSXPath substitutes a local workbook export for the live sheet fetch.
	XLSXPath string
}

// Stats summarizes what a run produced.
type Stats struct {
	SheetRecords  int
	MapRecords    int
	Matched       int
	SheetOnly     int
	MapOnly       int
	Locations     int
	FetchFailures int
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	cfg      *config.Config
	fetch    fetcher.Fetcher
	cache    *cache.Cache
	store    store.Store
	enricher *enrich.Enricher
}

// New creates an Orchestrator. store and enricher may be nil: runs are then
// unrecorded and unenriched respectively.
func New(cfg *config.Config, f fetcher.Fetcher, c *cache.Cache, st store.Store, e *enrich.Enricher) *Orchestrator {
	return &Orchestrator{cfg: cfg, fetch: f, cache: c, store: st, enricher: e}
}

// Run executes the full pipeline.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (Stats, error) {
	var runID string
	if o.store != nil {
		if run, err := o.store.CreateRun(ctx); err != nil {
			zap.L().Warn("pipeline: run record not created", zap.Error(err))
		} else {
			runID = run.ID
		}
	}

	stats, err := o.run(ctx, runID, opts)

	if o.store != nil && runID != "" {
		status := store.RunStatusCompleted
		msg := ""
		if err != nil {
			status = store.RunStatusFailed
			msg = err.Error()
		}
		if cErr := o.store.CompleteRun(ctx, runID, status, stats.Locations, msg); cErr != nil {
			zap.L().Warn("pipeline: run record not completed", zap.Error(cErr))
		}
	}
	return stats, err
}

func (o *Orchestrator) run(ctx context.Context, runID string, opts Options) (Stats, error) {
	stats := Stats{}

	// Fetch both sources concurrently; they are independent network calls.
	var sheetRecords []source.SheetRecord
	var mapRecords []source.MapRecord
	var sheetsFailed, mapsFailed bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sheetRecords, err = o.stageFetchSheets(gctx, runID, opts)
		if err != nil {
			zap.L().Error("pipeline: sheet fetch failed, continuing with empty set", zap.Error(err))
			sheetsFailed = true
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mapRecords, err = o.stageFetchMaps(gctx, runID, opts)
		if err != nil {
			zap.L().Error("pipeline: maps fetch failed, continuing with empty set", zap.Error(err))
			mapsFailed = true
		}
		return nil
	})
	_ = g.Wait()

	if sheetsFailed {
		stats.FetchFailures++
	}
	if mapsFailed {
		stats.FetchFailures++
	}
	stats.SheetRecords = len(sheetRecords)
	stats.MapRecords = len(mapRecords)

	// Merge.
	started := time.Now()
	locations := o.mergeSources(sheetRecords, mapRecords, &stats)
	stats.Locations = len(locations)
	o.trackStage(ctx, runID, "merge", "ok", time.Since(started))

	if len(locations) == 0 && stats.FetchFailures > 0 {
		err := eris.New("pipeline: no locations merged and at least one source fetch failed")
		o.trackStage(ctx, runID, "persist", "failed", 0)
		return stats, err
	}

	// Classify.
	started = time.Now()
	for i := range locations {
		locations[i].Region = classify.Region(locations[i])
		locations[i].FacilityType = classify.Type(locations[i])
	}
	o.trackStage(ctx, runID, "classify", "ok", time.Since(started))

	// Persist combined.
	started = time.Now()
	combinedPath := filepath.Join(o.cfg.Data.Dir, CombinedFile)
	if err := o.persist(combinedPath, locations); err != nil {
		o.trackStage(ctx, runID, "persist", "failed", time.Since(started))
		return stats, err
	}
	o.trackStage(ctx, runID, "persist", "ok", time.Since(started))

	// Enrich.
	if opts.SkipEnrich || o.enricher == nil {
		zap.L().Info("pipeline: enrichment skipped")
		return stats, nil
	}
	started = time.Now()
	enriched := o.enricher.Enrich(ctx, locations)
	if err := o.persist(filepath.Join(o.cfg.Data.Dir, EnrichedFile), enriched); err != nil {
		o.trackStage(ctx, runID, "enrich", "failed", time.Since(started))
		return stats, err
	}
	o.trackStage(ctx, runID, "enrich", "ok", time.Since(started))

	zap.L().Info("pipeline: run complete",
		zap.Int("sheet_records", stats.SheetRecords),
		zap.Int("map_records", stats.MapRecords),
		zap.Int("matched", stats.Matched),
		zap.Int("locations", stats.Locations),
	)
	return stats, nil
}

// Enrich re-runs the enrichment pass over the persisted combined collection.
// The enriched file is always regenerable from the combined file.
func (o *Orchestrator) Enrich(ctx context.Context) (int, error) {
	if o.enricher == nil {
		return 0, eris.New("pipeline: no enricher configured")
	}
	locations, err := model.ReadCollection(filepath.Join(o.cfg.Data.Dir, CombinedFile))
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read combined collection")
	}
	enriched := o.enricher.Enrich(ctx, locations)
	if err := o.persist(filepath.Join(o.cfg.Data.Dir, EnrichedFile), enriched); err != nil {
		return 0, err
	}
	return len(enriched), nil
}

func (o *Orchestrator) stageFetchSheets(ctx context.Context, runID string, opts Options) ([]source.SheetRecord, error) {
	started := time.Now()

	if opts.XLSXPath != "" {
		records, _, err := source.ParseWorkbook(opts.XLSXPath, o.cfg.Sheets.Tabs)
		if err != nil {
			o.trackStage(ctx, runID, "fetch-sheets", "failed", time.Since(started))
			return nil, err
		}
		o.trackStage(ctx, runID, "fetch-sheets", "ok", time.Since(started))
		return records, nil
	}

	// Tabs fetch concurrently; results keep tab order.
	perTab := make([][]source.SheetRecord, len(o.cfg.Sheets.Tabs))
	g, gctx := errgroup.WithContext(ctx)
	for i, tab := range o.cfg.Sheets.Tabs {
		i, tab := i, tab
		g.Go(func() error {
			text, err := o.fetchCached(gctx, "sheets:"+tab.GID, o.cfg.Sheets.SheetCSVURL(tab), cache.TTLSheets, opts.ForceRefresh)
			if err != nil {
				return eris.Wrapf(err, "pipeline: fetch tab %s", tab.Name)
			}
			records, _, err := source.ParseSheetCSV(text, tab)
			if err != nil {
				return eris.Wrapf(err, "pipeline: parse tab %s", tab.Name)
			}
			perTab[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.trackStage(ctx, runID, "fetch-sheets", "failed", time.Since(started))
		return nil, err
	}

	var records []source.SheetRecord
	for _, tabRecords := range perTab {
		records = append(records, tabRecords...)
	}
	o.trackStage(ctx, runID, "fetch-sheets", "ok", time.Since(started))
	return records, nil
}

func (o *Orchestrator) stageFetchMaps(ctx context.Context, runID string, opts Options) ([]source.MapRecord, error) {
	started := time.Now()

	text, err := o.fetchCached(ctx, "maps:"+o.cfg.Maps.ID, o.cfg.Maps.KMLURL(), cache.TTLMaps, opts.ForceRefresh)
	if err != nil {
		o.trackStage(ctx, runID, "fetch-maps", "failed", time.Since(started))
		return nil, eris.Wrap(err, "pipeline: fetch kml")
	}

	records, _ := source.ParseKML(text)
	o.trackStage(ctx, runID, "fetch-maps", "ok", time.Since(started))
	return records, nil
}

func (o *Orchestrator) fetchCached(ctx context.Context, key, url string, ttl time.Duration, force bool) (string, error) {
	if o.cache != nil && !force {
		var cached string
		if o.cache.Get(key, ttl, &cached) {
			zap.L().Debug("pipeline: cache hit", zap.String("key", key))
			return cached, nil
		}
	}
	text, err := o.fetch.FetchText(ctx, url)
	if err != nil {
		// A stale payload beats an empty source.
		if o.cache != nil {
			var stale string
			if o.cache.GetStale(key, &stale) {
				zap.L().Warn("pipeline: live fetch failed, serving last good cache",
					zap.String("key", key),
					zap.Error(err),
				)
				return stale, nil
			}
		}
		return "", err
	}
	if o.cache != nil {
		if err := o.cache.Put(key, text); err != nil {
			zap.L().Warn("pipeline: cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return text, nil
}

// mergeSources resolves every map record against the sheet index, then emits
// the unclaimed sheet rows as singletons, and deduplicates the union.
func (o *Orchestrator) mergeSources(sheetRecords []source.SheetRecord, mapRecords []source.MapRecord, stats *Stats) []model.Location {
	ix := linker.NewIndex(sheetRecords)

	var locations []model.Location
	for _, mp := range mapRecords {
		if m, ok := ix.Match(mp); ok {
			locations = append(locations, merge.Pair(m.Record, mp, m.Type, m.Confidence))
			stats.Matched++
		} else {
			locations = append(locations, merge.MapSingleton(mp))
			stats.MapOnly++
		}
	}
	for _, rec := range ix.Unused() {
		locations = append(locations, merge.SheetSingleton(rec))
		stats.SheetOnly++
	}

	return merge.Dedupe(locations)
}

func (o *Orchestrator) persist(path string, locations []model.Location) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create data dir for %s", path)
	}
	if err := model.WriteCollection(path, locations); err != nil {
		return eris.Wrapf(err, "pipeline: persist %s", path)
	}
	zap.L().Info("pipeline: persisted collection",
		zap.String("path", path),
		zap.Int("locations", len(locations)),
	)
	return nil
}

func (o *Orchestrator) trackStage(ctx context.Context, runID, name, status string, d time.Duration) {
	if o.store == nil || runID == "" {
		return
	}
	err := o.store.RecordStage(ctx, store.Stage{
		RunID:    runID,
		Name:     name,
		Status:   status,
		Duration: d,
	})
	if err != nil {
		zap.L().Warn("pipeline: stage not recorded", zap.String("stage", name), zap.Error(err))
	}
}
