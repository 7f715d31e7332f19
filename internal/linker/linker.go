// Package linker resolves map placemarks against spreadsheet rows. It builds
// an in-memory index over the sheet side and matches each map record through
// a four-pass cascade:
//  1. Shared coordinates (4-decimal key) — confidence 1.0
//  2. Exact name, case-insensitive — confidence 1.0
//  3. Normalized name key — confidence 0.9
//  4. Fuzzy name similarity — confidence = score, threshold 0.65
//
// Every sheet row is consumed at most once; later passes only see rows the
// earlier passes left behind.
package linker

import (
	"strings"

	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/internal/normalize"
	"github.com/twbmap/twb-cli/internal/source"
)

// FuzzyThreshold is the minimum similarity score pass 4 accepts.
const FuzzyThreshold = 0.65

// Match is the outcome of resolving one map record.
type Match struct {
	Record     source.SheetRecord
	Type       model.MatchType
	Confidence float64
}

// Index holds the sheet records and the lookup tables the cascade consults.
type Index struct {
	records []source.SheetRecord
	used    []bool

	byCoord map[string][]int
	byExact map[string][]int
	byNorm  map[string][]int
}

// NewIndex builds the lookup tables over the given sheet records. Input order
// is preserved: when several rows share a key, the earliest row wins.
func NewIndex(records []source.SheetRecord) *Index {
	ix := &Index{
		records: records,
		used:    make([]bool, len(records)),
		byCoord: make(map[string][]int),
		byExact: make(map[string][]int),
		byNorm:  make(map[string][]int),
	}
	for i, rec := range records {
		if rec.HasCoords {
			k := rec.Coordinates.Key4()
			ix.byCoord[k] = append(ix.byCoord[k], i)
		}
		if name := strings.ToLower(strings.TrimSpace(rec.RawName)); name != "" {
			ix.byExact[name] = append(ix.byExact[name], i)
		}
		if key := normalize.Key(rec.RawName); key != "" {
			ix.byNorm[key] = append(ix.byNorm[key], i)
		}
	}
	return ix
}

// Match resolves one map record against the unconsumed sheet rows. On success
// the winning row is marked consumed so it cannot match again.
func (ix *Index) Match(rec source.MapRecord) (Match, bool) {
	if i, ok := ix.firstUnused(ix.byCoord[rec.Coordinates.Key4()]); ok {
		return ix.take(i, model.MatchCoordinates, 1.0), true
	}

	exact := strings.ToLower(strings.TrimSpace(rec.RawName))
	if i, ok := ix.firstUnused(ix.byExact[exact]); ok {
		return ix.take(i, model.MatchExactName, 1.0), true
	}

	if key := normalize.Key(rec.RawName); key != "" {
		if i, ok := ix.firstUnused(ix.byNorm[key]); ok {
			return ix.take(i, model.MatchNormalizedName, 0.9), true
		}
	}

	if i, score, ok := ix.bestFuzzy(rec.RawName); ok {
		return ix.take(i, model.MatchFuzzy, score), true
	}

	return Match{Type: model.MatchNone}, false
}

// Unused returns the sheet rows no map record claimed, in input order. These
// become sheet-only locations downstream.
func (ix *Index) Unused() []source.SheetRecord {
	var out []source.SheetRecord
	for i, rec := range ix.records {
		if !ix.used[i] {
			out = append(out, rec)
		}
	}
	return out
}

func (ix *Index) firstUnused(candidates []int) (int, bool) {
	for _, i := range candidates {
		if !ix.used[i] {
			return i, true
		}
	}
	return 0, false
}

// bestFuzzy scans every unconsumed row for the highest similarity at or above
// the threshold. Ties break to the earliest row, so results are stable across
// runs.
func (ix *Index) bestFuzzy(name string) (int, float64, bool) {
	best := -1
	bestScore := 0.0
	for i := range ix.records {
		if ix.used[i] {
			continue
		}
		score := normalize.Similarity(name, ix.records[i].RawName)
		if score >= FuzzyThreshold && score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best, bestScore, true
}

func (ix *Index) take(i int, t model.MatchType, confidence float64) Match {
	ix.used[i] = true
	zap.L().Debug("linker: matched",
		zap.String("sheet_name", ix.records[i].RawName),
		zap.String("type", string(t)),
		zap.Float64("confidence", confidence),
	)
	return Match{Record: ix.records[i], Type: t, Confidence: confidence}
}
