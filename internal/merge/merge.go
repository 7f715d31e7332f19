// Package merge fuses matched sheet/map record pairs and source singletons
// into canonical locations, applies the fake-address filter, and deduplicates
// the combined collection.
package merge

import (
	"hash/fnv"
	"strings"

	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/internal/normalize"
	"github.com/twbmap/twb-cli/internal/source"
)

// Source labels recorded on each location.
const (
	SourceSheets = "google-sheets"
	SourceMaps   = "google-maps"
	SourceMerged = "merged"
)

// Pair merges one matched sheet/map pair. The sheet side wins the curated
// fields (name, address, region), the map side wins coordinates; booleans OR
// across sources and provenance trails accumulate.
func Pair(sheet source.SheetRecord, mp source.MapRecord, matchType model.MatchType, confidence float64) model.Location {
	loc := fromSheet(sheet)
	loc.Coordinates = mp.Coordinates
	loc.Source = SourceMerged
	loc.MatchType = matchType
	loc.MatchConfidence = confidence

	if loc.Name == "" {
		loc.Name = strings.TrimSpace(mp.RawName)
	}
	if loc.Address == "" {
		loc.Address = ExtractAddress(mp.Description)
	}
	if loc.Region == model.RegionUnknown && mp.FolderRegion != "" {
		loc.Region = model.Region(mp.FolderRegion)
	}

	d := describe(mp.Description)
	loc.Amenities.Or(d.amenities)
	if loc.Gender == model.GenderAny && d.gender != model.GenderAny {
		loc.Gender = d.gender
	}
	loc.Provenance.AddMap(mp.Description)

	return loc
}

// SheetSingleton builds a location from a sheet row no placemark claimed.
// Every location must carry a coordinate pair, so rows without one get a
// deterministic placeholder inside the Singapore box.
func SheetSingleton(sheet source.SheetRecord) model.Location {
	loc := fromSheet(sheet)
	loc.Source = SourceSheets
	loc.MatchType = model.MatchNone
	if !sheet.HasCoords {
		loc.Coordinates = placeholderCoords(loc.ID)
	}
	return loc
}

// MapSingleton builds a location from a placemark no sheet row matched.
func MapSingleton(mp source.MapRecord) model.Location {
	name := strings.TrimSpace(mp.RawName)
	d := describe(mp.Description)

	loc := model.Location{
		ID:          model.MapID(name, mp.Coordinates),
		Name:        name,
		Address:     ExtractAddress(mp.Description),
		Coordinates: mp.Coordinates,
		Region:      model.RegionUnknown,
		HasBidet:    true,
		Gender:      d.gender,
		Amenities:   d.amenities,
		Source:      SourceMaps,
		MatchType:   model.MatchNone,
	}
	// Community-mapped toilets are free unless stated otherwise.
	loc.Amenities.FreeEntry = true
	if mp.FolderRegion != "" {
		loc.Region = model.Region(mp.FolderRegion)
	}
	loc.Provenance.AddMap(mp.Description)
	return loc
}

func fromSheet(sheet source.SheetRecord) model.Location {
	name := strings.TrimSpace(sheet.RawName)
	address := strings.TrimSpace(sheet.RawAddress)
	if IsFakeAddress(name, address) {
		zap.L().Debug("merge: cleared fake address",
			zap.String("name", name),
			zap.String("address", address),
		)
		address = ""
	}

	loc := model.Location{
		ID:        model.SheetID(name, address),
		Name:      name,
		Address:   address,
		Region:    model.RegionUnknown,
		HasBidet:  true,
		Gender:    sheet.Gender,
		Source:    SourceSheets,
		SourceTab: sheet.SourceTab,
		Amenities: model.Amenities{
			WheelchairAccess: sheet.Wheelchair,
			BabyChanging:     sheet.BabyChanging,
			// Community-mapped toilets are free unless stated otherwise.
			FreeEntry: true,
		},
	}
	if sheet.Region != "" {
		loc.Region = canonicalRegionLabel(sheet.Region)
	}
	if strings.Contains(strings.ToUpper(sheet.SourceTab), "HOTEL") {
		loc.FacilityType = model.TypeHotel
	}
	if sheet.HasCoords {
		loc.Coordinates = sheet.Coordinates
	}
	loc.Provenance.AddSheet(sheet.Remarks)
	return loc
}

// IsFakeAddress reports whether an address is just the name echoed back. A
// real Singapore address is either long, contains "singapore", or carries a
// postal-code-like digit run.
func IsFakeAddress(name, address string) bool {
	if address == "" {
		return false
	}
	if !strings.EqualFold(name, address) {
		return false
	}
	if len(address) >= 25 {
		return false
	}
	if strings.Contains(strings.ToLower(address), "singapore") {
		return false
	}
	return !longDigitRunRe.MatchString(address)
}

// canonicalRegionLabel passes through labels that already are canonical
// region names; anything else stays as typed for the classifier's alias
// table to resolve.
func canonicalRegionLabel(s string) model.Region {
	return model.Region(strings.TrimSpace(s))
}

// placeholderCoords synthesizes a coordinate pair from the location ID so a
// re-run over unchanged input places the point at the same spot. The target
// window sits strictly inside the Singapore bounding box.
func placeholderCoords(id string) model.Coordinates {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum64()

	latFrac := float64(sum&0xffffffff) / float64(1<<32)
	lngFrac := float64(sum>>32) / float64(1<<32)

	return model.Coordinates{
		Lat: 1.25 + latFrac*0.20,
		Lng: 103.65 + lngFrac*0.30,
	}
}

// Dedupe collapses locations sharing the same (normalized name, rounded
// coordinate) key, keeping the first occurrence and folding the later ones'
// flags and provenance into it. Input order is preserved.
func Dedupe(locs []model.Location) []model.Location {
	seen := make(map[string]int, len(locs))
	var out []model.Location

	for _, loc := range locs {
		key := normalize.Key(loc.Name) + "|" + loc.Coordinates.Key5()
		if i, dup := seen[key]; dup {
			kept := &out[i]
			kept.HasBidet = kept.HasBidet || loc.HasBidet
			kept.Amenities.Or(loc.Amenities)
			for _, s := range loc.Provenance.Sheets {
				kept.Provenance.AddSheet(s)
			}
			for _, m := range loc.Provenance.Maps {
				kept.Provenance.AddMap(m)
			}
			if kept.Address == "" {
				kept.Address = loc.Address
			}
			zap.L().Debug("merge: collapsed duplicate", zap.String("name", loc.Name))
			continue
		}
		seen[key] = len(out)
		out = append(out, loc)
	}
	return out
}
