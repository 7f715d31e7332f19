package model

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureCollection converts locations into a GeoJSON feature collection.
// Geometry is always a Point with coordinates in [lng, lat] order.
func FeatureCollection(locs []Location) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(locs))}
	for i := range locs {
		f, err := toFeature(&locs[i])
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

func toFeature(loc *Location) (*geojson.Feature, error) {
	raw, err := json.Marshal(loc)
	if err != nil {
		return nil, eris.Wrapf(err, "model: marshal location %s", loc.ID)
	}
	var props map[string]any
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, eris.Wrapf(err, "model: location properties %s", loc.ID)
	}
	point := geom.NewPointFlat(geom.XY, []float64{loc.Coordinates.Lng, loc.Coordinates.Lat})
	return &geojson.Feature{
		ID:         loc.ID,
		Geometry:   point,
		Properties: props,
	}, nil
}

// Locations decodes a feature collection back into Location records,
// taking coordinates from the geometry rather than the properties.
func Locations(fc *geojson.FeatureCollection) ([]Location, error) {
	locs := make([]Location, 0, len(fc.Features))
	for _, f := range fc.Features {
		raw, err := json.Marshal(f.Properties)
		if err != nil {
			return nil, eris.Wrap(err, "model: marshal feature properties")
		}
		var loc Location
		if err := json.Unmarshal(raw, &loc); err != nil {
			return nil, eris.Wrap(err, "model: unmarshal feature properties")
		}
		if point, ok := f.Geometry.(*geom.Point); ok {
			coords := point.Coords()
			loc.Coordinates = Coordinates{Lng: coords.X(), Lat: coords.Y()}
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// WriteCollection persists locations as a GeoJSON file. The file is written
// whole to a temp path and renamed so readers never observe a partial write.
func WriteCollection(path string, locs []Location) error {
	fc, err := FeatureCollection(locs)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "model: marshal feature collection")
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "model: create dir for %s", path)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "model: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "model: rename %s", path)
	}
	return nil
}

// ReadCollection loads a persisted GeoJSON file back into locations.
func ReadCollection(path string) ([]Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "model: parse %s", path)
	}
	return Locations(&fc)
}
