// Package model defines the canonical Location record produced by the fusion
// pipeline and its GeoJSON encoding.
package model

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Region is one of Singapore's planning zones, plus the non-geographic
// Institutions bucket used by the maps export.
type Region string

const (
	RegionNorth        Region = "North"
	RegionSouth        Region = "South"
	RegionEast         Region = "East"
	RegionWest         Region = "West"
	RegionCentral      Region = "Central"
	RegionNorthEast    Region = "North-East"
	RegionInstitutions Region = "Institutions"
	RegionUnknown      Region = "Unknown"
)

// FacilityType is the coarse venue category of a location.
type FacilityType string

const (
	TypeMall       FacilityType = "Mall"
	TypeHotel      FacilityType = "Hotel"
	TypePublic     FacilityType = "Public"
	TypeRestaurant FacilityType = "Restaurant"
	TypeOffice     FacilityType = "Office"
	TypeOther      FacilityType = "Other"
)

// Gender tags which toilets a record covers.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderAny    Gender = "any"
)

// MatchType records which linker strategy produced a merged location.
type MatchType string

const (
	MatchCoordinates    MatchType = "coordinates"
	MatchExactName      MatchType = "exact-name"
	MatchNormalizedName MatchType = "normalized-name"
	MatchFuzzy          MatchType = "fuzzy-match"
	MatchNone           MatchType = "none"
)

// Singapore bounding box. Coordinates outside it are a data-quality defect.
const (
	MinLat = 1.2
	MaxLat = 1.5
	MinLng = 103.5
	MaxLng = 104.1
)

// Coordinates is a lng/lat pair (GeoJSON order: longitude first).
type Coordinates struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// InBounds reports whether the pair is finite and inside the Singapore box.
func (c Coordinates) InBounds() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= MinLat && c.Lat <= MaxLat && c.Lng >= MinLng && c.Lng <= MaxLng
}

// Key4 returns the coordinate pair rounded to 4 decimal places (~11m),
// the resolution used for coordinate matching.
func (c Coordinates) Key4() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lng, c.Lat)
}

// Key5 returns the pair rounded to 5 decimal places, the dedup resolution.
func (c Coordinates) Key5() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lng, c.Lat)
}

// Amenities holds per-location amenity flags. The first three are always
// known; the pointer fields are only present after enrichment.
type Amenities struct {
	WheelchairAccess bool  `json:"wheelchairAccess"`
	BabyChanging     bool  `json:"babyChanging"`
	FreeEntry        bool  `json:"freeEntry"`
	HandDryer        *bool `json:"handDryer,omitempty"`
	SoapDispenser    *bool `json:"soapDispenser,omitempty"`
	PaperTowels      *bool `json:"paperTowels,omitempty"`
	ToiletPaper      *bool `json:"toiletPaper,omitempty"`
}

// Or merges another amenity set into this one, keeping any positive
// assertion from either side.
func (a *Amenities) Or(b Amenities) {
	a.WheelchairAccess = a.WheelchairAccess || b.WheelchairAccess
	a.BabyChanging = a.BabyChanging || b.BabyChanging
	a.FreeEntry = a.FreeEntry || b.FreeEntry
}

// Provenance keeps the free-text comment trails from each source. The
// trails are never merged into one field.
type Provenance struct {
	Sheets []string `json:"sheets"`
	Maps   []string `json:"maps"`
}

// AddSheet appends a sheet-side remark, deduplicated by exact string.
func (p *Provenance) AddSheet(s string) {
	p.Sheets = appendUnique(p.Sheets, s)
}

// AddMap appends a map-side remark, deduplicated by exact string.
func (p *Provenance) AddMap(s string) {
	p.Maps = appendUnique(p.Maps, s)
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// Accessibility describes enrichment-derived accessibility details.
type Accessibility struct {
	HasRamp         bool `json:"hasRamp"`
	DoorWidthCM     int  `json:"doorWidth"`
	GrabBars        bool `json:"grabBars"`
	EmergencyButton bool `json:"emergencyButton"`
}

// Location is the canonical merged record, formed from at most one sheet
// record and at most one map record. Immutable within a pipeline run.
type Location struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Address         string       `json:"address"`
	Coordinates     Coordinates  `json:"-"`
	Region          Region       `json:"region"`
	FacilityType    FacilityType `json:"type"`
	HasBidet        bool         `json:"hasBidet"`
	Gender          Gender       `json:"gender"`
	Amenities       Amenities    `json:"amenities"`
	Provenance      Provenance   `json:"sourceComments"`
	MatchType       MatchType    `json:"matchType"`
	MatchConfidence float64      `json:"matchConfidence"`
	Source          string       `json:"source"`
	SourceTab       string       `json:"sourceTab,omitempty"`

	// Presentation-only fields filled by the enrichment pass.
	Floor              string         `json:"floor,omitempty"`
	Cleanliness        float64        `json:"cleanliness,omitempty"`
	VisitCount         int            `json:"visitCount,omitempty"`
	WaterTemperature   string         `json:"waterTemperature,omitempty"`
	Accessibility      *Accessibility `json:"accessibility,omitempty"`
	MaintenanceContact string         `json:"maintenanceContact,omitempty"`
}

// SheetID derives the stable identifier for a sheet-sourced location from
// its name and address. Re-runs over unchanged input produce the same ID.
func SheetID(name, address string) string {
	return "sheets-" + hash8(name + address)
}

// MapID derives the stable identifier for a map-sourced location from its
// name and coordinate key.
func MapID(name string, c Coordinates) string {
	return "maps-" + hash8(name+"|"+c.Key4())
}

func hash8(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
