package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/internal/source"
)

func TestPairPrecedence(t *testing.T) {
	sheet := source.SheetRecord{
		RawName:    "VivoCity",
		RawAddress: "1 HarbourFront Walk, Singapore 098585",
		Remarks:    "Level 2 near Toys R Us",
		Region:     "South",
		Gender:     model.GenderMale,
		SourceTab:  "MALE TOILETS",
	}
	mp := source.MapRecord{
		RawName:     "Vivo City",
		Description: "Near the waterfront entrance. Wheelchair friendly.",
		Coordinates: model.Coordinates{Lng: 103.8222, Lat: 1.2644},
	}

	loc := Pair(sheet, mp, model.MatchNormalizedName, 0.9)

	assert.Equal(t, "VivoCity", loc.Name)
	assert.Equal(t, "1 HarbourFront Walk, Singapore 098585", loc.Address)
	assert.Equal(t, model.Region("South"), loc.Region)
	assert.Equal(t, mp.Coordinates, loc.Coordinates)
	assert.Equal(t, SourceMerged, loc.Source)
	assert.Equal(t, model.MatchNormalizedName, loc.MatchType)
	assert.Equal(t, 0.9, loc.MatchConfidence)
	assert.True(t, loc.HasBidet)
	assert.Equal(t, model.GenderMale, loc.Gender)
	assert.True(t, loc.Amenities.WheelchairAccess)
	assert.Equal(t, []string{"Level 2 near Toys R Us"}, loc.Provenance.Sheets)
	assert.Equal(t, []string{mp.Description}, loc.Provenance.Maps)
}

func TestPairFakeAddressFallsBackToDescription(t *testing.T) {
	sheet := source.SheetRecord{
		RawName:    "Bugis Junction",
		RawAddress: "Bugis Junction",
		Gender:     model.GenderFemale,
		SourceTab:  "FEMALE TOILETS",
	}
	mp := source.MapRecord{
		RawName:     "Bugis Junction",
		Description: "Address: 200 Victoria Street, Singapore 188021",
		Coordinates: model.Coordinates{Lng: 103.8553, Lat: 1.2994},
	}

	loc := Pair(sheet, mp, model.MatchExactName, 1.0)
	assert.Equal(t, "200 Victoria Street, Singapore 188021", loc.Address)
}

func TestIsFakeAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"Bugis Junction", "Bugis Junction", true},
		{"Bugis Junction", "bugis junction", true},
		{"Bugis Junction", "200 Victoria Street", false},
		{"Raffles City Singapore", "Raffles City Singapore", false},
		{"Somewhere 098585 Building", "Somewhere 098585 Building", false},
		{"A Name Longer Than TwentyFive", "A Name Longer Than TwentyFive", false},
		{"Anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFakeAddress(tt.name, tt.address), "%s / %s", tt.name, tt.address)
	}
}

func TestSheetSingletonSynthesizesCoordinates(t *testing.T) {
	sheet := source.SheetRecord{
		RawName:    "Mystery Cafe",
		RawAddress: "12 Unknown Street, Singapore 123456",
		Gender:     model.GenderAny,
		SourceTab:  "HOTEL ROOMS W BIDET",
	}

	a := SheetSingleton(sheet)
	b := SheetSingleton(sheet)

	assert.True(t, a.Coordinates.InBounds())
	assert.Equal(t, a.Coordinates, b.Coordinates, "placeholder must be deterministic")
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, model.TypeHotel, a.FacilityType)
	assert.Equal(t, model.MatchNone, a.MatchType)
	assert.Equal(t, SourceSheets, a.Source)
}

func TestSheetSingletonKeepsResolvedCoordinates(t *testing.T) {
	sheet := source.SheetRecord{
		RawName:     "Coord Place",
		RawAddress:  "1 Real Road, Singapore 234567",
		Gender:      model.GenderMale,
		SourceTab:   "MALE TOILETS",
		Coordinates: model.Coordinates{Lng: 103.8502, Lat: 1.3001},
		HasCoords:   true,
	}
	loc := SheetSingleton(sheet)
	assert.Equal(t, sheet.Coordinates, loc.Coordinates)
}

func TestMapSingleton(t *testing.T) {
	mp := source.MapRecord{
		RawName:      "Jewel Changi Airport",
		Description:  "Ladies room near Gate 4. Handicap accessible.",
		Coordinates:  model.Coordinates{Lng: 103.9890, Lat: 1.3601},
		FolderRegion: "East",
	}

	loc := MapSingleton(mp)
	assert.Equal(t, "Jewel Changi Airport", loc.Name)
	assert.Equal(t, "", loc.Address)
	assert.Equal(t, model.Region("East"), loc.Region)
	assert.Equal(t, model.GenderFemale, loc.Gender)
	assert.True(t, loc.Amenities.WheelchairAccess)
	assert.Equal(t, SourceMaps, loc.Source)
	assert.True(t, loc.HasBidet)

	// Same placemark, same ID.
	assert.Equal(t, loc.ID, MapSingleton(mp).ID)
}

func TestAllConstructorsDefaultToFreeEntry(t *testing.T) {
	sheet := source.SheetRecord{
		RawName:   "VivoCity",
		SourceTab: "MALE TOILETS",
	}
	mp := source.MapRecord{
		RawName:     "Vivo City",
		Coordinates: model.Coordinates{Lng: 103.8222, Lat: 1.2644},
	}

	assert.True(t, Pair(sheet, mp, model.MatchNormalizedName, 0.9).Amenities.FreeEntry)
	assert.True(t, SheetSingleton(sheet).Amenities.FreeEntry)
	assert.True(t, MapSingleton(mp).Amenities.FreeEntry)
}

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"Address: 68 Orchard Road, Singapore 238839<br>Level 3", "68 Orchard Road, Singapore 238839"},
		{"Location: 10 Bayfront Avenue, Singapore", "10 Bayfront Avenue, Singapore"},
		{"Found at 313 Orchard Rd, Singapore near the atrium", "313 Orchard Rd, Singapore"},
		{"No address here at all", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractAddress(tt.desc), tt.desc)
	}
}

func TestDedupeCollapsesSameNameAndCoordinate(t *testing.T) {
	c := model.Coordinates{Lng: 103.8458, Lat: 1.3008}
	a := model.Location{ID: "maps-1", Name: "Plaza Singapura", Coordinates: c, HasBidet: true}
	a.Provenance.AddMap("first description")
	b := model.Location{ID: "maps-2", Name: "Plaza  Singapura", Coordinates: c, Address: "68 Orchard Road"}
	b.Provenance.AddMap("second description")
	b.Amenities.BabyChanging = true
	other := model.Location{ID: "maps-3", Name: "Plaza Singapura", Coordinates: model.Coordinates{Lng: 103.9, Lat: 1.35}}

	out := Dedupe([]model.Location{a, b, other})
	require.Len(t, out, 2)

	kept := out[0]
	assert.Equal(t, "maps-1", kept.ID)
	assert.True(t, kept.HasBidet)
	assert.True(t, kept.Amenities.BabyChanging)
	assert.Equal(t, "68 Orchard Road", kept.Address)
	assert.Equal(t, []string{"first description", "second description"}, kept.Provenance.Maps)

	assert.Equal(t, "maps-3", out[1].ID)
}
