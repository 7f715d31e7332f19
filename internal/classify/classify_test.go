package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twbmap/twb-cli/internal/model"
)

func TestRegionAliasTable(t *testing.T) {
	tests := []struct {
		label string
		want  model.Region
	}{
		{"North", model.RegionNorth},
		{"n", model.RegionNorth},
		{"northern", model.RegionNorth},
		{"woodlands", model.RegionNorth},
		{"Yishun", model.RegionNorth},
		{"sentosa", model.RegionSouth},
		{"Tampines", model.RegionEast},
		{"jurong", model.RegionWest},
		{"CBD", model.RegionCentral},
		{"north east", model.RegionNorthEast},
		{"Punggol", model.RegionNorthEast},
		{"university", model.RegionInstitutions},
		{"Institutions", model.RegionInstitutions},
	}
	for _, tt := range tests {
		loc := model.Location{Region: model.Region(tt.label)}
		assert.Equal(t, tt.want, Region(loc), tt.label)
	}
}

func TestRegionFromAddressTokens(t *testing.T) {
	loc := model.Location{
		Region:  model.RegionUnknown,
		Address: "10 Tampines Central 1, Singapore 529536",
	}
	assert.Equal(t, model.RegionEast, Region(loc))
}

func TestRegionFromCoordinateBoxes(t *testing.T) {
	tests := []struct {
		name string
		c    model.Coordinates
		want model.Region
	}{
		// Inside both the North-East and North boxes; North-East is the more
		// specific claim and must win.
		{"north-east before north", model.Coordinates{Lng: 103.90, Lat: 1.40}, model.RegionNorthEast},
		{"east", model.Coordinates{Lng: 103.99, Lat: 1.34}, model.RegionEast},
		{"north", model.Coordinates{Lng: 103.80, Lat: 1.42}, model.RegionNorth},
		{"south", model.Coordinates{Lng: 103.82, Lat: 1.26}, model.RegionSouth},
		{"central", model.Coordinates{Lng: 103.84, Lat: 1.30}, model.RegionCentral},
		{"out of bounds", model.Coordinates{Lng: -0.12, Lat: 51.50}, model.RegionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionFromCoords(tt.c))
		})
	}
}

func TestRegionUnknownWhenNothingApplies(t *testing.T) {
	loc := model.Location{Region: model.RegionUnknown}
	assert.Equal(t, model.RegionUnknown, Region(loc))
}

func TestTypeLadder(t *testing.T) {
	tests := []struct {
		name string
		loc  model.Location
		want model.FacilityType
	}{
		{"explicit label", model.Location{FacilityType: "hotel"}, model.TypeHotel},
		{"explicit shopping alias", model.Location{FacilityType: "shopping centre"}, model.TypeMall},
		{"known mall name", model.Location{Name: "VivoCity"}, model.TypeMall},
		{"jewel is a mall", model.Location{Name: "Jewel Changi Airport"}, model.TypeMall},
		{"hotel keyword", model.Location{Name: "Shangri-La Singapore"}, model.TypeHotel},
		{"public keyword", model.Location{Name: "Queenstown Public Library"}, model.TypePublic},
		{"restaurant keyword", model.Location{Name: "Uncle Bob Bakery"}, model.TypeRestaurant},
		{"office keyword", model.Location{Name: "OCBC Tower"}, model.TypeOffice},
		{"postal range mall", model.Location{Name: "Somewhere", Address: "Singapore 238859"}, model.TypeMall},
		{"regex fallback", model.Location{Name: "Gift Store"}, model.TypeMall},
		{"nothing matches", model.Location{Name: "Xyzzy"}, model.TypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Type(tt.loc))
		})
	}
}

// Mall is scanned before Public, so overlapping keywords like "centre"
// resolve to Mall.
func TestTypeMallBeatsPublicOnOverlap(t *testing.T) {
	loc := model.Location{Name: "Tampines Centre"}
	assert.Equal(t, model.TypeMall, Type(loc))
}

// Classification is a pure function: repeated calls over the same input
// always agree, including for inputs nothing in the tables covers.
func TestClassificationDeterministic(t *testing.T) {
	locs := []model.Location{
		{Name: "Xyzzy"},
		{Name: "Qwerty Building"},
		{Name: "VivoCity", Address: "1 HarbourFront Walk"},
		{Region: "somewhere odd", Coordinates: model.Coordinates{Lng: 103.84, Lat: 1.30}},
	}
	for _, loc := range locs {
		r, ty := Region(loc), Type(loc)
		for i := 0; i < 50; i++ {
			assert.Equal(t, r, Region(loc))
			assert.Equal(t, ty, Type(loc))
		}
	}
}
