package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
  <Folder>
    <name>Central</name>
    <Placemark>
      <name>Plaza Singapura</name>
      <description><![CDATA[Level 3<br>Address: 68 Orchard Road, Singapore 238839<br>Female: Yes]]></description>
      <coordinates>103.8458,1.3008,0</coordinates>
    </Placemark>
  </Folder>
  <Placemark>
    <n>Jewel Changi Airport</n>
    <description>Near Gate 4. Male: Yes</description>
    <coordinates>
      103.9890,1.3601
    </coordinates>
  </Placemark>
  <Placemark>
    <name>Broken Coords</name>
    <coordinates>abc,def</coordinates>
  </Placemark>
  <Placemark>
    <name>London Eye</name>
    <coordinates>-0.1196,51.5033,0</coordinates>
  </Placemark>
  <Placemark>
    <name>No Coords At All</name>
  </Placemark>
</Document>
</kml>`

func TestParseKML(t *testing.T) {
	records, stats := ParseKML(sampleKML)

	assert.Equal(t, 5, stats.Placemarks)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 3, stats.Dropped)
	require.Len(t, records, 2)

	plaza := records[0]
	assert.Equal(t, "Plaza Singapura", plaza.RawName)
	assert.Contains(t, plaza.Description, "68 Orchard Road")
	assert.NotContains(t, plaza.Description, "CDATA")
	assert.InDelta(t, 103.8458, plaza.Coordinates.Lng, 1e-9)
	assert.InDelta(t, 1.3008, plaza.Coordinates.Lat, 1e-9)
	assert.Equal(t, "Central", plaza.FolderRegion)

	jewel := records[1]
	assert.Equal(t, "Jewel Changi Airport", jewel.RawName)
	assert.InDelta(t, 103.9890, jewel.Coordinates.Lng, 1e-9)
	assert.InDelta(t, 1.3601, jewel.Coordinates.Lat, 1e-9)
	assert.Empty(t, jewel.FolderRegion)
}

func TestParseKMLFolderResolution(t *testing.T) {
	// Same placemark name in two folders, and the first folder declares its
	// own name only after its placemark.
	kml := `<kml><Document>
	<Folder>
	  <Placemark><name>Community Club</name><coordinates>103.7000,1.3400,0</coordinates></Placemark>
	  <name>West</name>
	</Folder>
	<Folder>
	  <name>East</name>
	  <Placemark><name>Community Club</name><coordinates>103.9500,1.3500,0</coordinates></Placemark>
	</Folder>
	</Document></kml>`

	records, stats := ParseKML(kml)
	require.Len(t, records, 2)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, "West", records[0].FolderRegion)
	assert.Equal(t, "East", records[1].FolderRegion)
}

func TestParseKMLLongitudeFirst(t *testing.T) {
	// The coordinate triplet is lng,lat[,alt]; swapping the order would put
	// the point far outside the bounding box and it must be dropped.
	kml := `<Placemark><name>Swapped</name><coordinates>1.3008,103.8458,0</coordinates></Placemark>`
	records, stats := ParseKML(kml)
	assert.Empty(t, records)
	assert.Equal(t, 1, stats.Dropped)
}

func TestParseKMLEmptyDocument(t *testing.T) {
	records, stats := ParseKML("<kml></kml>")
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.Placemarks)
}
