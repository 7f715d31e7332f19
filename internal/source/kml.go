package source

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/model"
)

// MapRecord is one placemark extracted from the KML export.
type MapRecord struct {
	RawName      string
	Description  string
	Coordinates  model.Coordinates
	FolderRegion string
}

// MapStats counts KML parse outcomes.
type MapStats struct {
	Placemarks int
	Kept       int
	Dropped    int
}

var (
	placemarkRe = regexp.MustCompile(`(?s)<Placemark>(.*?)</Placemark>`)
	// Exports are inconsistent about the name tag: some use <name>, older
	// ones <n>.
	nameTagRe   = regexp.MustCompile(`(?is)<(?:name|n)>(.*?)</(?:name|n)>`)
	descTagRe   = regexp.MustCompile(`(?is)<description>(.*?)</description>`)
	cdataRe     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	coordsTagRe = regexp.MustCompile(`(?is)<coordinates>(.*?)</coordinates>`)
	folderRe    = regexp.MustCompile(`(?s)<Folder>(.*?)</Folder>`)
)

// ParseKML extracts placemarks from a raw KML document. Placemarks whose
// coordinates do not parse as two finite numbers inside the Singapore
// bounding box are dropped and counted: out-of-box points are a data-quality
// defect, never silently kept.
func ParseKML(text string) ([]MapRecord, MapStats) {
	stats := MapStats{}
	var records []MapRecord

	folders := folderSpans(text)

	for _, idx := range placemarkRe.FindAllStringSubmatchIndex(text, -1) {
		stats.Placemarks++
		block := text[idx[2]:idx[3]]

		name := ""
		if nm := nameTagRe.FindStringSubmatch(block); nm != nil {
			name = strings.TrimSpace(nm[1])
		}

		desc := ""
		if dm := descTagRe.FindStringSubmatch(block); dm != nil {
			desc = dm[1]
			if cm := cdataRe.FindStringSubmatch(desc); cm != nil {
				desc = cm[1]
			}
			desc = strings.TrimSpace(desc)
		}

		coords, ok := parseCoordinates(block)
		if !ok {
			stats.Dropped++
			zap.L().Warn("source: placemark dropped, unparsable or out-of-bounds coordinates",
				zap.String("name", name),
			)
			continue
		}

		records = append(records, MapRecord{
			RawName:      name,
			Description:  desc,
			Coordinates:  coords,
			FolderRegion: folderNameAt(folders, idx[0]),
		})
		stats.Kept++
	}

	zap.L().Debug("source: parsed kml",
		zap.Int("placemarks", stats.Placemarks),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped),
	)
	return records, stats
}

// parseCoordinates reads the lng,lat[,alt] triplet. KML follows the GeoJSON
// convention: the first value is longitude.
func parseCoordinates(block string) (model.Coordinates, bool) {
	cm := coordsTagRe.FindStringSubmatch(block)
	if cm == nil {
		return model.Coordinates{}, false
	}
	parts := strings.Split(strings.TrimSpace(cm[1]), ",")
	if len(parts) < 2 {
		return model.Coordinates{}, false
	}
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLng != nil || errLat != nil {
		return model.Coordinates{}, false
	}
	c := model.Coordinates{Lng: lng, Lat: lat}
	if !c.InBounds() {
		return model.Coordinates{}, false
	}
	return c, true
}

// folderSpan marks one <Folder> block's extent in the document and its
// display name. The maps export uses folder names as a region grouping.
type folderSpan struct {
	start, end int
	name       string
}

// folderSpans locates every folder by offset so placemarks resolve to their
// enclosing folder positionally rather than by name lookup. The folder's own
// name tag can appear anywhere in the block, including after its first
// placemark, so placemark blocks are stripped before reading it.
func folderSpans(text string) []folderSpan {
	var spans []folderSpan
	for _, idx := range folderRe.FindAllStringSubmatchIndex(text, -1) {
		content := text[idx[2]:idx[3]]
		nm := nameTagRe.FindStringSubmatch(placemarkRe.ReplaceAllString(content, ""))
		if nm == nil {
			continue
		}
		spans = append(spans, folderSpan{
			start: idx[2],
			end:   idx[3],
			name:  strings.TrimSpace(nm[1]),
		})
	}
	return spans
}

func folderNameAt(spans []folderSpan, pos int) string {
	for _, s := range spans {
		if pos >= s.start && pos < s.end {
			return s.name
		}
	}
	return ""
}
