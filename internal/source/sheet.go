// Package source parses the raw spreadsheet (CSV/XLSX) and map (KML) exports
// into normalized intermediate records. Parsers are pure: they consume text
// already fetched by the caller.
package source

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/model"
)

// Tab describes one spreadsheet tab. Column headers differ per tab: the
// hotel tab calls its name column "Hotel" and its address column "Location".
type Tab struct {
	Name          string       `mapstructure:"name" yaml:"name"`
	GID           string       `mapstructure:"gid" yaml:"gid"`
	NameHeader    string       `mapstructure:"name_header" yaml:"name_header"`
	AddressHeader string       `mapstructure:"address_header" yaml:"address_header"`
	RemarksHeader string       `mapstructure:"remarks_header" yaml:"remarks_header"`
	RegionHeader  string       `mapstructure:"region_header" yaml:"region_header"`
	Gender        model.Gender `mapstructure:"gender" yaml:"gender"`
}

// SheetRecord is one usable row from one spreadsheet tab.
type SheetRecord struct {
	RawName    string
	RawAddress string
	Remarks    string
	Region     string
	Gender     model.Gender
	SourceTab  string

	// Optional resolved coordinates; most sheet rows have none.
	Coordinates model.Coordinates
	HasCoords   bool

	Wheelchair   bool
	BabyChanging bool
}

// SheetStats counts parse outcomes for one tab.
type SheetStats struct {
	Rows    int
	Kept    int
	Dropped int
}

// ParseSheetCSV parses one tab's CSV export. Preamble/title rows before the
// real header are skipped by scanning for the line carrying both expected
// header tokens. Rows without a name, or with neither address nor usable
// coordinates, are dropped and counted rather than raised as errors.
func ParseSheetCSV(text string, tab Tab) ([]SheetRecord, SheetStats, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, SheetStats{}, eris.Wrapf(err, "source: parse csv for tab %s", tab.Name)
	}
	return recordsFromRows(rows, tab)
}

func recordsFromRows(rows [][]string, tab Tab) ([]SheetRecord, SheetStats, error) {
	headerIdx := -1
	var header []string
	for i, row := range rows {
		if rowHasHeaders(row, tab.NameHeader, tab.AddressHeader) {
			headerIdx = i
			header = row
			break
		}
	}
	if headerIdx < 0 {
		return nil, SheetStats{}, eris.Errorf("source: header row with %q and %q not found in tab %s",
			tab.NameHeader, tab.AddressHeader, tab.Name)
	}

	cols := columnIndex(header)
	stats := SheetStats{}
	var records []SheetRecord

	for _, row := range rows[headerIdx+1:] {
		if emptyRow(row) {
			continue
		}
		stats.Rows++

		rec := SheetRecord{
			RawName:    cell(row, cols, tab.NameHeader),
			RawAddress: cell(row, cols, tab.AddressHeader),
			Remarks:    cell(row, cols, tab.RemarksHeader),
			Region:     cell(row, cols, tab.RegionHeader),
			Gender:     tab.Gender,
			SourceTab:  tab.Name,
		}
		if rec.Gender == "" {
			rec.Gender = model.GenderAny
		}

		if lat, lng, ok := coordCells(row, cols); ok {
			c := model.Coordinates{Lng: lng, Lat: lat}
			if c.InBounds() {
				rec.Coordinates = c
				rec.HasCoords = true
			} else {
				zap.L().Warn("source: sheet coordinates outside Singapore bounds",
					zap.String("tab", tab.Name),
					zap.String("name", rec.RawName),
					zap.Float64("lat", lat),
					zap.Float64("lng", lng),
				)
			}
		}

		rec.Wheelchair = ParseBool(cellContains(row, cols, "wheelchair"))
		rec.BabyChanging = ParseBool(cellContains(row, cols, "baby"))

		if rec.RawName == "" || (rec.RawAddress == "" && !rec.HasCoords) {
			stats.Dropped++
			continue
		}
		stats.Kept++
		records = append(records, rec)
	}

	zap.L().Debug("source: parsed sheet tab",
		zap.String("tab", tab.Name),
		zap.Int("rows", stats.Rows),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped),
	)
	return records, stats, nil
}

func rowHasHeaders(row []string, want ...string) bool {
	found := 0
	for _, w := range want {
		for _, c := range row {
			if strings.EqualFold(strings.TrimSpace(c), w) {
				found++
				break
			}
		}
	}
	return found == len(want)
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, exists := cols[key]; !exists && key != "" {
			cols[key] = i
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, header string) string {
	if header == "" {
		return ""
	}
	i, ok := cols[strings.ToLower(header)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// cellContains finds the leftmost column whose header contains the token.
func cellContains(row []string, cols map[string]int, token string) string {
	best := -1
	for key, i := range cols {
		if strings.Contains(key, token) && i < len(row) {
			if best < 0 || i < best {
				best = i
			}
		}
	}
	if best < 0 {
		return ""
	}
	return strings.TrimSpace(row[best])
}

func coordCells(row []string, cols map[string]int) (lat, lng float64, ok bool) {
	latStr := cell(row, cols, "latitude")
	lngStr := cell(row, cols, "longitude")
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseBool interprets boolean-like cell values: true/yes/1/y (any case)
// parse to true, everything else to false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y":
		return true
	default:
		return false
	}
}
