// Package classify assigns a planning region and a facility type to each
// location through strict fallback ladders. Both classifiers are pure
// functions of their input: same location in, same answer out, always.
package classify

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/twbmap/twb-cli/internal/model"
)

//go:embed tables.yaml
var tablesYAML []byte

type postalRange struct {
	From int                `yaml:"from"`
	To   int                `yaml:"to"`
	Type model.FacilityType `yaml:"type"`
}

type regionAliases struct {
	Region  model.Region `yaml:"region"`
	Aliases []string     `yaml:"aliases"`
}

type tables struct {
	RegionAliases []regionAliases               `yaml:"region_aliases"`
	TypeAliases   map[string]model.FacilityType `yaml:"type_aliases"`
	MallKeywords  []string                      `yaml:"mall_keywords"`
	HotelKeywords []string                      `yaml:"hotel_keywords"`
	PublicKeywords     []string                 `yaml:"public_keywords"`
	RestaurantKeywords []string                 `yaml:"restaurant_keywords"`
	OfficeKeywords     []string                 `yaml:"office_keywords"`
	PostalRanges       []postalRange            `yaml:"postal_ranges"`
}

var (
	tbl tables

	// regionAlias maps each lowercased alias to its region; aliasKeys holds
	// the aliases of length >= 3 in table order for the substring pass.
	regionAlias map[string]model.Region
	aliasKeys   []string

	keywordLadder []struct {
		words []string
		t     model.FacilityType
	}
)

var (
	postalRe = regexp.MustCompile(`(?i)singapore\s+(\d{6})`)

	fallbackPatterns = []struct {
		re *regexp.Regexp
		t  model.FacilityType
	}{
		{regexp.MustCompile(`(?i)\b(shopping|mall|megamall|outlet|plaza|square|mart|market|shop|store)\b`), model.TypeMall},
		{regexp.MustCompile(`(?i)\b(hotel|resort|inn|hostel|suite|lodge|accommodation|motel)\b`), model.TypeHotel},
		{regexp.MustCompile(`(?i)\b(restaurant|café|cafe|bistro|eatery|dining|diner|food|court|kitchen)\b`), model.TypeRestaurant},
		{regexp.MustCompile(`(?i)\b(mrt|station|terminal|library|community|cc|center|public|park|garden|toilet|restroom|bathroom|lavatory)\b`), model.TypePublic},
		{regexp.MustCompile(`(?i)\b(office|tower|building|corporate|business|enterprise|headquarters|hq)\b`), model.TypeOffice},
	}
)

func init() {
	if err := yaml.Unmarshal(tablesYAML, &tbl); err != nil {
		panic("classify: bad embedded tables: " + err.Error())
	}

	regionAlias = make(map[string]model.Region)
	for _, group := range tbl.RegionAliases {
		for _, a := range group.Aliases {
			key := strings.ToLower(a)
			regionAlias[key] = group.Region
			// Single-letter aliases only participate in exact lookups.
			if len(key) >= 3 {
				aliasKeys = append(aliasKeys, key)
			}
		}
	}

	keywordLadder = []struct {
		words []string
		t     model.FacilityType
	}{
		{tbl.MallKeywords, model.TypeMall},
		{tbl.HotelKeywords, model.TypeHotel},
		{tbl.PublicKeywords, model.TypePublic},
		{tbl.RestaurantKeywords, model.TypeRestaurant},
		{tbl.OfficeKeywords, model.TypeOffice},
	}
}

// canonical region names pass through unchanged.
var canonicalRegions = map[model.Region]bool{
	model.RegionNorth: true, model.RegionSouth: true, model.RegionEast: true,
	model.RegionWest: true, model.RegionCentral: true, model.RegionNorthEast: true,
	model.RegionInstitutions: true,
}

// Region resolves a location's planning region: explicit label via the alias
// table, then neighbourhood tokens in the address, then coordinate boxes,
// then Unknown.
func Region(loc model.Location) model.Region {
	if canonicalRegions[loc.Region] {
		return loc.Region
	}

	if label := strings.ToLower(strings.TrimSpace(string(loc.Region))); label != "" && label != "unknown" {
		if r, ok := regionAlias[label]; ok {
			return r
		}
		for _, a := range aliasKeys {
			if strings.Contains(label, a) {
				return regionAlias[a]
			}
		}
	}

	if addr := strings.ToLower(loc.Address); addr != "" {
		for _, a := range aliasKeys {
			if strings.Contains(addr, a) {
				return regionAlias[a]
			}
		}
	}

	return RegionFromCoords(loc.Coordinates)
}

// RegionFromCoords maps a coordinate pair to a region via fixed bounding
// boxes. The North-East box is tested first: it overlaps the broader East
// and North boxes and is the more specific claim.
func RegionFromCoords(c model.Coordinates) model.Region {
	if !c.InBounds() {
		return model.RegionUnknown
	}
	switch {
	case c.Lat > 1.38 && c.Lng > 103.85:
		return model.RegionNorthEast
	case c.Lng > 103.94:
		return model.RegionEast
	case c.Lat > 1.35:
		return model.RegionNorth
	case c.Lat < 1.28:
		return model.RegionSouth
	default:
		return model.RegionCentral
	}
}

// Type resolves a location's facility type: explicit label via the alias
// table, keyword dictionaries in Mall, Hotel, Public, Restaurant, Office
// order, postal-code ranges, regex fallback, then Other. Keyword order is
// deliberate — "centre" appears in both the mall and public lists, and the
// mall list wins.
func Type(loc model.Location) model.FacilityType {
	if label := strings.ToLower(strings.TrimSpace(string(loc.FacilityType))); label != "" {
		if t, ok := tbl.TypeAliases[label]; ok {
			return t
		}
	}

	search := strings.ToLower(loc.Name + " " + loc.Address)

	for _, rung := range keywordLadder {
		for _, w := range rung.words {
			if strings.Contains(search, w) {
				return rung.t
			}
		}
	}

	if t, ok := postalType(loc.Address); ok {
		return t
	}

	for _, p := range fallbackPatterns {
		if p.re.MatchString(search) {
			return p.t
		}
	}

	return model.TypeOther
}

func postalType(address string) (model.FacilityType, bool) {
	m := postalRe.FindStringSubmatch(address)
	if m == nil {
		return "", false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	for _, r := range tbl.PostalRanges {
		if code >= r.From && code <= r.To {
			return r.Type, true
		}
	}
	return "", false
}
