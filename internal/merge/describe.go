package merge

import (
	"regexp"
	"strings"

	"github.com/twbmap/twb-cli/internal/model"
)

var (
	longDigitRunRe = regexp.MustCompile(`\d{5,}`)

	addressLabelRe  = regexp.MustCompile(`(?i)(?:Address|Location):\s*([^<\n]+)`)
	streetSuffixRe  = regexp.MustCompile(`(?i)\d+[\w\s]+(?:road|rd|street|st|avenue|ave|boulevard|blvd|lane|ln|drive|dr|terrace|ter|place|pl|court|ct)[,\s]+\w+`)
	femaleKeywordRe = regexp.MustCompile(`(?i)\b(female|women|woman|ladies|lady)\b`)
	maleKeywordRe   = regexp.MustCompile(`(?i)\b(male|men|man|gentlemen|gents?)\b`)
	handicapRe      = regexp.MustCompile(`(?i)\b(handicap(?:ped)?|disabled|wheelchair)\b`)
	babyRe          = regexp.MustCompile(`(?i)\b(baby|diaper|nursing)\b`)
)

// ExtractAddress pulls an address out of a KML placemark description: an
// explicit "Address:"/"Location:" label wins, then a street-suffix pattern.
// Returns "" when nothing address-like is present.
func ExtractAddress(description string) string {
	if description == "" {
		return ""
	}
	if m := addressLabelRe.FindStringSubmatch(description); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := streetSuffixRe.FindString(description); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

type descriptionFacts struct {
	gender    model.Gender
	amenities model.Amenities
}

// describe scans the free-text description for gender and amenity keywords.
// Word boundaries keep "female" from asserting "male".
func describe(description string) descriptionFacts {
	facts := descriptionFacts{gender: model.GenderAny}
	if description == "" {
		return facts
	}

	female := femaleKeywordRe.MatchString(description)
	male := maleKeywordRe.MatchString(description)
	switch {
	case female && !male:
		facts.gender = model.GenderFemale
	case male && !female:
		facts.gender = model.GenderMale
	}

	facts.amenities.WheelchairAccess = handicapRe.MatchString(description)
	facts.amenities.BabyChanging = babyRe.MatchString(description)
	return facts
}
