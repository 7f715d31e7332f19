package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"lowercases", "VivoCity", "vivocity"},
		{"strips parenthetical", "Jewel (Terminal 1)", "jewel"},
		{"strips brackets", "Funan [rebuilt]", "funan"},
		{"strips leading article", "The Cathay", "cathay"},
		{"strips leading preposition", "At Orchard Gateway", "orchard gateway"},
		{"strips trailing mall", "Tampines Mall", "tampines"},
		{"strips trailing mrt and station", "Bishan MRT Station", "bishan"},
		{"keeps single venue word", "Plaza", "plaza"},
		{"punctuation to spaces", "i12 Katong!", "i12 katong"},
		{"collapses whitespace", "Nex   Serangoon", "nex serangoon"},
		{"expands st", "Bain St", "bain street"},
		{"expands ave", "Changi Ave", "changi avenue"},
		{"expands blvd", "Raffles Blvd", "raffles boulevard"},
		{"expands amk", "AMK Hub", "ang mo kio"},
		{"removes generic nouns", "Tekka Food Market", "tekka"},
		{"removes hawker", "Newton Hawker Centre", "newton"},
		{"folds diacritics", "Café Résidence", "cafe residence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "The Cathay", "Jewel Changi Airport (T1)", "VivoCity",
		"AMK Hub", "Tekka Food Market", "Bain St", "Orchard Plaza Mall",
		"the the plaza", "Food Hawker Market", "Café Résidence",
		"313@Somerset", "ION Orchard", "Our Tampines Hub",
		"Bugis+ [Level 3]", "Marina Bay Sands", "  spaced   out  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "not idempotent for %q", in)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("VivoCity"), Key("Vivo City"))
	assert.Equal(t, "vivocity", Key("Vivo City"))
	assert.NotEqual(t, Key("VivoCity"), Key("Plaza Singapura"))
}

func TestAlphaNumericOnly(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Vivo City!", "vivocity"},
		{"313@Somerset", "313somerset"},
		{"", ""},
		{"--- ", ""},
		{"i12 Katong", "i12katong"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, AlphaNumericOnly(tt.input))
	}
}
