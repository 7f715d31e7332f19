package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical after stripping", "Vivo City", "VivoCity!", 1.0},
		{"containment", "Jewel Changi Airport", "Jewel Changi", 0.9},
		{"short names never match", "CC", "CC", 0},
		{"one short name", "ab", "Tampines Mall", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"Tampines Mall", "Jurong Point"},
		{"Northpoint City", "Northpoint"},
		{"Suntec City", "Santec Citty"},
		{"completely different", "zzzzzzzz"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestSimilarityTypoTolerance(t *testing.T) {
	// One edit on an 11-char key should stay above the acceptance threshold.
	s := Similarity("Suntec City", "Suntac City")
	assert.Greater(t, s, 0.65)
	assert.Less(t, s, 1.0)
}
