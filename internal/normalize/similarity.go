package normalize

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how alike two venue names are, in [0,1]. Both names are
// reduced to their alphanumeric keys first; exact key equality is 1.0,
// containment 0.9, otherwise a normalized edit-distance ratio.
func Similarity(a, b string) float64 {
	ka := AlphaNumericOnly(a)
	kb := AlphaNumericOnly(b)

	// Very short keys match too promiscuously to trust.
	if len(ka) < 3 || len(kb) < 3 {
		return 0
	}
	if ka == kb {
		return 1.0
	}
	if strings.Contains(ka, kb) || strings.Contains(kb, ka) {
		return 0.9
	}

	longest := len(ka)
	if len(kb) > longest {
		longest = len(kb)
	}
	dist := levenshtein.ComputeDistance(ka, kb)
	score := 1.0 - float64(dist)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}
