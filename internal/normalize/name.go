// Package normalize canonicalizes free-text venue names into comparable keys
// for record linkage.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketRe    = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	punctRe      = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	alnumRe      = regexp.MustCompile(`[^a-z0-9]+`)

	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// leadingArticles are stripped from the front of a name.
var leadingArticles = map[string]bool{
	"the": true, "at": true, "in": true, "by": true,
}

// trailingVenueWords carry no discriminating value at the end of a name.
var trailingVenueWords = map[string]bool{
	"centre": true, "center": true, "mall": true, "plaza": true,
	"station": true, "park": true, "hub": true, "mrt": true, "cc": true,
}

// abbreviations expand after venue-word stripping so "st" never survives as
// a trailing token.
var abbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"blvd": "boulevard",
	"rd":   "road",
	"dr":   "drive",
	"jln":  "jalan",
	"lor":  "lorong",
	"upp":  "upper",
	"amk":  "ang mo kio",
	"cck":  "choa chu kang",
	"tpy":  "toa payoh",
}

// genericNouns add no discriminating value anywhere in a venue name.
var genericNouns = map[string]bool{
	"food": true, "hawker": true, "market": true, "shopping": true,
	"community": true, "club": true, "sports": true,
}

// Normalize canonicalizes a venue name into a comparable form. It is total:
// any input yields some output, and the empty string maps to itself.
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	out := name
	// A single pass can expose new leading/trailing stopwords (e.g. a
	// generic noun removal uncovering a leading article), so run to a
	// fixpoint. Real names stabilize on the first pass.
	for i := 0; i < 3; i++ {
		next := pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func pass(name string) string {
	s := strings.ToLower(name)
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	s = bracketRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	tokens := strings.Fields(s)
	for len(tokens) > 0 && leadingArticles[tokens[0]] {
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && trailingVenueWords[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	expanded := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if full, ok := abbreviations[tok]; ok {
			expanded = append(expanded, strings.Fields(full)...)
			continue
		}
		expanded = append(expanded, tok)
	}

	kept := expanded[:0]
	for _, tok := range expanded {
		if genericNouns[tok] {
			continue
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}

// Key is the whitespace-free comparison key used for normalized-name
// matching, so that "VivoCity" and "Vivo City" compare equal.
func Key(name string) string {
	return strings.ReplaceAll(Normalize(name), " ", "")
}

// AlphaNumericOnly lowercases and strips everything outside [a-z0-9]. It is
// the coarsest key, used for last-resort fuzzy matching.
func AlphaNumericOnly(name string) string {
	return alnumRe.ReplaceAllString(strings.ToLower(name), "")
}
