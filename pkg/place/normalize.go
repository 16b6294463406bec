package place

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the canonical comparison form of a venue name:
// diacritics folded, lower-cased, punctuation replaced by spaces, and
// whitespace collapsed. Identity matching, fingerprints, and slug
// derivation all build on this form.
func NormalizeName(name string) string {
	lower := strings.ToLower(foldDiacritics(name))
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lower)
	return strings.Join(strings.Fields(mapped), " ")
}

// NameTokens returns the unique, sorted-insensitive token list of a
// normalized name, ready for token-set comparison.
func NameTokens(name string) []string {
	fields := strings.Fields(NormalizeName(name))
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// foldDiacritics strips combining marks so that "Café" and "Cafe"
// compare equal. The transformer chain is built per call; transformers
// carry state and are not safe for concurrent reuse.
func foldDiacritics(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return folded
}
