// Package slug derives stable, human-readable entity identifiers from
// venue names. Slugs are the upsert key for canonical entities, so the
// derivation must be deterministic: the same name always yields the
// same slug, regardless of source or run.
package slug

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/place"
)

// Make derives a slug from a venue name: diacritics folded, lower-cased,
// punctuation and whitespace collapsed to single hyphens, capped at
// constants.MaxSlugLength without a trailing hyphen. A name with no
// letters or digits yields an empty slug; callers decide the fallback.
func Make(name string) string {
	normalized := place.NormalizeName(name)
	if normalized == "" {
		return ""
	}
	s := strings.ReplaceAll(normalized, " ", "-")
	return trim(s, constants.MaxSlugLength)
}

// Disambiguate appends a numeric suffix to a slug, producing the nth
// variant for collision resolution ("west-park-padel-2"). The base is
// shortened if needed so the suffixed slug still fits MaxSlugLength.
// n below 2 returns the base unchanged; the unsuffixed slug is the
// first variant.
func Disambiguate(base string, n int) string {
	if n < 2 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	return trim(base, constants.MaxSlugLength-len(suffix)) + suffix
}

// trim caps a slug at max bytes without splitting a rune, cutting on a
// hyphen boundary rather than mid-word where one is near the cap, and
// never leaving a trailing hyphen.
func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	s = s[:cut]
	if i := strings.LastIndex(s, "-"); i > 0 && i > cut-24 {
		s = s[:i]
	}
	return strings.TrimRight(s, "-")
}
