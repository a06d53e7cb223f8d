package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugDashes  = regexp.MustCompile(`-+`)

	// SlugPattern is the accepted shape of a category or genre slug.
	SlugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// GenerateSlug derives a slug from a display name, e.g. "Café Noir" -> "cafe-noir".
// Non-Latin scripts are not transliterated and may yield "".
func GenerateSlug(input string) string {
	ascii := RemoveDiacritics(input)
	lower := strings.ToLower(strings.TrimSpace(ascii))
	hyphenated := strings.Join(strings.Fields(lower), "-")
	cleaned := slugInvalid.ReplaceAllString(hyphenated, "")
	normalized := slugDashes.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// RemoveDiacritics strips combining marks after canonical decomposition.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
