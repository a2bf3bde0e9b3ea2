// Package slug turns display names into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

var (
	upperUmlauts = strings.NewReplacer("Ü", "Ue", "Ö", "Oe", "Ä", "Ae")
	lowerUmlauts = strings.NewReplacer("ü", "ue", "ö", "oe", "ä", "ae", "ß", "ss")

	// nonAlphanumeric matches every run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate creates a slug from s. German umlauts and ß are transliterated
// before anything else is dropped, so "Übergänge gestalten" becomes
// "uebergaenge-gestalten". Blank input yields "".
func Generate(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	result := upperUmlauts.Replace(s)
	result = strings.ToLower(result)
	result = lowerUmlauts.Replace(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
