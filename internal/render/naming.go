package render

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord   = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	camelWord = regexp.MustCompile(`[a-z]+[0-9]*|[A-Z][a-z]+[0-9]*`)
	hyphens   = regexp.MustCompile(`-{2,}`)
)

// Slug rewrites s into a lowercase hyphen separated key. Diacritics are
// stripped and camel case words are split: "Café_NotreDame" becomes
// "cafe-notre-dame".
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ReplaceAll(stripped, "_", "-")

	var words []string
	for _, w := range nonWord.Split(stripped, -1) {
		if w == "" {
			continue
		}
		w = camelWord.ReplaceAllString(w, "-$0-")
		w = hyphens.ReplaceAllString(strings.Trim(w, "-"), "-")
		words = append(words, strings.ToLower(w))
	}
	return strings.Join(words, "-")
}

// SetKey derives a marker set key from a file path: the base name without
// its extension, slugged when normalize is set.
func SetKey(path string, normalize bool) string {
	base := filepath.Base(path)
	key := strings.TrimSuffix(base, filepath.Ext(base))
	if normalize {
		if slug := Slug(key); slug != "" {
			return slug
		}
	}
	return key
}
