package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given title.
// Common accented Latin characters are transliterated to ASCII so titles
// like "Pokémon" produce usable slugs.
//
// Examples:
//   - "The Witcher 3: Wild Hunt" → "the-witcher-3-wild-hunt"
//   - "Pokémon Légendes" → "pokemon-legendes"
//   - "Hello   World!" → "hello-world"
func Generate(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))

	// Transliterate accented Latin characters to ASCII
	replacer := strings.NewReplacer(
		"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
		"è", "e", "é", "e", "ê", "e", "ë", "e",
		"ì", "i", "í", "i", "î", "i", "ï", "i",
		"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
		"ù", "u", "ú", "u", "û", "u", "ü", "u",
		"ç", "c", "ñ", "n", "ý", "y", "ß", "ss", "æ", "ae", "œ", "oe",
	)
	slug = replacer.Replace(slug)

	// Replace any non-alphanumeric characters with hyphens
	slug = slugRegexp.ReplaceAllString(slug, "-")

	// Trim leading and trailing hyphens
	slug = strings.Trim(slug, "-")

	// Collapse consecutive hyphens into single hyphens
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return slug
}
