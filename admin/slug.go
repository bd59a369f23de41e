package admin

import (
	"regexp"
	"strings"
)

var accentMap = map[rune]rune{
	'á': 'a', 'à': 'a', 'ã': 'a', 'â': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i',
	'ó': 'o', 'ò': 'o', 'õ': 'o', 'ô': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'ñ': 'n', 'ń': 'n',
	'ý': 'y', 'ÿ': 'y',
	'ß': 's',
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug lowercases title, folds common accents and collapses every
// run of other characters into a single dash.
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = strings.Map(func(r rune) rune {
		if replacement, ok := accentMap[r]; ok {
			return replacement
		}
		return r
	}, slug)

	slug = nonSlugRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
