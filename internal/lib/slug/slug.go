// Package slug derives and normalizes the URL identifiers of events.
package slug

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"regexp"
	"strings"
	"unicode"
)

var (
	invalidChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphen = regexp.MustCompile(`-{2,}`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// Normalize is the form slugs are stored and looked up in.
// Every read and write path must go through it.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Make builds a slug from a free-form title: accents are stripped, whitespace
// becomes a hyphen and everything outside [a-z0-9-] is dropped.
func Make(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, title)
	if err != nil {
		result = title
	}

	result = Normalize(result)
	result = whitespace.ReplaceAllString(result, "-")
	result = invalidChars.ReplaceAllString(result, "")
	result = repeatedHyphen.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}
