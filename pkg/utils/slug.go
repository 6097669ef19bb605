package utils

import (
	"regexp"
	"strings"
)

var (
	// Uzbek Latin writes o' and g' with an apostrophe that belongs to the letter.
	apostrophes = strings.NewReplacer("'", "", "‘", "", "’", "", "ʻ", "", "ʼ", "")
	nonSlug     = regexp.MustCompile("[^a-z0-9]+")
)

// Slugify turns a display name into a stable lower-case identifier.
func Slugify(s string) string {
	s = apostrophes.Replace(strings.ToLower(s))
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}
