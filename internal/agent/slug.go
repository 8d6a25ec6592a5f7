package agent

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases text, collapses every run of non-alphanumeric
// characters into one hyphen and trims hyphens from both ends.
func Slugify(text string) string {
	s := nonAlphanumeric.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(s, "-")
}
