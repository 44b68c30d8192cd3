package content

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonSlug    = regexp.MustCompile(`[^\p{L}\p{N}_-]`)
)

// Slugify converts a title to a URL-safe slug: lowercased, whitespace runs
// replaced by a single hyphen, everything but letters, digits, underscores
// and hyphens removed. The result may be empty.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reWhitespace.ReplaceAllString(s, "-")
	return reNonSlug.ReplaceAllString(s, "")
}

// labelSlug is the slug used for category and tag aggregates.
func labelSlug(name string) string {
	return reWhitespace.ReplaceAllString(strings.ToLower(name), "-")
}
