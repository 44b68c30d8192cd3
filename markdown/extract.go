package markdown

import (
	"regexp"
	"strings"
)

// DefaultExcerptLength is the excerpt cut-off in characters.
const DefaultExcerptLength = 160

// Ellipsis is appended to truncated excerpts.
const Ellipsis = "..."

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

var (
	reHeadingLine  = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)
	reFence        = regexp.MustCompile("(?s)```.*?```")
	reImage        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	reLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHeadingMark  = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	reBold         = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic       = regexp.MustCompile(`\*(.*?)\*`)
	reInlineCode   = regexp.MustCompile("`([^`]*)`")
	reNewlines     = regexp.MustCompile(`[\r\n]+`)
	reHashTag      = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	reCodeLanguage = regexp.MustCompile("```([\\w#+-]+)")
)

// Heading is one entry of a post's table of contents.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Summary bundles everything derived from a markdown body.
type Summary struct {
	Headings    []Heading
	Excerpt     string
	Tags        []string
	Languages   []string
	ReadingTime int
}

// Process derives all secondary fields of body in one call.
func Process(body string, maxExcerpt int) Summary {
	return Summary{
		Headings:    ExtractHeadings(body),
		Excerpt:     ExtractExcerpt(body, maxExcerpt),
		Tags:        ExtractTags(body),
		Languages:   ExtractCodeLanguages(body),
		ReadingTime: ReadingTime(body),
	}
}

// ExtractHeadings returns the ATX headings of md in document order. Lines
// inside code fences are not special-cased.
func ExtractHeadings(md string) []Heading {
	anchors := NewAnchors()
	var out []Heading
	for _, m := range reHeadingLine.FindAllStringSubmatch(md, -1) {
		text := strings.TrimSpace(m[2])
		out = append(out, Heading{
			Level: len(m[1]),
			Text:  text,
			ID:    anchors.Next(text),
		})
	}
	return out
}

// ExtractExcerpt strips markdown syntax from md, joins lines with spaces
// and cuts the result to maxLength characters. A non-positive maxLength
// uses DefaultExcerptLength. The cut is not word-aware.
func ExtractExcerpt(md string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}
	plain := PlainText(md)
	runes := []rune(plain)
	if len(runes) <= maxLength {
		return plain
	}
	return string(runes[:maxLength]) + Ellipsis
}

// PlainText removes the markdown syntax understood by ExtractExcerpt.
func PlainText(md string) string {
	s := reFence.ReplaceAllString(md, "")
	s = reImage.ReplaceAllString(s, "")
	s = reLink.ReplaceAllString(s, "$1")
	s = reHeadingMark.ReplaceAllString(s, "")
	s = reBold.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reNewlines.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractTags returns #word tokens found in md, de-duplicated in first-seen
// order.
func ExtractTags(md string) []string {
	return uniqueSubmatches(reHashTag, md)
}

// ExtractCodeLanguages returns the language tags of fenced code blocks,
// de-duplicated in first-seen order.
func ExtractCodeLanguages(md string) []string {
	return uniqueSubmatches(reCodeLanguage, md)
}

func uniqueSubmatches(re *regexp.Regexp, s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// ReadingTime estimates minutes to read md, rounded up. An empty body
// reads in zero minutes.
func ReadingTime(md string) int {
	words := len(strings.Fields(md))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
