package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
)

var (
	reAnchorStrip  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	reAnchorSpace  = regexp.MustCompile(`\s+`)
	reAnchorHyphen = regexp.MustCompile(`-+`)
)

// AnchorID converts heading text to a fragment identifier: lowercase,
// punctuation removed, whitespace runs replaced by hyphens, repeated hyphens
// collapsed and trimmed from both ends.
func AnchorID(text string) string {
	id := strings.ToLower(text)
	id = reAnchorStrip.ReplaceAllString(id, "")
	id = reAnchorSpace.ReplaceAllString(id, "-")
	id = reAnchorHyphen.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}

// Anchors hands out unique anchor ids within one document. The second
// "Intro" heading becomes "intro-1", the third "intro-2".
// It also satisfies goldmark's parser.IDs so rendered heading ids follow the
// same rule.
type Anchors struct {
	seen map[string]struct{}
}

// NewAnchors returns an empty id set.
func NewAnchors() *Anchors {
	return &Anchors{seen: make(map[string]struct{})}
}

// Next returns a unique id for heading text.
func (a *Anchors) Next(text string) string {
	base := AnchorID(text)
	if base == "" {
		base = "heading"
	}
	id := base
	for i := 1; ; i++ {
		if _, taken := a.seen[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(i)
	}
	a.seen[id] = struct{}{}
	return id
}

// Generate implements parser.IDs.
func (a *Anchors) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(a.Next(string(value)))
}

// Put implements parser.IDs.
func (a *Anchors) Put(value []byte) {
	a.seen[string(value)] = struct{}{}
}
