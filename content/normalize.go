package content

import (
	"strings"
	"time"
)

// Literal defaults used when no property resolves.
const (
	DefaultTitle    = "Untitled"
	DefaultSlug     = "untitled"
	DefaultCategory = "Uncategorized"
	StatusPublished = "Published"
)

// Normalizer maps raw page records onto posts. Property names in the source
// database are chosen by whoever built it, so each field is resolved from an
// ordered list of candidate properties before falling back to a default.
type Normalizer struct {
	// Author is stamped on every post.
	Author Author
	// DefaultPublished applies when a page has neither a Published checkbox
	// nor a Status label.
	DefaultPublished bool
}

// NewNormalizer returns a Normalizer that treats unmarked pages as published.
func NewNormalizer(author Author) Normalizer {
	return Normalizer{Author: author, DefaultPublished: true}
}

// accessor reads one candidate value from a record; ok is false when the
// candidate is missing or empty.
type accessor[T any] func(Record) (v T, ok bool)

// resolve returns the first candidate that yields a value, else def.
func resolve[T any](r Record, def T, chain ...accessor[T]) T {
	for _, get := range chain {
		if v, ok := get(r); ok {
			return v
		}
	}
	return def
}

func textOf(name string, typ PropertyType) accessor[string] {
	return func(r Record) (string, bool) {
		p, ok := r.Properties[name]
		if !ok || p.Type != typ || len(p.Text) == 0 {
			return "", false
		}
		return p.Text[0], p.Text[0] != ""
	}
}

func selectOf(name string) accessor[string] {
	return func(r Record) (string, bool) {
		p, ok := r.Properties[name]
		if !ok || (p.Type != PropertySelect && p.Type != PropertyStatus) {
			return "", false
		}
		return p.Name, p.Name != ""
	}
}

func multiSelectOf(name string) accessor[[]string] {
	return func(r Record) ([]string, bool) {
		p, ok := r.Properties[name]
		if !ok || p.Type != PropertyMultiSelect || p.Names == nil {
			return nil, false
		}
		return append([]string(nil), p.Names...), true
	}
}

func dateOf(name string) accessor[time.Time] {
	return func(r Record) (time.Time, bool) {
		p, ok := r.Properties[name]
		if !ok || p.Type != PropertyDate || p.Date == nil {
			return time.Time{}, false
		}
		return *p.Date, true
	}
}

func firstFileOf(name string) accessor[string] {
	return func(r Record) (string, bool) {
		p, ok := r.Properties[name]
		if !ok || p.Type != PropertyFiles || len(p.Files) == 0 {
			return "", false
		}
		return p.Files[0], p.Files[0] != ""
	}
}

func checkboxOf(name string) accessor[bool] {
	return func(r Record) (bool, bool) {
		p, ok := r.Properties[name]
		if !ok || p.Type != PropertyCheckbox {
			return false, false
		}
		return p.Checkbox, true
	}
}

func statusIs(name, want string) accessor[bool] {
	return func(r Record) (bool, bool) {
		label, ok := selectOf(name)(r)
		if !ok {
			return false, false
		}
		return label == want, true
	}
}

func slugFromTitle(r Record) (string, bool) {
	s := Slugify(Title(r))
	return s, s != ""
}

func createdTime(r Record) (time.Time, bool) {
	return r.CreatedTime, true
}

// Title resolves the post title of a record.
func Title(r Record) string {
	return resolve(r, DefaultTitle,
		textOf("Title", PropertyTitle),
		textOf("Name", PropertyTitle),
	)
}

// Slug resolves the post slug of a record.
func Slug(r Record) string {
	return resolve(r, DefaultSlug,
		textOf("Slug", PropertyRichText),
		textOf("URL", PropertyRichText),
		slugFromTitle,
	)
}

// Excerpt resolves an explicit excerpt; it is empty when none is set.
func Excerpt(r Record) string {
	return resolve(r, "",
		textOf("Excerpt", PropertyRichText),
		textOf("Summary", PropertyRichText),
	)
}

// CategoryOf resolves the category label of a record.
func CategoryOf(r Record) string {
	return resolve(r, DefaultCategory,
		selectOf("Category"),
		selectOf("Type"),
	)
}

// TagsOf resolves the tag labels of a record.
func TagsOf(r Record) []string {
	return resolve(r, []string{},
		multiSelectOf("Tags"),
		multiSelectOf("Tag"),
	)
}

// PublishedAt resolves the publication time. The record creation time ends
// the chain, so it always resolves.
func PublishedAt(r Record) time.Time {
	return resolve(r, r.CreatedTime,
		dateOf("Published"),
		dateOf("Created"),
		createdTime,
	)
}

// CoverImage resolves the cover image URL; empty when absent.
func CoverImage(r Record) string {
	return resolve(r, "",
		firstFileOf("CoverImage"),
		firstFileOf("Image"),
	)
}

// IsPublished resolves the published flag, using def when the record carries
// no publish-status property.
func IsPublished(r Record, def bool) bool {
	return resolve(r, def,
		checkboxOf("Published"),
		statusIs("Status", StatusPublished),
	)
}

// Normalize converts one record into a post. Content, reading time and a
// derived excerpt are filled in later, once the page body is known.
func (n Normalizer) Normalize(r Record) Post {
	return Post{
		ID:          r.ID,
		Title:       Title(r),
		Slug:        Slug(r),
		Excerpt:     strings.TrimSpace(Excerpt(r)),
		Category:    CategoryOf(r),
		Tags:        TagsOf(r),
		PublishedAt: PublishedAt(r),
		UpdatedAt:   r.LastEditedTime,
		CoverImage:  CoverImage(r),
		Author:      n.Author,
		Published:   IsPublished(r, n.DefaultPublished),
	}
}
