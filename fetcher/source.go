package fetcher

import (
	"context"
	"sort"

	"github.com/eringen/folio/content"
)

// Source is the content API the Service reads from.
type Source interface {
	// Schema returns the declared properties of the posts database.
	Schema(ctx context.Context) (content.Schema, error)
	// QueryPages returns the pages matching q in the source's order,
	// following pagination until exhausted or q.Limit is reached.
	QueryPages(ctx context.Context, q Query) ([]content.Record, error)
	// Blocks returns the top-level blocks of a page in document order.
	Blocks(ctx context.Context, pageID string) ([]content.Block, error)
}

// Condition is an equality test on one property.
type Condition struct {
	Property string
	Type     content.PropertyType
	Text     string // rich_text, title, select and status
	Checked  bool   // checkbox
}

// Query selects pages. All conditions must hold.
type Query struct {
	Conditions []Condition
	// SortProperty orders results descending; empty sorts by page
	// creation time.
	SortProperty string
	// Limit stops pagination once this many pages were read; 0 reads all.
	Limit int
}

// plan records which properties play which role in a particular database.
type plan struct {
	published string
	sort      string
	slug      string
	category  string
	// categoryType is select or status, whichever the database declares.
	categoryType content.PropertyType
}

// planFor inspects a schema the way a person would: a Published checkbox
// marks publishable pages, the first date-like property orders them, and
// Slug/URL and Category/Type hold the lookup keys.
func planFor(s content.Schema) plan {
	var p plan
	if s["Published"] == content.PropertyCheckbox {
		p.published = "Published"
	}
	if s["Published"] == content.PropertyDate {
		p.sort = "Published"
	} else {
		names := make([]string, 0, len(s))
		for name := range s {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			switch s[name] {
			case content.PropertyDate, content.PropertyCreatedTime, content.PropertyLastEditedTime:
				p.sort = name
			}
			if p.sort != "" {
				break
			}
		}
	}
	for _, name := range []string{"Slug", "URL"} {
		if s[name] == content.PropertyRichText {
			p.slug = name
			break
		}
	}
	for _, name := range []string{"Category", "Type"} {
		if t := s[name]; t == content.PropertySelect || t == content.PropertyStatus {
			p.category = name
			p.categoryType = t
			break
		}
	}
	return p
}

func (p plan) publishedConditions() []Condition {
	if p.published == "" {
		return nil
	}
	return []Condition{{Property: p.published, Type: content.PropertyCheckbox, Checked: true}}
}

// PublishedQuery selects the published pages of a database with schema s,
// newest first.
func PublishedQuery(s content.Schema) Query {
	p := planFor(s)
	return Query{Conditions: p.publishedConditions(), SortProperty: p.sort}
}

// SlugQuery selects the page with slug. ok is false when the database has no
// slug property to filter on.
func SlugQuery(s content.Schema, slug string) (q Query, ok bool) {
	p := planFor(s)
	if p.slug == "" {
		return Query{}, false
	}
	return Query{
		Conditions: []Condition{{Property: p.slug, Type: content.PropertyRichText, Text: slug}},
		Limit:      1,
	}, true
}
