// Package notion adapts the Notion API to fetcher.Source.
package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
)

// pageSize is the largest page the API serves.
const pageSize = 100

// Client reads one Notion database.
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
}

// New returns a Client for the database, authenticating with token.
func New(token, databaseID string) *Client {
	return &Client{
		api:        notionapi.NewClient(notionapi.Token(token)),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

var _ fetcher.Source = (*Client)(nil)

// Schema retrieves the declared properties of the database.
func (c *Client) Schema(ctx context.Context) (content.Schema, error) {
	db, err := c.api.Database.Get(ctx, c.databaseID)
	if err != nil {
		return nil, fmt.Errorf("notion: retrieve database: %w", err)
	}
	schema := make(content.Schema, len(db.Properties))
	for name, cfg := range db.Properties {
		schema[name] = content.PropertyType(cfg.GetType())
	}
	return schema, nil
}

// QueryPages runs q against the database, following cursors until the
// results are exhausted or q.Limit pages were read.
func (c *Client) QueryPages(ctx context.Context, q fetcher.Query) ([]content.Record, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter:   filterFor(q.Conditions),
		Sorts:    sortsFor(q.SortProperty),
		PageSize: pageSize,
	}
	if q.Limit > 0 && q.Limit < pageSize {
		req.PageSize = q.Limit
	}

	var records []content.Record
	for {
		resp, err := c.api.Database.Query(ctx, c.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("notion: query database: %w", err)
		}
		for _, page := range resp.Results {
			records = append(records, recordFromPage(page))
			if q.Limit > 0 && len(records) == q.Limit {
				return records, nil
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return records, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// Blocks lists the top-level children of a page.
func (c *Client) Blocks(ctx context.Context, pageID string) ([]content.Block, error) {
	var (
		blocks []content.Block
		pg     = &notionapi.Pagination{PageSize: pageSize}
	)
	for {
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), pg)
		if err != nil {
			return nil, fmt.Errorf("notion: list blocks of %s: %w", pageID, err)
		}
		for _, b := range resp.Results {
			if blk, ok := blockFromNotion(b); ok {
				blocks = append(blocks, blk)
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return blocks, nil
		}
		pg.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// filterFor translates conditions into a query filter. Status conditions
// are left to the caller, which filters categories client side.
func filterFor(conds []fetcher.Condition) notionapi.Filter {
	var filters []notionapi.Filter
	for _, c := range conds {
		f := &notionapi.PropertyFilter{Property: c.Property}
		switch c.Type {
		case content.PropertyCheckbox:
			f.Checkbox = &notionapi.CheckboxFilterCondition{Equals: c.Checked}
		case content.PropertySelect:
			f.Select = &notionapi.SelectFilterCondition{Equals: c.Text}
		case content.PropertyRichText, content.PropertyTitle:
			f.RichText = &notionapi.TextFilterCondition{Equals: c.Text}
		default:
			continue
		}
		filters = append(filters, f)
	}
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		and := notionapi.AndCompoundFilter(filters)
		return &and
	}
}

func sortsFor(property string) []notionapi.SortObject {
	if property == "" {
		return []notionapi.SortObject{{
			Timestamp: notionapi.TimestampCreated,
			Direction: notionapi.SortOrderDESC,
		}}
	}
	return []notionapi.SortObject{{
		Property:  property,
		Direction: notionapi.SortOrderDESC,
	}}
}
