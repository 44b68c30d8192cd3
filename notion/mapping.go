package notion

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/eringen/folio/content"
)

// recordFromPage copies the parts of a page the normalizer reads. Property
// kinds it does not know are dropped.
func recordFromPage(page notionapi.Page) content.Record {
	rec := content.Record{
		ID:             string(page.ID),
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		Properties:     make(map[string]content.Property, len(page.Properties)),
	}
	for name, prop := range page.Properties {
		if p, ok := propertyFromNotion(prop); ok {
			rec.Properties[name] = p
		}
	}
	return rec
}

func propertyFromNotion(prop notionapi.Property) (content.Property, bool) {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return content.Property{Type: content.PropertyTitle, Text: plainText(p.Title)}, true
	case *notionapi.RichTextProperty:
		return content.Property{Type: content.PropertyRichText, Text: plainText(p.RichText)}, true
	case *notionapi.SelectProperty:
		return content.Property{Type: content.PropertySelect, Name: p.Select.Name}, true
	case *notionapi.StatusProperty:
		return content.Property{Type: content.PropertyStatus, Name: p.Status.Name}, true
	case *notionapi.MultiSelectProperty:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return content.Property{Type: content.PropertyMultiSelect, Names: names}, true
	case *notionapi.DateProperty:
		out := content.Property{Type: content.PropertyDate}
		if p.Date != nil && p.Date.Start != nil {
			t := time.Time(*p.Date.Start)
			out.Date = &t
		}
		return out, true
	case *notionapi.CheckboxProperty:
		return content.Property{Type: content.PropertyCheckbox, Checkbox: p.Checkbox}, true
	case *notionapi.FilesProperty:
		var urls []string
		for _, f := range p.Files {
			if u := fileURL(string(f.Type), f.File, f.External); u != "" {
				urls = append(urls, u)
			}
		}
		return content.Property{Type: content.PropertyFiles, Files: urls}, true
	default:
		return content.Property{}, false
	}
}

// blockFromNotion converts the block kinds the converter renders. Anything
// else is skipped.
func blockFromNotion(b notionapi.Block) (content.Block, bool) {
	switch v := b.(type) {
	case *notionapi.ParagraphBlock:
		return content.Block{Type: content.BlockParagraph, Text: plainText(v.Paragraph.RichText)}, true
	case *notionapi.Heading1Block:
		return content.Block{Type: content.BlockHeading1, Text: plainText(v.Heading1.RichText)}, true
	case *notionapi.Heading2Block:
		return content.Block{Type: content.BlockHeading2, Text: plainText(v.Heading2.RichText)}, true
	case *notionapi.Heading3Block:
		return content.Block{Type: content.BlockHeading3, Text: plainText(v.Heading3.RichText)}, true
	case *notionapi.BulletedListItemBlock:
		return content.Block{Type: content.BlockBulletedItem, Text: plainText(v.BulletedListItem.RichText)}, true
	case *notionapi.NumberedListItemBlock:
		return content.Block{Type: content.BlockNumberedItem, Text: plainText(v.NumberedListItem.RichText)}, true
	case *notionapi.CodeBlock:
		return content.Block{Type: content.BlockCode, Text: plainText(v.Code.RichText), Language: v.Code.Language}, true
	case *notionapi.QuoteBlock:
		return content.Block{Type: content.BlockQuote, Text: plainText(v.Quote.RichText)}, true
	case *notionapi.DividerBlock:
		return content.Block{Type: content.BlockDivider}, true
	case *notionapi.ImageBlock:
		img := &content.Image{
			Hosting: string(v.Image.Type),
			Caption: plainText(v.Image.Caption),
		}
		if v.Image.External != nil {
			img.ExternalURL = v.Image.External.URL
		}
		if v.Image.File != nil {
			img.FileURL = v.Image.File.URL
		}
		return content.Block{Type: content.BlockImage, Image: img}, true
	default:
		return content.Block{}, false
	}
}

func plainText(runs []notionapi.RichText) []string {
	if len(runs) == 0 {
		return nil
	}
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.PlainText
	}
	return out
}

func fileURL(hosting string, file, external *notionapi.FileObject) string {
	switch {
	case hosting == content.HostingExternal && external != nil:
		return external.URL
	case hosting == content.HostingFile && file != nil:
		return file.URL
	default:
		return ""
	}
}
