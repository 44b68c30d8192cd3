// Package markdown derives post metadata from markdown bodies and renders
// them to HTML as templ components.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// engine is stateless after construction and safe for concurrent use.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := RenderMarkdown(&buf, md); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderMarkdown writes the HTML representation of md to buf. Heading ids
// follow AnchorID. Raw HTML in md is omitted.
func RenderMarkdown(buf *bytes.Buffer, md string) error {
	pc := parser.NewContext(parser.WithIDs(NewAnchors()))
	if err := engine.Convert([]byte(md), buf, parser.WithContext(pc)); err != nil {
		return fmt.Errorf("markdown: render: %w", err)
	}
	return nil
}

// Render returns md rendered as an HTML string.
func Render(md string) (string, error) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, md); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderDocument renders md and returns its headings as they appear in the
// output, with the ids the HTML carries. Unlike ExtractHeadings it ignores
// lines inside code blocks.
func RenderDocument(md string) (string, []Heading, error) {
	src := []byte(md)
	pc := parser.NewContext(parser.WithIDs(NewAnchors()))
	doc := engine.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: string(h.Text(src))}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		headings = append(headings, heading)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("markdown: headings: %w", err)
	}

	var buf bytes.Buffer
	if err := engine.Renderer().Render(&buf, src, doc); err != nil {
		return "", nil, fmt.Errorf("markdown: render: %w", err)
	}
	return buf.String(), headings, nil
}
