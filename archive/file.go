// Package archive keeps an offline copy of the blog as markdown files with
// YAML front matter, synced from the content source.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
	"github.com/eringen/folio/markdown"
)

// Ext is the extension of archived post files.
const Ext = ".md"

type frontMatter struct {
	ID          string         `yaml:"id,omitempty"`
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Excerpt     string         `yaml:"excerpt"`
	Category    string         `yaml:"category"`
	Tags        []string       `yaml:"tags"`
	PublishedAt time.Time      `yaml:"publishedAt"`
	UpdatedAt   time.Time      `yaml:"updatedAt,omitempty"`
	CoverImage  string         `yaml:"coverImage,omitempty"`
	Author      content.Author `yaml:"author"`
	Published   bool           `yaml:"isPublished"`
}

// Format renders post as a markdown document with front matter.
func Format(post content.Post) ([]byte, error) {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	meta, err := yaml.Marshal(frontMatter{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		Excerpt:     post.Excerpt,
		Category:    post.Category,
		Tags:        tags,
		PublishedAt: post.PublishedAt.UTC(),
		UpdatedAt:   post.UpdatedAt.UTC(),
		CoverImage:  post.CoverImage,
		Author:      post.Author,
		Published:   post.Published,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n")
	buf.WriteString(post.Content)
	if !strings.HasSuffix(post.Content, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Path returns the file a post with slug is archived under in dir.
func Path(dir, slug string) (string, error) {
	if !usableSlug(slug) {
		return "", fmt.Errorf("archive: unusable slug %q", slug)
	}
	return filepath.Join(dir, slug+Ext), nil
}

func usableSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." && !strings.ContainsAny(slug, `/\`)
}

// WriteFile writes post to <dir>/<slug>.md, creating dir if needed, and
// returns the path written.
func WriteFile(dir string, post content.Post) (string, error) {
	path, err := Path(dir, post.Slug)
	if err != nil {
		return "", err
	}
	data, err := Format(post)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("archive: write %s: %w", path, err)
	}
	return path, nil
}

// Parse reads one archived document. Reading time is recomputed from the
// body and a missing excerpt is derived from it.
func Parse(r io.Reader) (content.Post, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return content.Post{}, fmt.Errorf("archive: parse front matter: %w", err)
	}
	post := content.Post{
		ID:          meta.ID,
		Title:       meta.Title,
		Slug:        meta.Slug,
		Excerpt:     meta.Excerpt,
		Category:    meta.Category,
		Tags:        meta.Tags,
		PublishedAt: meta.PublishedAt,
		UpdatedAt:   meta.UpdatedAt,
		CoverImage:  meta.CoverImage,
		Author:      meta.Author,
		Published:   meta.Published,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	fetcher.Finish(&post, string(body), markdown.DefaultExcerptLength)
	return post, nil
}

// ReadFile parses the archived document at path. A file without a slug in
// its front matter takes the slug from its name.
func ReadFile(path string) (content.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return content.Post{}, err
	}
	defer f.Close()
	post, err := Parse(f)
	if err != nil {
		return content.Post{}, fmt.Errorf("%s: %w", path, err)
	}
	if post.Slug == "" {
		post.Slug = strings.TrimSuffix(filepath.Base(path), Ext)
	}
	if post.Title == "" {
		post.Title = content.DefaultTitle
	}
	if post.Category == "" {
		post.Category = content.DefaultCategory
	}
	return post, nil
}
