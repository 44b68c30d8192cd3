// Package fetcher runs the content pipeline: it queries the content source,
// normalizes page records, converts their blocks to markdown and derives
// excerpt and reading time. When the source is missing or failing it
// degrades according to a FailurePolicy instead of retrying.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

var (
	// ErrNotFound is returned when no post matches a slug.
	ErrNotFound = errors.New("fetcher: post not found")
	// ErrNotConfigured is returned under FailureStrict when no source is set.
	ErrNotConfigured = errors.New("fetcher: content source not configured")
)

// Service fetches posts from a Source.
type Service struct {
	src        Source
	opts       Options
	normalizer content.Normalizer
}

// New creates a Service. A nil src means the content API is not configured.
func New(src Source, opts Options) *Service {
	opts.setDefaults()
	return &Service{
		src:  src,
		opts: opts,
		normalizer: content.Normalizer{
			Author:           opts.Author,
			DefaultPublished: !opts.StrictPublish,
		},
	}
}

// Configured reports whether a content source is attached.
func (s *Service) Configured() bool {
	return s.src != nil
}

// GetAllPosts returns every published post, newest first as ordered by the
// source.
func (s *Service) GetAllPosts(ctx context.Context) ([]content.Post, error) {
	if s.src == nil {
		return s.fallbackList("all", ErrNotConfigured, Fixtures(s.opts.Author))
	}
	schema, err := s.schema(ctx)
	if err != nil {
		return s.fallbackList("all", err, Fixtures(s.opts.Author))
	}
	posts, err := s.fetch(ctx, PublishedQuery(schema))
	if err != nil {
		return s.fallbackList("all", err, Fixtures(s.opts.Author))
	}
	return posts, nil
}

// GetPostBySlug returns the published post with the given slug, or
// ErrNotFound.
func (s *Service) GetPostBySlug(ctx context.Context, slug string) (content.Post, error) {
	if s.src == nil {
		return s.fallbackPost("slug", ErrNotConfigured, slug)
	}
	schema, err := s.schema(ctx)
	if err != nil {
		return s.fallbackPost("slug", err, slug)
	}

	var posts []content.Post
	if q, ok := SlugQuery(schema, slug); ok {
		posts, err = s.fetch(ctx, q)
	} else {
		// Without an explicit slug property slugs derive from titles, so
		// the source cannot filter on them.
		posts, err = s.fetch(ctx, PublishedQuery(schema))
	}
	if err != nil {
		return s.fallbackPost("slug", err, slug)
	}
	for _, post := range posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return content.Post{}, ErrNotFound
}

// GetPostsByCategory returns the published posts labelled with category.
func (s *Service) GetPostsByCategory(ctx context.Context, category string) ([]content.Post, error) {
	fixtures := content.FilterByCategory(Fixtures(s.opts.Author), category)
	if s.src == nil {
		return s.fallbackList("category", ErrNotConfigured, fixtures)
	}
	schema, err := s.schema(ctx)
	if err != nil {
		return s.fallbackList("category", err, fixtures)
	}
	q := PublishedQuery(schema)
	if p := planFor(schema); p.category != "" {
		q.Conditions = append(q.Conditions, Condition{Property: p.category, Type: p.categoryType, Text: category})
	}
	posts, err := s.fetch(ctx, q)
	if err != nil {
		return s.fallbackList("category", err, fixtures)
	}
	return content.FilterByCategory(posts, category), nil
}

// GetAllCategories aggregates categories over all posts.
func (s *Service) GetAllCategories(ctx context.Context) ([]content.Category, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return content.Categories(posts), nil
}

// GetAllTags aggregates tags over all posts.
func (s *Service) GetAllTags(ctx context.Context) ([]content.Tag, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return content.Tags(posts), nil
}

// SearchPosts returns posts matching query in title, excerpt, body or tags.
func (s *Service) SearchPosts(ctx context.Context, query string) ([]content.Post, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return content.Search(posts, query), nil
}

func (s *Service) schema(ctx context.Context) (content.Schema, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	schema, err := s.src.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetcher: retrieve schema: %w", err)
	}
	return schema, nil
}

// fetch queries pages and assembles them into published posts, keeping the
// query order.
func (s *Service) fetch(ctx context.Context, q Query) ([]content.Post, error) {
	qctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	records, err := s.src.QueryPages(qctx, q)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetcher: query pages: %w", err)
	}
	posts, err := Assemble(ctx, s.src, s.normalizer, records, AssembleOptions{
		Timeout:       s.opts.Timeout,
		Concurrency:   s.opts.Concurrency,
		ExcerptLength: s.opts.ExcerptLength,
	})
	if err != nil {
		return nil, err
	}
	out := posts[:0]
	for _, p := range posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

// AssembleOptions tunes Assemble.
type AssembleOptions struct {
	Timeout       time.Duration
	Concurrency   int
	ExcerptLength int
}

// Assemble normalizes records and fetches their blocks in parallel, at most
// opts.Concurrency at a time. The result has the same order as records.
// The first block fetch error cancels the rest.
func Assemble(ctx context.Context, src Source, n content.Normalizer, records []content.Record, opts AssembleOptions) ([]content.Post, error) {
	posts := make([]content.Post, len(records))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, rec := range records {
		g.Go(func() error {
			post, err := assembleOne(gctx, src, n, rec, opts)
			if err != nil {
				return err
			}
			posts[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

func assembleOne(ctx context.Context, src Source, n content.Normalizer, rec content.Record, opts AssembleOptions) (content.Post, error) {
	post := n.Normalize(rec)
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	blocks, err := src.Blocks(ctx, rec.ID)
	if err != nil {
		return content.Post{}, fmt.Errorf("fetcher: blocks of page %s: %w", rec.ID, err)
	}
	Finish(&post, content.ConvertBlocks(blocks), opts.ExcerptLength)
	return post, nil
}

// Finish sets the body of post and fills the fields derived from it.
func Finish(post *content.Post, body string, excerptLength int) {
	post.Content = body
	post.ReadingTime = markdown.ReadingTime(body)
	if strings.TrimSpace(post.Excerpt) == "" {
		post.Excerpt = markdown.ExtractExcerpt(body, excerptLength)
	}
}

func (s *Service) fallbackList(op string, cause error, fixtures []content.Post) ([]content.Post, error) {
	s.recordFailure(op, cause)
	switch s.opts.OnFailure {
	case FailureStrict:
		return nil, cause
	case FailureEmpty:
		return []content.Post{}, nil
	default:
		return fixtures, nil
	}
}

func (s *Service) fallbackPost(op string, cause error, slug string) (content.Post, error) {
	s.recordFailure(op, cause)
	switch s.opts.OnFailure {
	case FailureStrict:
		return content.Post{}, cause
	case FailureEmpty:
		return content.Post{}, ErrNotFound
	default:
		for _, p := range Fixtures(s.opts.Author) {
			if p.Slug == slug {
				return p, nil
			}
		}
		return content.Post{}, ErrNotFound
	}
}

func (s *Service) recordFailure(op string, cause error) {
	fallbacks.WithLabelValues(op, s.opts.OnFailure.String()).Inc()
	if errors.Is(cause, ErrNotConfigured) {
		s.opts.Logger.Infof("content source not configured, serving %s posts", s.opts.OnFailure)
		return
	}
	s.opts.Logger.Errorf("fetch %s posts: %v (policy %s)", op, cause, s.opts.OnFailure)
}
