package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
	"github.com/eringen/folio/markdown"
)

// Options configures a Syncer.
type Options struct {
	// Dir receives the markdown files (default "content/posts").
	Dir string
	// Ledger, when set, lets unchanged posts be skipped.
	Ledger *Ledger
	// Force rewrites posts the ledger reports as unchanged.
	Force bool
	// Covers, when set, localizes remote cover images.
	Covers *Covers

	Timeout       time.Duration
	Concurrency   int
	ExcerptLength int
	Author        content.Author
	Logger        fetcher.Logger
}

func (o *Options) setDefaults() {
	if o.Dir == "" {
		o.Dir = "content/posts"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ExcerptLength <= 0 {
		o.ExcerptLength = markdown.DefaultExcerptLength
	}
	if o.Logger == nil {
		o.Logger = log.New("sync")
	}
}

// Report describes the outcome of a sync.
type Report struct {
	RunID   string
	Written []string // file paths, in source order
	Skipped []string // slugs left untouched
}

// Syncer copies published posts from a content source into Dir. Unlike the
// live fetcher it never falls back to fixtures: every failure is returned.
type Syncer struct {
	src        fetcher.Source
	opts       Options
	normalizer content.Normalizer
}

// NewSyncer returns a Syncer reading from src.
func NewSyncer(src fetcher.Source, opts Options) *Syncer {
	opts.setDefaults()
	return &Syncer{
		src:        src,
		opts:       opts,
		normalizer: content.NewNormalizer(opts.Author),
	}
}

// SyncAll archives every published post.
func (s *Syncer) SyncAll(ctx context.Context) (Report, error) {
	schema, err := s.schema(ctx)
	if err != nil {
		return Report{}, err
	}
	return s.run(ctx, fetcher.PublishedQuery(schema), "")
}

// SyncSlug archives the post with slug. It returns fetcher.ErrNotFound when
// no such post exists.
func (s *Syncer) SyncSlug(ctx context.Context, slug string) (Report, error) {
	schema, err := s.schema(ctx)
	if err != nil {
		return Report{}, err
	}
	q, ok := fetcher.SlugQuery(schema, slug)
	if !ok {
		q = fetcher.PublishedQuery(schema)
	}
	return s.run(ctx, q, slug)
}

func (s *Syncer) schema(ctx context.Context) (content.Schema, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	schema, err := s.src.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: retrieve schema: %w", err)
	}
	return schema, nil
}

type outcome struct {
	path    string
	slug    string
	skipped bool
}

// run archives the published records matched by q. A non-empty slug keeps
// only the record with that slug. The run is finished in the ledger on
// every path once it was started.
func (s *Syncer) run(ctx context.Context, q fetcher.Query, slug string) (report Report, err error) {
	report.RunID = uuid.NewString()
	if s.opts.Ledger != nil {
		if err := s.opts.Ledger.StartRun(report.RunID, time.Now()); err != nil {
			return report, fmt.Errorf("archive: start run: %w", err)
		}
		defer func() {
			ferr := s.opts.Ledger.FinishRun(report.RunID, time.Now(), len(report.Written), len(report.Skipped))
			if ferr != nil && err == nil {
				err = fmt.Errorf("archive: finish run: %w", ferr)
			}
		}()
	}

	qctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	records, err := s.src.QueryPages(qctx, q)
	cancel()
	if err != nil {
		return report, fmt.Errorf("archive: query pages: %w", err)
	}
	if slug != "" {
		records = matching(records, slug)
	}
	records = s.published(records)
	if slug != "" && len(records) == 0 {
		return report, fetcher.ErrNotFound
	}
	s.opts.Logger.Infof("found %d posts", len(records))

	outcomes := make([]outcome, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, rec := range records {
		g.Go(func() error {
			o, err := s.syncOne(gctx, rec, report.RunID)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, o := range outcomes {
		if o.skipped {
			report.Skipped = append(report.Skipped, o.slug)
		} else {
			report.Written = append(report.Written, o.path)
		}
	}
	return report, nil
}

// published drops drafts. Databases without a Published checkbox cannot be
// filtered by the query, so the normalized status decides.
func (s *Syncer) published(records []content.Record) []content.Record {
	out := records[:0:0]
	for _, r := range records {
		if s.normalizer.Normalize(r).Published {
			out = append(out, r)
		} else {
			s.opts.Logger.Infof("draft: %s", content.Slug(r))
		}
	}
	return out
}

func matching(records []content.Record, slug string) []content.Record {
	for _, r := range records {
		if content.Slug(r) == slug {
			return []content.Record{r}
		}
	}
	return nil
}

func (s *Syncer) syncOne(ctx context.Context, rec content.Record, runID string) (outcome, error) {
	post := s.normalizer.Normalize(rec)
	if _, err := Path(s.opts.Dir, post.Slug); err != nil {
		return outcome{}, err
	}
	if s.opts.Ledger != nil && !s.opts.Force {
		same, err := s.opts.Ledger.Unchanged(post.Slug, post.UpdatedAt)
		if err != nil {
			return outcome{}, fmt.Errorf("archive: ledger lookup %s: %w", post.Slug, err)
		}
		if same {
			s.opts.Logger.Infof("unchanged: %s", post.Slug)
			return outcome{slug: post.Slug, skipped: true}, nil
		}
	}

	s.opts.Logger.Infof("processing: %s", post.Title)
	bctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	blocks, err := s.src.Blocks(bctx, rec.ID)
	cancel()
	if err != nil {
		return outcome{}, fmt.Errorf("archive: blocks of %s: %w", post.Slug, err)
	}
	fetcher.Finish(&post, content.ConvertBlocks(blocks), s.opts.ExcerptLength)

	if s.opts.Covers != nil && post.CoverImage != "" {
		cctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		local, err := s.opts.Covers.Localize(cctx, post.Slug, post.CoverImage)
		cancel()
		if err != nil {
			return outcome{}, fmt.Errorf("archive: cover of %s: %w", post.Slug, err)
		}
		post.CoverImage = local
	}

	path, err := WriteFile(s.opts.Dir, post)
	if err != nil {
		return outcome{}, err
	}
	s.opts.Logger.Infof("written: %s", path)

	if s.opts.Ledger != nil {
		err := s.opts.Ledger.Record(Entry{
			Slug:      post.Slug,
			PageID:    rec.ID,
			UpdatedAt: post.UpdatedAt,
			File:      path,
			RunID:     runID,
			SyncedAt:  time.Now(),
		})
		if err != nil {
			return outcome{}, fmt.Errorf("archive: ledger record %s: %w", post.Slug, err)
		}
	}
	return outcome{path: path, slug: post.Slug}, nil
}
