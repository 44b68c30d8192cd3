package folio

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
)

// ErrNotFound is returned when a requested post or category does not exist.
var ErrNotFound = fetcher.ErrNotFound

// PostCache is an in-memory cache of published posts with TTL.
type PostCache struct {
	mu         sync.RWMutex
	posts      []content.Post
	tags       []content.Tag
	categories []content.Category
	fetched    time.Time
	ttl        time.Duration
	src        PostSource
}

// NewPostCache creates a PostCache backed by src.
func NewPostCache(src PostSource, ttl time.Duration) *PostCache {
	return &PostCache{src: src, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.src.GetAllPosts(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.tags = content.Tags(posts)
	c.categories = content.Categories(posts)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string) ([]content.Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	return content.FilterByTag(posts, tag), nil
}

// ListTags returns the tags of published posts in first-seen order.
func (c *PostCache) ListTags(ctx context.Context) ([]content.Tag, error) {
	if _, err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tags, nil
}

// ListCategories returns the categories of published posts in first-seen
// order.
func (c *PostCache) ListCategories(ctx context.Context) ([]content.Category, error) {
	if _, err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string) (content.Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return content.Post{}, ErrNotFound
}

// Category returns the category whose name or slug is key, with its posts.
func (c *PostCache) Category(ctx context.Context, key string) (content.Category, []content.Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Category{}, nil, err
	}
	cat, ok := content.FindCategory(posts, key)
	if !ok {
		return content.Category{}, nil, ErrNotFound
	}
	return cat, content.FilterByCategory(posts, cat.Name), nil
}
