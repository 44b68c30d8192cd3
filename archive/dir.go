package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
)

// Dir serves the published posts archived in a directory.
type Dir struct {
	Path string
}

// GetAllPosts reads every archived post, newest first. Drafts are skipped.
// A missing directory holds no posts.
func (d Dir) GetAllPosts(ctx context.Context) ([]content.Post, error) {
	entries, err := os.ReadDir(d.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []content.Post{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("archive: list %s: %w", d.Path, err)
	}
	posts := make([]content.Post, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		post, err := ReadFile(filepath.Join(d.Path, e.Name()))
		if err != nil {
			return nil, err
		}
		if post.Published {
			posts = append(posts, post)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
	return posts, nil
}

// GetPostBySlug reads one archived post.
func (d Dir) GetPostBySlug(ctx context.Context, slug string) (content.Post, error) {
	path, err := Path(d.Path, slug)
	if err != nil {
		return content.Post{}, fetcher.ErrNotFound
	}
	post, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return content.Post{}, fetcher.ErrNotFound
	}
	if err != nil {
		return content.Post{}, err
	}
	if !post.Published {
		return content.Post{}, fetcher.ErrNotFound
	}
	return post, nil
}
