package folio

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

const (
	recentPosts  = 6
	relatedPosts = 3
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	categories, err := a.Cache.ListCategories(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(firstN(posts, recentPosts), categories, a.Config))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About(a.Config))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(ctx, tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(posts, tags, tag, a.Config))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, pathParam(c, "slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	}
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	related := firstN(content.Related(post, posts), relatedPosts)
	return Render(c, a.Views.Post(post, related, a.Config))
}

func (a *App) handleCategories(c echo.Context) error {
	categories, err := a.Cache.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Categories(categories, a.Config))
}

func (a *App) handleCategory(c echo.Context) error {
	cat, posts, err := a.Cache.Category(c.Request().Context(), pathParam(c, "slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Category(cat, posts, a.Config))
}

// handleAPIPosts serves post summaries as JSON, filtered by the optional
// q, category and tag query parameters.
func (a *App) handleAPIPosts(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, c.QueryParam("tag"))
	if err != nil {
		c.Logger().Errorf("api posts: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "posts unavailable"})
	}
	if category := c.QueryParam("category"); category != "" {
		cat, ok := content.FindCategory(posts, category)
		if !ok {
			posts = nil
		} else {
			posts = content.FilterByCategory(posts, cat.Name)
		}
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		posts = content.Search(posts, q)
	}

	resp := postsResponse{Posts: make([]apiPost, 0, len(posts)), Total: len(posts)}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, apiPost{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			URL:         BuildURL(a.Config.URL, "blog", p.Slug),
			Excerpt:     p.Excerpt,
			Category:    p.Category,
			Tags:        p.Tags,
			PublishedAt: p.PublishedAt.Format(time.RFC3339),
			CoverImage:  p.CoverImage,
			ReadingTime: p.ReadingTime,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	categories, err := a.Cache.ListCategories(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, categories)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n", strings.TrimSuffix(BuildURL(a.Config.URL, "sitemap.xml"), "/"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// pathParam returns the unescaped value of a path parameter.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func firstN(posts []content.Post, n int) []content.Post {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}
