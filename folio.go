// Package folio serves a blog whose posts come from a headless CMS or from a
// directory of synced markdown files.
//
// Users provide their own templ components via the ViewFuncs struct (package
// views has a default set), and folio handles routing, caching, feeds and
// middleware.
package folio

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/folio/content"
)

// ViewFuncs holds the templ components the app renders pages with.
type ViewFuncs struct {
	Home        func(recent []content.Post, categories []content.Category, cfg SiteConfig) templ.Component
	Blog        func(posts []content.Post, tags []content.Tag, activeTag string, cfg SiteConfig) templ.Component
	Post        func(post content.Post, related []content.Post, cfg SiteConfig) templ.Component
	Categories  func(categories []content.Category, cfg SiteConfig) templ.Component
	Category    func(category content.Category, posts []content.Post, cfg SiteConfig) templ.Component
	About       func(cfg SiteConfig) templ.Component
	NotFound    func(cfg SiteConfig) templ.Component
	ServerError func(cfg SiteConfig) templ.Component
}

// PostSource supplies the published posts, newest first. Both the live
// fetcher and an archive directory satisfy it.
type PostSource interface {
	GetAllPosts(ctx context.Context) ([]content.Post, error)
}

// App wires together the post source, cache, handlers, middleware, and
// user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Cache  *PostCache
	Views  ViewFuncs

	apiLimiter   *RateLimiter
	metrics      *prometheus.Registry
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates an App serving posts from src.
func New(cfg SiteConfig, src PostSource, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Cache:     NewPostCache(src, cfg.PostCacheTTL),
		Views:     views,
		metrics:   prometheus.NewRegistry(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Handler installs middleware and routes on first use and returns the Echo
// instance.
func (a *App) Handler() http.Handler {
	if !a.ready {
		a.apiLimiter = NewRateLimiter(a.Config.APIRateLimit, a.Config.APIRateWindow)
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
		a.ready = true
	}
	return a.Echo
}

// Start sets up the app and listens on Config.Addr.
func (a *App) Start() error {
	a.Handler()
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("folio: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	if a.apiLimiter != nil {
		a.apiLimiter.Stop()
	}
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", a.metricsHandler())

	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/category/", a.handleCategories)
	e.GET("/category/:slug/", a.handleCategory)

	e.GET("/api/posts", a.handleAPIPosts, a.rateLimit)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("folio: required environment variable %s is not set", key)
	}
	return v
}
