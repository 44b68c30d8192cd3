package folio

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD and the about page
	AuthorEmail string

	Addr string // Listen address (default ":3000")

	PostCacheTTL time.Duration // Post cache TTL (default 5min)

	APIRateLimit  int           // /api/posts requests per window and IP (default 60)
	APIRateWindow time.Duration // default 1min
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.APIRateLimit <= 0 {
		c.APIRateLimit = 60
	}
	if c.APIRateWindow <= 0 {
		c.APIRateWindow = time.Minute
	}
}

// LoadEnv loads the given dotenv files into the process environment,
// earlier files taking precedence. Missing files are skipped. Variables
// already set in the environment are never overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ConfigFromEnv reads SITE_* and related variables into a SiteConfig.
func ConfigFromEnv() SiteConfig {
	cfg := SiteConfig{
		Name:        EnvOr("SITE_NAME", ""),
		URL:         EnvOr("SITE_URL", ""),
		Description: EnvOr("SITE_DESCRIPTION", ""),
		Author:      EnvOr("AUTHOR_NAME", ""),
		AuthorEmail: EnvOr("AUTHOR_EMAIL", ""),
		Addr:        EnvOr("ADDR", ""),
	}
	if d, err := time.ParseDuration(EnvOr("POST_CACHE_TTL", "")); err == nil {
		cfg.PostCacheTTL = d
	}
	if n, err := strconv.Atoi(EnvOr("API_RATE_LIMIT", "")); err == nil {
		cfg.APIRateLimit = n
	}
	return cfg
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
