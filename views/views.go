// Package views is the default set of page components for folio. Pages are
// html/template documents exposed as templ components, so a site can swap
// any of them for its own templ code.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"formatDate":  folio.FormatDate,
	"categoryURL": CategoryURL,
}).ParseFS(files, "templates/*.html"))

// page is the data every template receives.
type page struct {
	Site   folio.SiteConfig
	Meta   folio.PageMeta
	JSONLD template.JS
	Year   int

	Posts      []content.Post
	Post       content.Post
	Body       template.HTML
	Headings   []markdown.Heading
	Related    []content.Post
	Categories []content.Category
	Category   content.Category
	Tags       []content.Tag
	ActiveTag  string
}

// CategoryURL returns the listing path of a category.
func CategoryURL(name string) string {
	return "/category/" + url.PathEscape(name) + "/"
}

func newPage(cfg folio.SiteConfig, meta folio.PageMeta) page {
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	if meta.Description == "" {
		meta.Description = cfg.Description
	}
	return page{
		Site:   cfg,
		Meta:   meta,
		JSONLD: template.JS(folio.WebsiteJsonLD(cfg)),
		Year:   time.Now().Year(),
	}
}

func render(name string, data page) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}

// Default returns the built-in components.
func Default() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:        Home,
		Blog:        Blog,
		Post:        Post,
		Categories:  Categories,
		Category:    Category,
		About:       About,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Home lists the most recent posts and the categories.
func Home(recent []content.Post, categories []content.Category, cfg folio.SiteConfig) templ.Component {
	p := newPage(cfg, folio.PageMeta{Title: cfg.Name, URL: folio.BuildURL(cfg.URL)})
	p.Posts = recent
	p.Categories = categories
	return render("home", p)
}

// Blog lists posts, optionally narrowed to activeTag.
func Blog(posts []content.Post, tags []content.Tag, activeTag string, cfg folio.SiteConfig) templ.Component {
	title := "Blog | " + cfg.Name
	if activeTag != "" {
		title = "#" + activeTag + " | " + cfg.Name
	}
	p := newPage(cfg, folio.PageMeta{Title: title, URL: folio.BuildURL(cfg.URL, "blog")})
	p.Posts = posts
	p.Tags = tags
	p.ActiveTag = activeTag
	return render("blog", p)
}

// Post renders a post body with a table of contents whose links match the
// heading ids in the rendered HTML.
func Post(post content.Post, related []content.Post, cfg folio.SiteConfig) templ.Component {
	p := newPage(cfg, folio.PostMeta(post, cfg))
	p.JSONLD = template.JS(folio.BlogPostingJsonLD(post, cfg))
	p.Post = post
	p.Related = related
	body, headings, err := markdown.RenderDocument(post.Content)
	if err != nil {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error { return err })
	}
	p.Body = template.HTML(body)
	p.Headings = headings
	return render("post", p)
}

// Categories lists every category with its post count.
func Categories(categories []content.Category, cfg folio.SiteConfig) templ.Component {
	p := newPage(cfg, folio.PageMeta{Title: "Categories | " + cfg.Name, URL: folio.BuildURL(cfg.URL, "category")})
	p.Categories = categories
	return render("categories", p)
}

// Category lists the posts of one category.
func Category(category content.Category, posts []content.Post, cfg folio.SiteConfig) templ.Component {
	p := newPage(cfg, folio.PageMeta{Title: category.Name + " | " + cfg.Name, URL: folio.BuildURL(cfg.URL, "category", category.Slug)})
	p.Category = category
	p.Posts = posts
	return render("category", p)
}

// About is the static about page.
func About(cfg folio.SiteConfig) templ.Component {
	return render("about", newPage(cfg, folio.PageMeta{Title: "About | " + cfg.Name, URL: folio.BuildURL(cfg.URL, "about")}))
}

// NotFound is the 404 page.
func NotFound(cfg folio.SiteConfig) templ.Component {
	return render("notfound", newPage(cfg, folio.PageMeta{Title: "Not found | " + cfg.Name}))
}

// ServerError is shown when a page fails to render.
func ServerError(cfg folio.SiteConfig) templ.Component {
	return render("error", newPage(cfg, folio.PageMeta{Title: "Error | " + cfg.Name}))
}
