package folio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post, categories []content.Category) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "about")},
		{Loc: BuildURL(base, "blog")},
		{Loc: BuildURL(base, "category")},
	}
	for _, p := range posts {
		u := sitemapURL{Loc: BuildURL(base, "blog", p.Slug)}
		switch {
		case !p.UpdatedAt.IsZero():
			u.LastMod = p.UpdatedAt.Format("2006-01-02")
		case !p.PublishedAt.IsZero():
			u.LastMod = p.PublishedAt.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, cat := range categories {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "category", cat.Slug)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
