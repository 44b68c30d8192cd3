package folio

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, optional
}

// postsResponse is the body of GET /api/posts.
type postsResponse struct {
	Posts []apiPost `json:"posts"`
	Total int       `json:"total"`
}

// apiPost is a post without its body.
type apiPost struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	URL         string   `json:"url"`
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt"`
	CoverImage  string   `json:"coverImage,omitempty"`
	ReadingTime int      `json:"readingTime"`
}
