// Package content holds the post model and the pure transforms that turn raw
// CMS page records and block lists into posts.
package content

import "time"

// Author identifies who wrote a post.
type Author struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

// Post is one normalized blog entry. It is built fresh on every fetch and
// never mutated by the renderer.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Author      Author    `json:"author"`
	ReadingTime int       `json:"readingTime"`
	Published   bool      `json:"isPublished"`
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// Category is a derived aggregate over posts sharing a category label.
type Category struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int    `json:"postCount"`
}

// Tag is a derived aggregate over posts sharing a tag label.
type Tag struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int    `json:"postCount"`
}

// PropertyType names the kind of a page property.
type PropertyType string

const (
	PropertyTitle          PropertyType = "title"
	PropertyRichText       PropertyType = "rich_text"
	PropertySelect         PropertyType = "select"
	PropertyStatus         PropertyType = "status"
	PropertyMultiSelect    PropertyType = "multi_select"
	PropertyDate           PropertyType = "date"
	PropertyCheckbox       PropertyType = "checkbox"
	PropertyFiles          PropertyType = "files"
	PropertyCreatedTime    PropertyType = "created_time"
	PropertyLastEditedTime PropertyType = "last_edited_time"
)

// Property is one entry of a page's property bag. Only the fields matching
// Type are meaningful.
type Property struct {
	Type     PropertyType
	Text     []string // title, rich_text: plain text runs
	Name     string   // select, status
	Names    []string // multi_select
	Date     *time.Time
	Checkbox bool
	Files    []string // file URLs in declared order
}

// Record is a raw page as returned by the content API.
type Record struct {
	ID             string
	CreatedTime    time.Time
	LastEditedTime time.Time
	Properties     map[string]Property
}

// Schema maps the declared property names of a database to their types.
type Schema map[string]PropertyType

// BlockType names the kind of a content block.
type BlockType string

const (
	BlockParagraph    BlockType = "paragraph"
	BlockHeading1     BlockType = "heading_1"
	BlockHeading2     BlockType = "heading_2"
	BlockHeading3     BlockType = "heading_3"
	BlockBulletedItem BlockType = "bulleted_list_item"
	BlockNumberedItem BlockType = "numbered_list_item"
	BlockCode         BlockType = "code"
	BlockQuote        BlockType = "quote"
	BlockDivider      BlockType = "divider"
	BlockImage        BlockType = "image"
)

// Image hosting kinds.
const (
	HostingExternal = "external"
	HostingFile     = "file"
)

// Image is the payload of an image block.
type Image struct {
	Hosting     string
	ExternalURL string
	FileURL     string
	Caption     []string
}

// Block is a typed unit of page content. It only lives during conversion.
type Block struct {
	Type     BlockType
	Text     []string
	Language string
	Image    *Image
}
