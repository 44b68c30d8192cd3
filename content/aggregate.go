package content

import "strings"

// Categories groups posts by category in first-seen order.
func Categories(posts []Post) []Category {
	index := make(map[string]int)
	var out []Category
	for _, p := range posts {
		i, ok := index[p.Category]
		if !ok {
			index[p.Category] = len(out)
			out = append(out, Category{Name: p.Category, Slug: labelSlug(p.Category)})
			i = len(out) - 1
		}
		out[i].PostCount++
	}
	return out
}

// Tags groups posts by tag in first-seen order.
func Tags(posts []Post) []Tag {
	index := make(map[string]int)
	var out []Tag
	for _, p := range posts {
		for _, t := range p.Tags {
			i, ok := index[t]
			if !ok {
				index[t] = len(out)
				out = append(out, Tag{Name: t, Slug: labelSlug(t)})
				i = len(out) - 1
			}
			out[i].PostCount++
		}
	}
	return out
}

// FindCategory returns the category whose name or slug matches key.
func FindCategory(posts []Post, key string) (Category, bool) {
	for _, c := range Categories(posts) {
		if c.Name == key || c.Slug == key {
			return c, true
		}
	}
	return Category{}, false
}

// FilterByCategory returns the posts labelled with category name.
func FilterByCategory(posts []Post, name string) []Post {
	var out []Post
	for _, p := range posts {
		if p.Category == name {
			out = append(out, p)
		}
	}
	return out
}

// FilterByTag returns posts carrying tag, compared case-insensitively.
func FilterByTag(posts []Post, tag string) []Post {
	want := normalizeLabel(tag)
	var out []Post
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeLabel(t) == want {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Search returns posts whose title, excerpt, body or any tag contains query,
// case-insensitively. An empty query matches everything.
func Search(posts []Post, query string) []Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}
	var out []Post
	for _, p := range posts {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q) ||
		strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Related finds posts that share the category or at least one tag with
// current, excluding current itself.
func Related(current Post, posts []Post) []Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeLabel(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []Post
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		if p.Category == current.Category {
			related = append(related, p)
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[normalizeLabel(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

func normalizeLabel(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
