package fetcher

import (
	"time"

	"github.com/eringen/folio/content"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Fixtures returns the sample posts served when the content source is
// unavailable, always in the same order.
func Fixtures(author content.Author) []content.Post {
	return []content.Post{
		{
			ID:          "dummy-1",
			Title:       "The Complete Guide to the Next.js 14 App Router",
			Slug:        "nextjs-14-app-router-guide",
			Content:     "# Next.js 14 App Router\n\nA tour of the new App Router in Next.js 14.\n\n## Highlights\n\n- Server components\n- Better performance\n- A nicer developer experience",
			Excerpt:     "The main features of the new Next.js 14 App Router and how to use them.",
			Category:    "Frontend",
			Tags:        []string{"Next.js", "React", "JavaScript"},
			PublishedAt: day(2024, time.January, 15),
			UpdatedAt:   day(2024, time.January, 15),
			CoverImage:  "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=800&h=400&fit=crop",
			Author:      author,
			ReadingTime: 5,
			Published:   true,
		},
		{
			ID:          "dummy-2",
			Title:       "Writing Safer Code with TypeScript",
			Slug:        "typescript-safe-coding",
			Content:     "# Writing Safer Code with TypeScript\n\nHow to lean on the TypeScript type system to write code that is safer and easier to maintain.",
			Excerpt:     "Safer coding techniques built on the TypeScript type system.",
			Category:    "Programming",
			Tags:        []string{"TypeScript", "JavaScript", "Programming"},
			PublishedAt: day(2024, time.January, 10),
			UpdatedAt:   day(2024, time.January, 10),
			CoverImage:  "https://images.unsplash.com/photo-1516116216624-53e697fedbea?w=800&h=400&fit=crop",
			Author:      author,
			ReadingTime: 8,
			Published:   true,
		},
		{
			ID:          "dummy-3",
			Title:       "Fast Styling with Tailwind CSS",
			Slug:        "tailwind-css-fast-styling",
			Content:     "# Fast Styling with Tailwind CSS\n\nHow to style quickly and efficiently with Tailwind CSS.",
			Excerpt:     "Quick styling with Tailwind CSS utility classes.",
			Category:    "Frontend",
			Tags:        []string{"Tailwind CSS", "CSS", "Styling"},
			PublishedAt: day(2024, time.January, 5),
			UpdatedAt:   day(2024, time.January, 5),
			CoverImage:  "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&h=400&fit=crop",
			Author:      author,
			ReadingTime: 6,
			Published:   true,
		},
	}
}
