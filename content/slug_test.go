package content

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple   spaces\there", "multiple-spaces-here"},
		{"Go 1.24: What's New?", "go-124-whats-new"},
		{"snake_case-kept", "snake_case-kept"},
		{"타입스크립트 가이드", "타입스크립트-가이드"},
		{"", ""},
	}
	for _, tt := range tests {
		got := Slugify(tt.input)
		if got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{
		"Hello World",
		"  -- odd -- input --  ",
		"Ünïcödé Tïtlé",
		"a ! b",
		"already-a-slug",
		"MiXeD_CaSe\n\nlines",
		"İstanbul",
		"emoji 🚀 launch",
	}
	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestLabelSlug(t *testing.T) {
	if got := labelSlug("Tailwind CSS"); got != "tailwind-css" {
		t.Errorf("labelSlug = %q, want %q", got, "tailwind-css")
	}
}
