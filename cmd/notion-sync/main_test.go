package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args []string
		slug string
		ok   bool
	}{
		{nil, "", true},
		{[]string{"--slug", "hello"}, "hello", true},
		{[]string{"--slug"}, "", false},
		{[]string{"--slug", ""}, "", false},
		{[]string{"hello"}, "", false},
		{[]string{"--slug", "a", "b"}, "", false},
	}
	for _, tt := range tests {
		slug, ok := parseArgs(tt.args)
		if slug != tt.slug || ok != tt.ok {
			t.Errorf("parseArgs(%q) = %q, %v; want %q, %v", tt.args, slug, ok, tt.slug, tt.ok)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"usage", []string{"--bogus"}, map[string]string{"NOTION_API_KEY": "k", "NOTION_DATABASE_ID": "d"}, "Usage:"},
		{"no database", nil, map[string]string{"NOTION_API_KEY": "k"}, "NOTION_DATABASE_ID"},
		{"no key", nil, map[string]string{"NOTION_DATABASE_ID": "d"}, "NOTION_API_KEY"},
	}
	for _, tt := range tests {
		var out, errOut bytes.Buffer
		code := run(context.Background(), tt.args, envOf(tt.env), &out, &errOut)
		if code != 1 {
			t.Errorf("%s: exit code = %d, want 1", tt.name, code)
		}
		if !strings.Contains(out.String()+errOut.String(), tt.want) {
			t.Errorf("%s: output missing %q", tt.name, tt.want)
		}
	}
}
