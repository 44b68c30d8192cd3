package fetcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

// FailurePolicy selects what a Service returns when the content source is
// unconfigured or a call to it fails.
type FailurePolicy int

const (
	// FailureFixture serves the built-in sample posts.
	FailureFixture FailurePolicy = iota
	// FailureEmpty serves no posts.
	FailureEmpty
	// FailureStrict returns the error to the caller.
	FailureStrict
)

func (p FailurePolicy) String() string {
	switch p {
	case FailureFixture:
		return "fixture"
	case FailureEmpty:
		return "empty"
	case FailureStrict:
		return "strict"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy accepts "fixture", "empty", and "strict" (or "throw").
// An empty string selects FailureFixture.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixture":
		return FailureFixture, nil
	case "empty":
		return FailureEmpty, nil
	case "strict", "throw":
		return FailureStrict, nil
	default:
		return 0, fmt.Errorf("fetcher: unknown failure policy %q", s)
	}
}

// Logger is the subset of echo.Logger the fetcher writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Options configures a Service.
type Options struct {
	OnFailure FailurePolicy

	// Timeout bounds every individual call to the source (default 10s).
	Timeout time.Duration
	// Concurrency bounds parallel block fetches (default 4).
	Concurrency int
	// ExcerptLength is used when a page has no explicit excerpt (default 160).
	ExcerptLength int

	// Author is stamped on every post, fixtures included.
	Author content.Author
	// StrictPublish treats pages without any publish-status property as
	// drafts instead of published.
	StrictPublish bool

	Logger Logger
}

func (o *Options) setDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ExcerptLength <= 0 {
		o.ExcerptLength = markdown.DefaultExcerptLength
	}
	if o.Logger == nil {
		o.Logger = log.New("fetcher")
	}
}
