// Command notion-sync copies published posts from a Notion database into
// markdown files with YAML front matter.
//
// Usage:
//
//	notion-sync               sync every published post
//	notion-sync --slug <slug> sync a single post
//
// NOTION_API_KEY and NOTION_DATABASE_ID are required. POSTS_DIR (default
// content/posts), SYNC_DB, SYNC_FORCE, IMAGE_DIR, IMAGE_URL_PREFIX,
// AUTHOR_NAME and AUTHOR_EMAIL are optional.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/eringen/folio"
	"github.com/eringen/folio/archive"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
	"github.com/eringen/folio/notion"
)

func main() {
	if err := folio.LoadEnv(".env.local", ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: load env: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	slug, ok := parseArgs(args)
	if !ok {
		printUsage(stdout)
		return 1
	}

	databaseID := getenv("NOTION_DATABASE_ID")
	if databaseID == "" {
		fmt.Fprintln(stderr, "Error: the NOTION_DATABASE_ID environment variable is not set")
		return 1
	}
	apiKey := getenv("NOTION_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "Error: the NOTION_API_KEY environment variable is not set")
		return 1
	}

	opts := archive.Options{
		Dir:    getenv("POSTS_DIR"),
		Author: content.Author{Name: getenv("AUTHOR_NAME"), Email: getenv("AUTHOR_EMAIL")},
	}
	opts.Force, _ = strconv.ParseBool(getenv("SYNC_FORCE"))
	if dir := getenv("IMAGE_DIR"); dir != "" {
		prefix := getenv("IMAGE_URL_PREFIX")
		if prefix == "" {
			prefix = "/public/covers"
		}
		opts.Covers = &archive.Covers{Dir: dir, URLPrefix: prefix}
	}
	if path := getenv("SYNC_DB"); path != "" {
		ledger, err := archive.OpenLedger(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: open sync ledger: %v\n", err)
			return 1
		}
		defer ledger.Close()
		opts.Ledger = ledger
	}

	syncer := archive.NewSyncer(notion.New(apiKey, databaseID), opts)
	var (
		report archive.Report
		err    error
	)
	if slug == "" {
		fmt.Fprintln(stdout, "Fetching posts from Notion...")
		report, err = syncer.SyncAll(ctx)
	} else {
		fmt.Fprintf(stdout, "Fetching %q from Notion...\n", slug)
		report, err = syncer.SyncSlug(ctx, slug)
	}
	if errors.Is(err, fetcher.ErrNotFound) {
		fmt.Fprintf(stdout, "Post %q was not found.\n", slug)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: sync failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Sync complete: %d written, %d unchanged (run %s).\n", len(report.Written), len(report.Skipped), report.RunID)
	return 0
}

// parseArgs accepts no arguments or exactly "--slug <slug>".
func parseArgs(args []string) (slug string, ok bool) {
	switch {
	case len(args) == 0:
		return "", true
	case len(args) == 2 && args[0] == "--slug" && args[1] != "":
		return args[1], true
	default:
		return "", false
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  notion-sync               Sync every published post
  notion-sync --slug <slug> Sync a single post`)
}
