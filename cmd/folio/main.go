package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/folio"
	"github.com/eringen/folio/archive"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
	"github.com/eringen/folio/notion"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := serve(); err != nil {
			log.Fatalf("folio: %v", err)
		}
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve() error {
	if err := folio.LoadEnv(".env.local", ".env"); err != nil {
		return err
	}
	src, err := postSource()
	if err != nil {
		return err
	}

	app := folio.New(folio.ConfigFromEnv(), src, views.Default(),
		folio.WithStaticDir(folio.EnvOr("STATIC_DIR", "public")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			app.Echo.Logger.Errorf("shutdown: %v", err)
		}
	}()
	return app.Start()
}

// postSource serves a synced archive when CONTENT_DIR is set, and the live
// CMS otherwise. Without Notion credentials the fetcher serves its fixtures.
func postSource() (folio.PostSource, error) {
	if dir := os.Getenv("CONTENT_DIR"); dir != "" {
		return archive.Dir{Path: dir}, nil
	}
	policy, err := fetcher.ParseFailurePolicy(os.Getenv("FETCH_FAILURE"))
	if err != nil {
		return nil, err
	}
	opts := fetcher.Options{
		OnFailure: policy,
		Author:    content.Author{Name: os.Getenv("AUTHOR_NAME"), Email: os.Getenv("AUTHOR_EMAIL")},
	}
	if d, err := time.ParseDuration(os.Getenv("FETCH_TIMEOUT")); err == nil {
		opts.Timeout = d
	}
	var src fetcher.Source
	key, db := os.Getenv("NOTION_API_KEY"), os.Getenv("NOTION_DATABASE_ID")
	if key != "" && db != "" {
		src = notion.New(key, db)
	}
	return fetcher.New(src, opts), nil
}

func printUsage() {
	fmt.Println(`folio - a blog served from Notion or a synced markdown archive

Usage:
  folio <command>

Commands:
  serve      Start the web server
  version    Print the folio version
  help       Show this help message

Environment:
  NOTION_API_KEY, NOTION_DATABASE_ID   live content source (fixtures when unset)
  CONTENT_DIR                          serve a synced archive instead
  FETCH_FAILURE                        fixture | empty | strict
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, AUTHOR_NAME, AUTHOR_EMAIL, ADDR`)
}
