package archive

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fetcher"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

func samplePost() content.Post {
	return content.Post{
		ID:          "page-1",
		Title:       "Hello: World",
		Slug:        "hello-world",
		Content:     "# Hello\n\nSome text.\n\n",
		Excerpt:     "Hello Some text.",
		Category:    "Backend",
		Tags:        []string{"Go", "CMS"},
		PublishedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 16, 8, 30, 0, 0, time.UTC),
		CoverImage:  "/public/covers/hello-world.jpg",
		Author:      content.Author{Name: "kim", Email: "kim@example.com"},
		Published:   true,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := samplePost()
	path, err := WriteFile(dir, want)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if path != filepath.Join(dir, "hello-world.md") {
		t.Errorf("path = %q", path)
	}

	raw, _ := os.ReadFile(path)
	if !bytes.HasPrefix(raw, []byte("---\n")) || !bytes.Contains(raw, []byte("isPublished: true")) {
		t.Errorf("unexpected file:\n%s", raw)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(got.Content) != strings.TrimSpace(want.Content) {
		t.Errorf("Content = %q, want %q", got.Content, want.Content)
	}
	if got.ReadingTime != 1 {
		t.Errorf("ReadingTime = %d, want 1", got.ReadingTime)
	}
	got.Content, want.Content = "", ""
	got.ReadingTime, want.ReadingTime = 0, 0
	if !got.PublishedAt.Equal(want.PublishedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("times = %v %v", got.PublishedAt, got.UpdatedAt)
	}
	got.PublishedAt, want.PublishedAt = time.Time{}, time.Time{}
	got.UpdatedAt, want.UpdatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip\n got %+v\nwant %+v", got, want)
	}
}

func TestReadFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.md")
	if err := os.WriteFile(path, []byte("---\nisPublished: true\n---\nPlain body here.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	post, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if post.Slug != "bare" || post.Title != content.DefaultTitle || post.Category != content.DefaultCategory {
		t.Errorf("defaults = %q %q %q", post.Slug, post.Title, post.Category)
	}
	if post.Excerpt != "Plain body here." {
		t.Errorf("Excerpt = %q", post.Excerpt)
	}
	if post.Tags == nil {
		t.Error("Tags should be empty, not nil")
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	for _, slug := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := Path("dir", slug); err == nil {
			t.Errorf("Path(%q) should fail", slug)
		}
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	older := samplePost()
	older.Slug = "older"
	older.PublishedAt = time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := samplePost()
	newer.Slug = "newer"
	draft := samplePost()
	draft.Slug = "draft"
	draft.Published = false
	for _, p := range []content.Post{older, newer, draft} {
		if _, err := WriteFile(dir, p); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	d := Dir{Path: dir}
	posts, err := d.GetAllPosts(context.Background())
	if err != nil {
		t.Fatalf("GetAllPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].Slug != "newer" || posts[1].Slug != "older" {
		t.Errorf("posts = %+v", posts)
	}

	if _, err := d.GetPostBySlug(context.Background(), "draft"); !errors.Is(err, fetcher.ErrNotFound) {
		t.Errorf("draft lookup err = %v, want ErrNotFound", err)
	}
	if _, err := d.GetPostBySlug(context.Background(), "missing"); !errors.Is(err, fetcher.ErrNotFound) {
		t.Errorf("missing lookup err = %v, want ErrNotFound", err)
	}
	if p, err := d.GetPostBySlug(context.Background(), "older"); err != nil || p.Slug != "older" {
		t.Errorf("older lookup = %+v, %v", p, err)
	}

	empty, err := Dir{Path: filepath.Join(dir, "nope")}.GetAllPosts(context.Background())
	if err != nil || len(empty) != 0 {
		t.Errorf("missing dir = %d posts, %v", len(empty), err)
	}
}

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "data", "sync.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedger(t *testing.T) {
	l := openTestLedger(t)
	file := filepath.Join(t.TempDir(), "a.md")
	os.WriteFile(file, []byte("x"), 0o644)
	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	if _, ok, err := l.Lookup("a"); ok || err != nil {
		t.Fatalf("Lookup on empty ledger = %v, %v", ok, err)
	}
	if err := l.Record(Entry{Slug: "a", PageID: "p", UpdatedAt: updated, File: file, RunID: "r1", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	e, ok, err := l.Lookup("a")
	if err != nil || !ok || e.PageID != "p" || !e.UpdatedAt.Equal(updated) {
		t.Errorf("Lookup = %+v %v %v", e, ok, err)
	}

	if same, _ := l.Unchanged("a", updated); !same {
		t.Error("same timestamp should be unchanged")
	}
	if same, _ := l.Unchanged("a", updated.Add(time.Second)); same {
		t.Error("newer timestamp should be changed")
	}
	os.Remove(file)
	if same, _ := l.Unchanged("a", updated); same {
		t.Error("missing file should be changed")
	}

	entries, err := l.Entries()
	if err != nil || len(entries) != 1 {
		t.Errorf("Entries = %+v, %v", entries, err)
	}
}

func TestLedgerRuns(t *testing.T) {
	l := openTestLedger(t)
	if _, ok, err := l.LastRun(); ok || err != nil {
		t.Fatalf("LastRun on empty ledger = %v, %v", ok, err)
	}
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := l.StartRun("run-1", start); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := l.FinishRun("run-1", start.Add(time.Minute), 3, 2); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	r, ok, err := l.LastRun()
	if err != nil || !ok || r.ID != "run-1" || r.Written != 3 || r.Skipped != 2 || !r.FinishedAt.Equal(start.Add(time.Minute)) {
		t.Errorf("LastRun = %+v %v %v", r, ok, err)
	}
}

type fakeSource struct {
	schema  content.Schema
	records []content.Record
	blocks  map[string][]content.Block
	err     error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Schema(context.Context) (content.Schema, error) { return f.schema, f.err }

func (f *fakeSource) QueryPages(_ context.Context, q fetcher.Query) ([]content.Record, error) {
	if q.Limit == 1 && len(q.Conditions) == 1 {
		for _, r := range f.records {
			if content.Slug(r) == q.Conditions[0].Text {
				return []content.Record{r}, nil
			}
		}
		return nil, nil
	}
	return f.records, nil
}

func (f *fakeSource) Blocks(_ context.Context, id string) ([]content.Block, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	return f.blocks[id], nil
}

func record(id, title, slug string, edited time.Time) content.Record {
	return content.Record{
		ID:             id,
		LastEditedTime: edited,
		Properties: map[string]content.Property{
			"Title":     {Type: content.PropertyTitle, Text: []string{title}},
			"Slug":      {Type: content.PropertyRichText, Text: []string{slug}},
			"Published": {Type: content.PropertyCheckbox, Checkbox: true},
		},
	}
}

func newSyncSource() *fakeSource {
	edited := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	return &fakeSource{
		schema: content.Schema{"Title": content.PropertyTitle, "Slug": content.PropertyRichText, "Published": content.PropertyCheckbox},
		records: []content.Record{
			record("p1", "One", "one", edited),
			record("p2", "Two", "two", edited),
		},
		blocks: map[string][]content.Block{
			"p1": {{Type: content.BlockParagraph, Text: []string{"first body"}}},
			"p2": {{Type: content.BlockCode, Language: "python", Text: []string{"print(1)"}}},
		},
	}
}

func TestSyncAllSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	src := newSyncSource()
	ledger := openTestLedger(t)
	s := NewSyncer(src, Options{Dir: dir, Ledger: ledger, Logger: nopLogger{}})

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	want := []string{filepath.Join(dir, "one.md"), filepath.Join(dir, "two.md")}
	if !reflect.DeepEqual(report.Written, want) || len(report.Skipped) != 0 {
		t.Fatalf("first report = %+v", report)
	}
	body, _ := os.ReadFile(want[1])
	if !strings.Contains(string(body), "```python\nprint(1)\n```") {
		t.Errorf("two.md = %s", body)
	}

	report, err = s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("second SyncAll: %v", err)
	}
	if len(report.Written) != 0 || !reflect.DeepEqual(report.Skipped, []string{"one", "two"}) {
		t.Errorf("second report = %+v", report)
	}
	if len(src.calls) != 2 {
		t.Errorf("block fetches = %d, want 2", len(src.calls))
	}
	if r, ok, _ := ledger.LastRun(); !ok || r.ID != report.RunID || r.Skipped != 2 {
		t.Errorf("LastRun = %+v", r)
	}

	forced := NewSyncer(src, Options{Dir: dir, Ledger: ledger, Force: true, Logger: nopLogger{}})
	report, err = forced.SyncAll(context.Background())
	if err != nil || len(report.Written) != 2 {
		t.Errorf("forced report = %+v, %v", report, err)
	}
}

func TestSyncSlug(t *testing.T) {
	dir := t.TempDir()
	s := NewSyncer(newSyncSource(), Options{Dir: dir, Logger: nopLogger{}})

	report, err := s.SyncSlug(context.Background(), "two")
	if err != nil {
		t.Fatalf("SyncSlug: %v", err)
	}
	if !reflect.DeepEqual(report.Written, []string{filepath.Join(dir, "two.md")}) {
		t.Errorf("Written = %q", report.Written)
	}
	if _, err := os.Stat(filepath.Join(dir, "one.md")); !os.IsNotExist(err) {
		t.Error("one.md should not be written")
	}

	if _, err := s.SyncSlug(context.Background(), "three"); !errors.Is(err, fetcher.ErrNotFound) {
		t.Errorf("missing slug err = %v, want ErrNotFound", err)
	}
}

func TestSyncSurfacesErrors(t *testing.T) {
	boom := errors.New("boom")
	s := NewSyncer(&fakeSource{err: boom}, Options{Dir: t.TempDir(), Logger: nopLogger{}})
	if _, err := s.SyncAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func pngOf(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessImage(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1600, 800, 800, 400},
		{400, 300, 400, 300},
	}
	for _, tt := range tests {
		data, err := processImage(bytes.NewReader(pngOf(tt.w, tt.h)))
		if err != nil {
			t.Fatalf("processImage: %v", err)
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("%dx%d -> %dx%d, want %dx%d", tt.w, tt.h, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}

	if _, err := processImage(strings.NewReader("not an image")); err == nil {
		t.Error("processImage should reject garbage")
	}
}

func TestCoversLocalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(pngOf(1000, 500))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := Covers{Dir: dir, URLPrefix: "/public/covers", Client: srv.Client()}

	got, err := c.Localize(context.Background(), "post", srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("Localize: %v", err)
	}
	if got != "/public/covers/post.jpg" {
		t.Errorf("Localize = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "post.jpg")); err != nil {
		t.Errorf("cover not written: %v", err)
	}

	if got, err := c.Localize(context.Background(), "post", "/public/local.jpg"); err != nil || got != "/public/local.jpg" {
		t.Errorf("local URL = %q, %v", got, err)
	}
	if _, err := c.Localize(context.Background(), "post", srv.URL+"/missing.png"); err == nil {
		t.Error("404 should fail")
	}
}

func statusRecord(id, slug, status string) content.Record {
	return content.Record{
		ID:             id,
		LastEditedTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Properties: map[string]content.Property{
			"Title":  {Type: content.PropertyTitle, Text: []string{slug}},
			"Slug":   {Type: content.PropertyRichText, Text: []string{slug}},
			"Status": {Type: content.PropertySelect, Name: status},
		},
	}
}

func TestSyncSkipsDraftsByStatus(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{
		schema: content.Schema{"Title": content.PropertyTitle, "Slug": content.PropertyRichText, "Status": content.PropertySelect},
		records: []content.Record{
			statusRecord("p1", "live", "Published"),
			statusRecord("p2", "draft", "Draft"),
		},
	}
	s := NewSyncer(src, Options{Dir: dir, Logger: nopLogger{}})

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if !reflect.DeepEqual(report.Written, []string{filepath.Join(dir, "live.md")}) || len(report.Skipped) != 0 {
		t.Errorf("report = %+v", report)
	}
	if _, err := os.Stat(filepath.Join(dir, "draft.md")); !os.IsNotExist(err) {
		t.Error("draft.md should not be written")
	}
	if !reflect.DeepEqual(src.calls, []string{"p1"}) {
		t.Errorf("block fetches = %q, want only p1", src.calls)
	}

	if _, err := s.SyncSlug(context.Background(), "draft"); !errors.Is(err, fetcher.ErrNotFound) {
		t.Errorf("draft slug err = %v, want ErrNotFound", err)
	}
}

func TestSyncRejectsSlugBeforeCover(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Write(pngOf(10, 10))
	}))
	defer srv.Close()

	root := t.TempDir()
	imageDir := filepath.Join(root, "a", "b")
	rec := record("p1", "Escape", "../../escaped", time.Now())
	rec.Properties["CoverImage"] = content.Property{Type: content.PropertyFiles, Files: []string{srv.URL + "/c.png"}}
	src := &fakeSource{
		schema:  content.Schema{"Title": content.PropertyTitle, "Slug": content.PropertyRichText, "Published": content.PropertyCheckbox},
		records: []content.Record{rec},
	}
	s := NewSyncer(src, Options{
		Dir:    filepath.Join(root, "posts"),
		Covers: &Covers{Dir: imageDir, URLPrefix: "/public/covers", Client: srv.Client()},
		Logger: nopLogger{},
	})

	if _, err := s.SyncAll(context.Background()); err == nil || !strings.Contains(err.Error(), "unusable slug") {
		t.Fatalf("err = %v, want unusable slug", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escaped.jpg")); !os.IsNotExist(err) {
		t.Error("cover written outside the image dir")
	}
	if hits != 0 {
		t.Errorf("cover downloaded %d times, want 0", hits)
	}
	if len(src.calls) != 0 {
		t.Errorf("block fetches = %d, want 0", len(src.calls))
	}
}

func TestCoversLocalizeRejectsPathSlugs(t *testing.T) {
	c := Covers{Dir: t.TempDir(), URLPrefix: "/public/covers"}
	for _, slug := range []string{"", ".", "..", "../x", `a\b`} {
		if _, err := c.Localize(context.Background(), slug, "https://example.com/c.png"); err == nil {
			t.Errorf("Localize(%q) should fail", slug)
		}
	}
}

func TestSyncCoverTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	rec := record("p1", "Slow", "slow", time.Now())
	rec.Properties["CoverImage"] = content.Property{Type: content.PropertyFiles, Files: []string{srv.URL + "/c.png"}}
	src := &fakeSource{
		schema:  content.Schema{"Title": content.PropertyTitle, "Slug": content.PropertyRichText, "Published": content.PropertyCheckbox},
		records: []content.Record{rec},
	}
	s := NewSyncer(src, Options{
		Dir:     t.TempDir(),
		Covers:  &Covers{Dir: t.TempDir(), Client: srv.Client()},
		Timeout: 50 * time.Millisecond,
		Logger:  nopLogger{},
	})

	start := time.Now()
	_, err := s.SyncAll(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("sync took %v", elapsed)
	}
}

func TestSyncFinishesRunOnError(t *testing.T) {
	ledger := openTestLedger(t)
	s := NewSyncer(newSyncSource(), Options{Dir: t.TempDir(), Ledger: ledger, Logger: nopLogger{}})

	report, err := s.SyncSlug(context.Background(), "missing")
	if !errors.Is(err, fetcher.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	r, ok, err := ledger.LastRun()
	if err != nil || !ok || r.ID != report.RunID {
		t.Fatalf("LastRun = %+v %v %v", r, ok, err)
	}
	if r.FinishedAt.IsZero() {
		t.Error("run left unfinished")
	}
}
