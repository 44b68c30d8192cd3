package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry records the last sync of one post.
type Entry struct {
	Slug      string
	PageID    string
	UpdatedAt time.Time
	File      string
	RunID     string
	SyncedAt  time.Time
}

// Run summarizes one sync invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Written    int
	Skipped    int
}

// Ledger remembers what was synced so unchanged posts can be skipped.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the SQLite ledger at path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	l := &Ledger{db: db}
	if err := l.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) ensureSchema() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS synced_posts (
    slug TEXT PRIMARY KEY,
    page_id TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    file TEXT NOT NULL,
    run_id TEXT NOT NULL,
    synced_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL DEFAULT '',
    written INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0
);
`)
	if err != nil {
		return fmt.Errorf("archive: ledger schema: %w", err)
	}
	return nil
}

// Lookup returns the entry for slug; ok is false when the post was never
// synced.
func (l *Ledger) Lookup(slug string) (e Entry, ok bool, err error) {
	var updated, synced string
	err = l.db.QueryRow(`SELECT slug, page_id, updated_at, file, run_id, synced_at FROM synced_posts WHERE slug = ?`, slug).
		Scan(&e.Slug, &e.PageID, &updated, &e.File, &e.RunID, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e.UpdatedAt = parseTime(updated)
	e.SyncedAt = parseTime(synced)
	return e, true, nil
}

// Record upserts the entry for e.Slug.
func (l *Ledger) Record(e Entry) error {
	_, err := l.db.Exec(`INSERT OR REPLACE INTO synced_posts (slug, page_id, updated_at, file, run_id, synced_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Slug, e.PageID, formatTime(e.UpdatedAt), e.File, e.RunID, formatTime(e.SyncedAt))
	return err
}

// Entries lists every recorded post ordered by slug.
func (l *Ledger) Entries() ([]Entry, error) {
	rows, err := l.db.Query(`SELECT slug, page_id, updated_at, file, run_id, synced_at FROM synced_posts ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var updated, synced string
		if err := rows.Scan(&e.Slug, &e.PageID, &updated, &e.File, &e.RunID, &synced); err != nil {
			return nil, err
		}
		e.UpdatedAt = parseTime(updated)
		e.SyncedAt = parseTime(synced)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Unchanged reports whether slug was already synced at updatedAt and its
// file is still on disk.
func (l *Ledger) Unchanged(slug string, updatedAt time.Time) (bool, error) {
	e, ok, err := l.Lookup(slug)
	if err != nil || !ok {
		return false, err
	}
	if !e.UpdatedAt.Equal(updatedAt) {
		return false, nil
	}
	if _, err := os.Stat(e.File); err != nil {
		return false, nil
	}
	return true, nil
}

// StartRun records the beginning of a sync run.
func (l *Ledger) StartRun(id string, at time.Time) error {
	_, err := l.db.Exec(`INSERT INTO sync_runs (id, started_at) VALUES (?, ?)`, id, formatTime(at))
	return err
}

// FinishRun stores the outcome of a sync run.
func (l *Ledger) FinishRun(id string, at time.Time, written, skipped int) error {
	_, err := l.db.Exec(`UPDATE sync_runs SET finished_at = ?, written = ?, skipped = ? WHERE id = ?`,
		formatTime(at), written, skipped, id)
	return err
}

// LastRun returns the most recently started run.
func (l *Ledger) LastRun() (Run, bool, error) {
	var r Run
	var started, finished string
	err := l.db.QueryRow(`SELECT id, started_at, finished_at, written, skipped FROM sync_runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&r.ID, &started, &finished, &r.Written, &r.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, true, nil
}

// timeLayout keeps a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
