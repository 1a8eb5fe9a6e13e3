// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of every reference processed by a
// batch run: what it resolved to, where the PDF went, and why it failed.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-fetch/internal/acquire"
)

// Entry is one recorded outcome.
type Entry struct {
	ID        int64
	RunID     string
	Reference string
	Kind      string
	DOI       string
	ViaTitle  bool
	Status    acquire.Status
	Path      string
	PDFURL    string
	Error     string
	At        time.Time
}

// Store is an open ledger database. Every Store gets its own run ID; all
// outcomes recorded through it share that ID.
type Store struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, runID: uuid.NewString(), now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunID returns the identifier attached to outcomes recorded by this Store.
func (s *Store) RunID() string {
	return s.runID
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			reference TEXT NOT NULL,
			kind TEXT NOT NULL,
			doi TEXT,
			via_title INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			path TEXT,
			pdf_url TEXT,
			error TEXT,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_doi ON outcomes(doi)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores o under the current run.
func (s *Store) Record(ctx context.Context, o acquire.Outcome) error {
	var errText string
	if o.Err != nil {
		errText = o.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, reference, kind, doi, via_title, status, path, pdf_url, error, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, o.Reference.Raw, o.Reference.Kind.String(), o.DOI, o.ViaTitle,
		string(o.Status), o.Path, o.PDFURL, errText,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting outcome: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, run_id, reference, kind, doi, via_title, status, path, pdf_url, error, at FROM outcomes`

// Recent returns the latest limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
}

// Run returns the entries of one run in processing order.
func (s *Store) Run(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, selectColumns+` WHERE run_id = ? ORDER BY id`, runID)
}

// ForDOI returns every entry that resolved to doi, oldest first.
func (s *Store) ForDOI(ctx context.Context, doi string) ([]Entry, error) {
	return s.query(ctx, selectColumns+` WHERE doi = ? ORDER BY id`, doi)
}

// Summary counts the entries of a run by status.
func (s *Store) Summary(ctx context.Context, runID string) (map[acquire.Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, count(*) FROM outcomes WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()

	counts := make(map[acquire.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		counts[acquire.Status(status)] = n
	}
	return counts, rows.Err()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var doi, path, pdfURL, errText sql.NullString
		var status, at string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Reference, &e.Kind, &doi, &e.ViaTitle,
			&status, &path, &pdfURL, &errText, &at); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		e.DOI = doi.String
		e.Path = path.String
		e.PDFURL = pdfURL.String
		e.Error = errText.String
		e.Status = acquire.Status(status)
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
