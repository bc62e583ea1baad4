// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records download runs in a SQLite database so past
// invocations and their per-file outcomes can be listed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/knowloader/internal/knows"
)

const dbFile = "history.db"

// Item statuses stored per file.
const (
	StatusDownloaded = "downloaded"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
)

// Run is one recorded invocation.
type Run struct {
	ID         int64
	StartedAt  time.Time
	SourceURL  string
	Strategy   string
	Identifier string
	Title      string
	OutputDir  string
	Requested  int
	Downloaded int
	Skipped    int
	Failed     int

	// Error is the run's final error message, empty on success.
	Error string
	Items []Item
}

// Item is the recorded outcome of one file in a run.
type Item struct {
	Position int
	Name     string
	URL      string
	Status   string
	Bytes    int64
	Error    string
}

// NewRun builds a Run from a pipeline request and its result.
func NewRun(started time.Time, req knows.Request, out knows.Outcome, runErr error) Run {
	r := Run{
		StartedAt:  started,
		SourceURL:  req.SourceURL,
		Strategy:   req.Strategy.String(),
		Identifier: out.Identifier,
		Title:      out.Title,
		OutputDir:  req.OutputDir,
		Requested:  out.Requested,
		Downloaded: out.Batch.Downloaded,
		Skipped:    out.Batch.Skipped,
		Failed:     out.Batch.Failed,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	for i, it := range out.Batch.Items {
		item := Item{Position: i + 1, Name: it.Name, URL: it.URL, Bytes: it.Bytes, Status: StatusDownloaded}
		switch {
		case it.Failed():
			item.Status = StatusFailed
			item.Error = it.Err.Error()
		case it.Skipped:
			item.Status = StatusSkipped
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates dir/history.db and its schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			source_url TEXT NOT NULL,
			strategy TEXT NOT NULL,
			identifier TEXT,
			title TEXT,
			output_dir TEXT,
			requested INTEGER NOT NULL DEFAULT 0,
			downloaded INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS run_items (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			status TEXT NOT NULL,
			bytes INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores r and its items in one transaction and returns the new
// run ID.
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, source_url, strategy, identifier, title, output_dir,
			requested, downloaded, skipped, failed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.SourceURL, r.Strategy, r.Identifier,
		r.Title, r.OutputDir, r.Requested, r.Downloaded, r.Skipped, r.Failed, r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_items (run_id, position, name, url, status, bytes, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range r.Items {
		if _, err := stmt.ExecContext(ctx, runID, it.Position, it.Name, it.URL, it.Status, it.Bytes, it.Error); err != nil {
			return 0, fmt.Errorf("inserting item %d: %w", it.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs, newest first, without their items.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, source_url, strategy, identifier, title, output_dir,
			requested, downloaded, skipped, failed, error
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                               Run
			started                         string
			identifier, title, dir, errText sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &r.SourceURL, &r.Strategy, &identifier, &title, &dir,
			&r.Requested, &r.Downloaded, &r.Skipped, &r.Failed, &errText); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = t
		}
		r.Identifier = identifier.String
		r.Title = title.String
		r.OutputDir = dir.String
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Items returns the recorded items of run id in batch order.
func (s *Store) Items(ctx context.Context, runID int64) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, name, url, status, bytes, error
		 FROM run_items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it      Item
			errText sql.NullString
		)
		if err := rows.Scan(&it.Position, &it.Name, &it.URL, &it.Status, &it.Bytes, &errText); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Error = errText.String
		items = append(items, it)
	}
	return items, rows.Err()
}
