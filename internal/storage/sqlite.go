// Package storage persists completed crawl runs to SQLite so past
// results stay queryable after the in-memory task is gone.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// Store records crawl history. A nil *Store disables persistence.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		task_id TEXT PRIMARY KEY,
		seed_url TEXT NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		result_dir TEXT,
		error TEXT,
		completed_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		url TEXT NOT NULL,
		identity TEXT NOT NULL,
		depth INTEGER NOT NULL,
		title TEXT,
		filename TEXT,
		fetched_at TIMESTAMP,
		FOREIGN KEY (task_id) REFERENCES runs(task_id)
	);

	CREATE INDEX IF NOT EXISTS idx_run_pages_task ON run_pages(task_id);
	CREATE INDEX IF NOT EXISTS idx_run_pages_identity ON run_pages(identity);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Run is one persisted crawl run.
type Run struct {
	TaskID      string
	SeedURL     string
	Mode        string
	Status      string
	PageCount   int
	FailedCount int
	ResultDir   string
	Error       string
	CompletedAt time.Time
}

// SaveRun records a finished run and its pages in one transaction.
func (s *Store) SaveRun(run Run, pages []*types.PageRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO runs
		(task_id, seed_url, mode, status, page_count, failed_count, result_dir, error, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.TaskID, run.SeedURL, run.Mode, run.Status,
		run.PageCount, run.FailedCount, run.ResultDir, run.Error, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_pages (task_id, url, identity, depth, title, filename, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		if _, err := stmt.Exec(run.TaskID, p.URL, p.Identity, p.Depth, p.Title, p.Filename, p.FetchedAt); err != nil {
			return fmt.Errorf("failed to save page %s: %w", p.URL, err)
		}
	}

	return tx.Commit()
}

// GetRun loads one run by task ID.
func (s *Store) GetRun(taskID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT task_id, seed_url, mode, status, page_count, failed_count,
		       COALESCE(result_dir, ''), COALESCE(error, ''), completed_at
		FROM runs WHERE task_id = ?`, taskID)

	var run Run
	err := row.Scan(&run.TaskID, &run.SeedURL, &run.Mode, &run.Status,
		&run.PageCount, &run.FailedCount, &run.ResultDir, &run.Error, &run.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", taskID, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT task_id, seed_url, mode, status, page_count, failed_count,
		       COALESCE(result_dir, ''), COALESCE(error, ''), completed_at
		FROM runs ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.TaskID, &run.SeedURL, &run.Mode, &run.Status,
			&run.PageCount, &run.FailedCount, &run.ResultDir, &run.Error, &run.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
