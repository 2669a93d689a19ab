// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish persists analysis results and pushes them to the team
// workspace. Publishing runs through a durable SQLite-backed queue: the
// server enqueues a job per analysis and a worker drains the queue, so a
// crash or workspace outage never loses a result.
package publish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avoynikov/tenderlens/pkg/types"
)

const dbFile = "tenderlens.db"

// Job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// ErrNotFound reports a missing analysis or job.
var ErrNotFound = errors.New("not found")

// Store manages the analyses history and the publish queue in SQLite.
type Store struct {
	db *sql.DB
}

// Analysis is a stored analysis run keyed by its result file name.
type Analysis struct {
	FileKey   string    `json:"file"`
	Name      string    `json:"name"`
	Mode      string    `json:"mode"`
	Windows   int       `json:"windows"`
	Failed    int       `json:"failed"`
	JSON      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Job is one publish attempt's queue entry.
type Job struct {
	ID        int64     `json:"id"`
	FileKey   string    `json:"file"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	PageURL   string    `json:"page_url,omitempty"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStore opens or creates the SQLite database under stateDir and ensures
// the schema exists.
func NewStore(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
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
		`CREATE TABLE IF NOT EXISTS analyses (
			file_key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			mode TEXT NOT NULL,
			windows INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			json TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS publish_jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_key TEXT NOT NULL REFERENCES analyses(file_key),
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			page_url TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON publish_jobs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_file_key ON publish_jobs(file_key)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SaveAnalysis upserts an analysis result under fileKey.
func (s *Store) SaveAnalysis(ctx context.Context, fileKey string, res *types.AnalysisResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (file_key, name, mode, windows, failed, json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_key) DO UPDATE SET
			name=excluded.name, mode=excluded.mode, windows=excluded.windows,
			failed=excluded.failed, json=excluded.json`,
		fileKey, res.Name, res.Mode, res.Windows, res.Failed, res.JSON, now(),
	)
	if err != nil {
		return fmt.Errorf("saving analysis %s: %w", fileKey, err)
	}
	return nil
}

// GetAnalysis returns the stored analysis for fileKey.
func (s *Store) GetAnalysis(ctx context.Context, fileKey string) (*Analysis, error) {
	var a Analysis
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT file_key, name, mode, windows, failed, json, created_at
		 FROM analyses WHERE file_key = ?`, fileKey,
	).Scan(&a.FileKey, &a.Name, &a.Mode, &a.Windows, &a.Failed, &a.JSON, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", fileKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading analysis %s: %w", fileKey, err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &a, nil
}

// ListAnalyses returns stored analyses, newest first.
func (s *Store) ListAnalyses(ctx context.Context) ([]Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_key, name, mode, windows, failed, created_at
		 FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var created string
		if err := rows.Scan(&a.FileKey, &a.Name, &a.Mode, &a.Windows, &a.Failed, &created); err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Enqueue adds a pending publish job for fileKey.
func (s *Store) Enqueue(ctx context.Context, fileKey, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO publish_jobs (file_key, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fileKey, name, StatusPending, now(), now(),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueueing publish job for %s: %w", fileKey, err)
	}
	return res.LastInsertId()
}

// NextPending claims the oldest pending job, marking it processing, and
// returns it. Returns ErrNotFound when the queue is empty. The claim happens
// in one transaction so concurrent workers never double-claim a job.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var j Job
	var updated string
	err = tx.QueryRowContext(ctx,
		`SELECT id, file_key, name, status, attempts, page_url, message, updated_at
		 FROM publish_jobs WHERE status = ? ORDER BY id LIMIT 1`, StatusPending,
	).Scan(&j.ID, &j.FileKey, &j.Name, &j.Status, &j.Attempts, &j.PageURL, &j.Message, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting pending job: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE publish_jobs SET status = ?, attempts = attempts + 1, updated_at = ? WHERE id = ?`,
		StatusProcessing, now(), j.ID,
	); err != nil {
		return nil, fmt.Errorf("claiming job %d: %w", j.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	j.Status = StatusProcessing
	j.Attempts++
	j.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &j, nil
}

// MarkDone records a successful publish with the created page URL.
func (s *Store) MarkDone(ctx context.Context, jobID int64, pageURL string) error {
	return s.updateJob(ctx, jobID, StatusDone, pageURL, "")
}

// MarkError records a failed publish attempt. Jobs whose attempt count is
// still under maxAttempts go back to pending for another try.
func (s *Store) MarkError(ctx context.Context, jobID int64, message string, maxAttempts int) error {
	var attempts int
	err := s.db.QueryRowContext(ctx,
		`SELECT attempts FROM publish_jobs WHERE id = ?`, jobID,
	).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading job %d: %w", jobID, err)
	}

	status := StatusError
	if attempts < maxAttempts {
		status = StatusPending
	}
	return s.updateJob(ctx, jobID, status, "", message)
}

func (s *Store) updateJob(ctx context.Context, jobID int64, status, pageURL, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE publish_jobs SET status = ?, page_url = ?, message = ?, updated_at = ? WHERE id = ?`,
		status, pageURL, message, now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("updating job %d: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	return nil
}

// JobStatus returns the latest publish job for fileKey.
func (s *Store) JobStatus(ctx context.Context, fileKey string) (*Job, error) {
	var j Job
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_key, name, status, attempts, page_url, message, updated_at
		 FROM publish_jobs WHERE file_key = ? ORDER BY id DESC LIMIT 1`, fileKey,
	).Scan(&j.ID, &j.FileKey, &j.Name, &j.Status, &j.Attempts, &j.PageURL, &j.Message, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("publish job for %s: %w", fileKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading publish job for %s: %w", fileKey, err)
	}
	j.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &j, nil
}
