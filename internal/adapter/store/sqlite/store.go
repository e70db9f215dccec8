// Package sqlite persists review history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phabreview/phabreview/internal/domain"
)

// ErrNotFound is returned when a review ID does not exist.
var ErrNotFound = errors.New("review not found")

// Store keeps one row per completed review.
type Store struct {
	db *sql.DB
}

// NewStore creates a SQLite store at the given path, creating the
// parent directory on first use. Use ":memory:" for an in-memory
// database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		revision_id TEXT NOT NULL,
		title TEXT NOT NULL,
		source TEXT NOT NULL,
		model TEXT NOT NULL,
		summary TEXT,
		raw_response TEXT,
		report_path TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_created ON reviews(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reviews_revision ON reviews(revision_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveReview stores a completed review and returns its row ID.
func (s *Store) SaveReview(ctx context.Context, record domain.ReviewRecord) (int64, error) {
	query := `
		INSERT INTO reviews (revision_id, title, source, model, summary, raw_response, report_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		record.RevisionID,
		record.Title,
		record.Source,
		record.Model,
		record.Summary,
		record.RawResponse,
		record.ReportPath,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("save review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted review ID: %w", err)
	}
	return id, nil
}

// GetReview retrieves a stored review by row ID.
func (s *Store) GetReview(ctx context.Context, id int64) (domain.ReviewRecord, error) {
	query := `
		SELECT id, revision_id, title, source, model, summary, raw_response, report_path, created_at
		FROM reviews
		WHERE id = ?
	`

	record, err := scanReview(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReviewRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return domain.ReviewRecord{}, fmt.Errorf("get review: %w", err)
	}
	return record, nil
}

// ListRecent retrieves the most recent reviews, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.ReviewRecord, error) {
	query := `
		SELECT id, revision_id, title, source, model, summary, raw_response, report_path, created_at
		FROM reviews
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var records []domain.ReviewRecord
	for rows.Next() {
		record, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (domain.ReviewRecord, error) {
	var record domain.ReviewRecord
	var createdAt int64

	if err := row.Scan(
		&record.ID,
		&record.RevisionID,
		&record.Title,
		&record.Source,
		&record.Model,
		&record.Summary,
		&record.RawResponse,
		&record.ReportPath,
		&createdAt,
	); err != nil {
		return domain.ReviewRecord{}, err
	}

	record.CreatedAt = time.Unix(createdAt, 0)
	return record, nil
}
