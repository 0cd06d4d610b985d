package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wbkit/waymark/pkg/observability"
)

// schema is applied on open; CREATE TABLE IF NOT EXISTS makes reopening a
// populated database a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT PRIMARY KEY,
	target       TEXT NOT NULL,
	timestamp    TEXT NOT NULL,
	original_url TEXT NOT NULL,
	snapshot_url TEXT NOT NULL,
	status_code  INTEGER NOT NULL DEFAULT 0,
	title        TEXT NOT NULL DEFAULT '',
	html         TEXT NOT NULL DEFAULT '',
	length       INTEGER NOT NULL DEFAULT 0,
	fetched_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_target ON records(target);
CREATE INDEX IF NOT EXISTS idx_records_fetched_at ON records(fetched_at);
`

// SQLite is the default library backend: a single-file database under the
// user's data directory.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) the database at path and
// bootstraps the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Save inserts or replaces rec, assigning an ID and FetchedAt when missing.
func (s *SQLite) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO records
		(id, target, timestamp, original_url, snapshot_url, status_code, title, html, length, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Target, rec.Timestamp, rec.OriginalURL, rec.SnapshotURL,
		rec.StatusCode, rec.Title, rec.HTML, rec.Length, rec.FetchedAt)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	observability.Store().OnSave(ctx, "sqlite", rec.Length)
	return nil
}

// Get returns the full record for id, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, target, timestamp, original_url, snapshot_url, status_code, title, html, length, fetched_at
		FROM records WHERE id = ?`, id)

	var rec Record
	err := row.Scan(&rec.ID, &rec.Target, &rec.Timestamp, &rec.OriginalURL, &rec.SnapshotURL,
		&rec.StatusCode, &rec.Title, &rec.HTML, &rec.Length, &rec.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// List returns matching records newest-first, HTML omitted.
func (s *SQLite) List(ctx context.Context, f Filter) ([]*Record, error) {
	query := `
		SELECT id, target, timestamp, original_url, snapshot_url, status_code, title, length, fetched_at
		FROM records`
	var args []any
	if f.Target != "" {
		query += " WHERE target = ?"
		args = append(args, f.Target)
	}
	query += " ORDER BY fetched_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Target, &rec.Timestamp, &rec.OriginalURL, &rec.SnapshotURL,
			&rec.StatusCode, &rec.Title, &rec.Length, &rec.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Delete removes the record for id, or returns ErrNotFound.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	observability.Store().OnDelete(ctx, "sqlite")
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }
