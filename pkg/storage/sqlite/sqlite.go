// Package sqlite stores drafts in a SQLite database using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	project_id TEXT PRIMARY KEY,
	content    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store keeps drafts in a single table.
type Store struct {
	db *sql.DB
}

// Open creates or opens a database at path. Use ":memory:" for a throwaway
// database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - a 5-second busy timeout for lock contention
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", stmt, err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) GetDraft(ctx context.Context, projectID string) (*storage.Response, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	var (
		content []byte
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM drafts WHERE project_id = ?`, projectID,
	).Scan(&content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound(projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("query draft: %w", err)
	}
	return storage.Found(json.RawMessage(content), time.UnixMilli(updated).UTC()), nil
}

func (s *Store) SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error {
	if err := storage.CheckSave(projectID, content); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (project_id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		projectID, []byte(content), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *Store) DeleteDraft(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// ListProjects returns the ids with a draft, sorted.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT project_id FROM drafts ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan draft id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Lister  = (*Store)(nil)
	_ storage.Deleter = (*Store)(nil)
)
