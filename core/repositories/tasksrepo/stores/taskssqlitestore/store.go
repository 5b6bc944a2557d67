// Package taskssqlitestore persists the task collection as one row of a
// SQLite key/value table.
package taskssqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jrazmi/smarttasks/core/repositories"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/sdk/logger"
	"github.com/jrazmi/smarttasks/sdk/validation"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type Store struct {
	log   *logger.Logger
	db    *sql.DB
	entry string
}

// Open opens (or creates) the database file at path and ensures the entries
// table exists.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// a single writer keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating entries table: %w", err)
	}
	return db, nil
}

func NewStore(log *logger.Logger, db *sql.DB, entry string) *Store {
	if entry == "" {
		entry = repositories.DefaultEntryName
	}
	return &Store{
		log:   log,
		db:    db,
		entry: entry,
	}
}

func (s *Store) Load(ctx context.Context) (tasksrepo.Collection, error) {
	var value validation.JSONField[tasksrepo.Collection]

	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE name = ?`, s.entry).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting entry %q: %w", s.entry, err)
	}
	return value.Data, nil
}

func (s *Store) Save(ctx context.Context, c tasksrepo.Collection) error {
	if c == nil {
		c = tasksrepo.Collection{}
	}
	value := validation.JSONField[tasksrepo.Collection]{Data: c, Valid: true}

	const q = `
	INSERT INTO entries (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, q, s.entry, value); err != nil {
		return fmt.Errorf("upserting entry %q: %w", s.entry, err)
	}
	s.log.DebugContext(ctx, "tasks written", "entry", s.entry, "count", len(c))
	return nil
}
