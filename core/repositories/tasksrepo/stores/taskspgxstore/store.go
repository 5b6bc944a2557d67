// Package taskspgxstore persists the task collection as a JSONB document in
// the storage_entries table.
package taskspgxstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/smarttasks/core/repositories"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/infrastructure/postgresdb"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

type Store struct {
	log   *logger.Logger
	pool  *postgresdb.Pool
	entry string
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool, entry string) *Store {
	if entry == "" {
		entry = repositories.DefaultEntryName
	}
	return &Store{
		log:   log,
		pool:  pool,
		entry: entry,
	}
}

func (s *Store) Load(ctx context.Context) (tasksrepo.Collection, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM storage_entries WHERE name = @name`,
		pgx.NamedArgs{"name": s.entry},
	).Scan(&raw)
	if err != nil {
		err = postgresdb.HandlePgError(err)
		if errors.Is(err, postgresdb.ErrDBNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting entry %q: %w", s.entry, err)
	}

	var c tasksrepo.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding entry %q: %w", s.entry, err)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, c tasksrepo.Collection) error {
	if c == nil {
		c = tasksrepo.Collection{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}

	const q = `
	INSERT INTO storage_entries (name, value, updated_at)
	VALUES (@name, @value, NOW())
	ON CONFLICT (name) DO UPDATE
	SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, q, pgx.NamedArgs{"name": s.entry, "value": string(raw)}); err != nil {
		return fmt.Errorf("upserting entry %q: %w", s.entry, postgresdb.HandlePgError(err))
	}
	s.log.DebugContext(ctx, "tasks written", "entry", s.entry, "count", len(c))
	return nil
}
