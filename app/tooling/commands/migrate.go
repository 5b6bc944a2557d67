// Package commands holds the maintenance commands run by the tooling binary.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/smarttasks/infrastructure/postgresdb"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Migrate creates the storage_entries schema in the database.
func Migrate(ctx context.Context, log *logger.Logger, pool *postgresdb.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	log.InfoContext(ctx, "migration started", "step", "testing simple query")

	var result bool
	if err := pool.QueryRow(ctx, "SELECT true").Scan(&result); err != nil {
		return fmt.Errorf("simple query failed: %w", err)
	}

	log.InfoContext(ctx, "simple query successful", "step", "running migrations")

	if err := postgresdb.Migrate(ctx, log, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.InfoContext(ctx, "migrations completed successfully")
	return nil
}
