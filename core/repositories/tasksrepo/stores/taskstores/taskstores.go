// Package taskstores picks the task Storer named by configuration.
package taskstores

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/tasksfilestore"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/taskssqlitestore"
	"github.com/jrazmi/smarttasks/infrastructure/postgresdb"
	"github.com/jrazmi/smarttasks/sdk/environment"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures the backing store.
type Options struct {
	Driver      string `env:"STORE_DRIVER" default:"file"`
	Entry       string `env:"STORE_ENTRY" default:"tasks"`
	DataDir     string `env:"DATA_DIR" default:"./data"`
	SQLitePath  string `env:"SQLITE_PATH" default:"./data/smarttasks.db"`
	AutoMigrate bool   `env:"PG_AUTO_MIGRATE" default:"true"`
}

// Storer is an opened store with the functions that probe and release it.
type Storer struct {
	tasksrepo.Storer
	Driver string
	Check  func(ctx context.Context) error
	Close  func() error
}

func noopCheck(context.Context) error { return nil }

func noopClose() error { return nil }

// OptionsFromEnv reads PREFIX_STORE_* and related variables.
func OptionsFromEnv(prefix string) (Options, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return Options{}, fmt.Errorf("parsing store config: %w", err)
	}
	return cfg, nil
}

// Open builds the store named by cfg.Driver. The postgres driver reads its
// pool settings from PREFIX_PG_* variables.
func Open(ctx context.Context, log *logger.Logger, prefix string, cfg Options) (Storer, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	switch driver {
	case DriverFile, "":
		return Storer{
			Storer: tasksfilestore.NewStore(log, cfg.DataDir, cfg.Entry),
			Driver: DriverFile,
			Check:  noopCheck,
			Close:  noopClose,
		}, nil

	case DriverMemory:
		return Storer{
			Storer: tasksmemstore.NewStore(),
			Driver: DriverMemory,
			Check:  noopCheck,
			Close:  noopClose,
		}, nil

	case DriverSQLite:
		db, err := taskssqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return Storer{}, err
		}
		return Storer{
			Storer: taskssqlitestore.NewStore(log, db, cfg.Entry),
			Driver: DriverSQLite,
			Check:  db.PingContext,
			Close:  db.Close,
		}, nil

	case DriverPostgres:
		pool, err := postgresdb.NewFromEnv(prefix, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return Storer{}, fmt.Errorf("connecting to postgres: %w", err)
		}
		if cfg.AutoMigrate {
			if err := postgresdb.Migrate(ctx, log, pool); err != nil {
				pool.Close()
				return Storer{}, err
			}
		}
		return Storer{
			Storer: taskspgxstore.NewStore(log, pool, cfg.Entry),
			Driver: DriverPostgres,
			Check: func(ctx context.Context) error {
				return postgresdb.StatusCheck(ctx, pool)
			},
			Close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		return Storer{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
