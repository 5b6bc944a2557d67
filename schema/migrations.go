// Package schema contains embedded migration files.
package schema

import "embed"

// MigrationsFS contains all SQL migration files from the pgmigrations directory.
//
//go:embed pgmigrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the directory inside MigrationsFS holding the migrations.
const MigrationsDir = "pgmigrations"
