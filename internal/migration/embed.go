package migration

import "embed"

const migrationsDir = "migrations"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embeddedMigrations embed.FS
