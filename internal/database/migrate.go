package database

import (
	"embed"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// Migrate applies every pending up migration.
func Migrate(db *sqlx.DB, log *zap.Logger) error {
	migrate.SetTable("schema_migrations")

	n, err := migrate.Exec(db.DB, "postgres", Source(), migrate.Up)
	if err != nil {
		return err
	}

	log.Info("database migrations applied", zap.Int("count", n))
	return nil
}
