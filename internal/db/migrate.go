package db

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func init() {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
}

// Migrate runs all pending migrations on the given database connection.
func Migrate(db *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return jigerrors.WrapInternal(err, "failed to set goose dialect")
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return jigerrors.WrapInternal(err, "failed to run cache migrations")
	}

	return nil
}

// MigrationStatus returns the current migration version for the given database.
func MigrationStatus(db *sql.DB) (int64, error) {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, jigerrors.WrapInternal(err, "failed to set goose dialect")
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, jigerrors.WrapInternal(err, "failed to get cache version")
	}

	return version, nil
}
