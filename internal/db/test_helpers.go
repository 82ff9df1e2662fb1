package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates an in-memory SQLite cache for testing.
//
// Always use this in tests instead of a file-based cache so a misconfigured
// path can never touch the user's real cache.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return &DB{DB: sqlDB, path: ":memory:"}
}
