// Package db provides the local SQLite cache of Jira tickets and the branches
// jig created for them.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

const cacheFile = "cache.db"

// DB wraps a sql.DB connection to the cache.
type DB struct {
	*sql.DB
	path string
}

// DefaultPath returns $XDG_CACHE_HOME/jig/cache.db, falling back to the
// platform cache directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "jig", cacheFile)
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "jig", cacheFile)
	}
	return filepath.Join(os.TempDir(), "jig", cacheFile)
}

// Open opens or creates the cache at path and applies pending migrations.
// If path is empty, DefaultPath is used.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath()
	} else {
		path = expandPath(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to create cache directory")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to open cache %s", path)
	}

	// SQLite only supports one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, jigerrors.WrapInternal(err, "failed to connect to cache %s", path)
	}
	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the file path of the database.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// Tickets returns the ticket repository backed by this cache.
func (d *DB) Tickets() *TicketRepo {
	return NewTicketRepo(d.DB)
}

// Branches returns the branch repository backed by this cache.
func (d *DB) Branches() *BranchRepo {
	return NewBranchRepo(d.DB)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}

	return path
}

// Delete removes the cache file at path along with its WAL and SHM files.
func Delete(path string) error {
	if path == "" {
		path = DefaultPath()
	} else {
		path = expandPath(path)
	}

	os.Remove(path + "-wal")
	os.Remove(path + "-shm")

	return os.Remove(path)
}

// FormatTime formats a time.Time as an RFC 3339 string for SQLite.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
