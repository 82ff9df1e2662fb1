package db

import (
	"database/sql"
	"time"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// Branch records a branch jig created or checked out for a ticket.
type Branch struct {
	Name      string
	TicketKey ticket.Key
	CreatedAt time.Time
}

// BranchRepo provides database operations for recorded branches.
type BranchRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewBranchRepo creates a new BranchRepo.
func NewBranchRepo(db *sql.DB) *BranchRepo {
	return &BranchRepo{db: db, now: time.Now}
}

// Record stores that branch name belongs to key. Recording an existing
// branch again keeps its original creation time.
func (r *BranchRepo) Record(name string, key ticket.Key) error {
	_, err := r.db.Exec(`
		INSERT INTO branches (name, ticket_key, created_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET ticket_key = excluded.ticket_key
	`, name, key.String(), FormatTime(r.now()))
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to record branch %s", name)
	}
	return nil
}

// ListByTicket returns the branches recorded for key, newest first.
func (r *BranchRepo) ListByTicket(key ticket.Key) ([]Branch, error) {
	rows, err := r.db.Query(`
		SELECT name, created_at FROM branches
		WHERE ticket_key = ?
		ORDER BY created_at DESC, name ASC
	`, key.String())
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list branches for %s", key)
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var name, createdAt string
		if err := rows.Scan(&name, &createdAt); err != nil {
			return nil, jigerrors.WrapInternal(err, "failed to scan branch")
		}
		branches = append(branches, Branch{Name: name, TicketKey: key, CreatedAt: parseTime(createdAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list branches for %s", key)
	}
	return branches, nil
}

// Names returns the names recorded for key, newest first.
func (r *BranchRepo) Names(key ticket.Key) ([]string, error) {
	branches, err := r.ListByTicket(key)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names, nil
}

// All returns every recorded branch, oldest first.
func (r *BranchRepo) All() ([]Branch, error) {
	rows, err := r.db.Query("SELECT name, ticket_key, created_at FROM branches ORDER BY created_at ASC, name ASC")
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list branches")
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var name, key, createdAt string
		if err := rows.Scan(&name, &key, &createdAt); err != nil {
			return nil, jigerrors.WrapInternal(err, "failed to scan branch")
		}
		branches = append(branches, Branch{Name: name, TicketKey: ticket.Key(key), CreatedAt: parseTime(createdAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list branches")
	}
	return branches, nil
}

// Forget deletes the records for the named branches and returns how many
// were removed.
func (r *BranchRepo) Forget(names ...string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, jigerrors.WrapInternal(err, "failed to begin cache transaction")
	}
	defer tx.Rollback()

	var removed int64
	for _, name := range names {
		res, err := tx.Exec("DELETE FROM branches WHERE name = ?", name)
		if err != nil {
			return 0, jigerrors.WrapInternal(err, "failed to forget branch %s", name)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if err := tx.Commit(); err != nil {
		return 0, jigerrors.WrapInternal(err, "failed to commit cache transaction")
	}
	return removed, nil
}
