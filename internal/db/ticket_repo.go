package db

import (
	"database/sql"
	"errors"
	"time"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
	"github.com/Baarsgaard/jig/internal/ticket"
)

// CachedTicket is a ticket together with the time it was last fetched.
type CachedTicket struct {
	ticket.Ticket
	FetchedAt time.Time
}

// TicketRepo provides database operations for cached tickets.
type TicketRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewTicketRepo creates a new TicketRepo.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db, now: time.Now}
}

// Upsert stores t, replacing any cached summary for the same key.
func (r *TicketRepo) Upsert(t ticket.Ticket) error {
	query := `
		INSERT INTO tickets (key, summary, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET summary = excluded.summary, fetched_at = excluded.fetched_at
	`
	if _, err := r.db.Exec(query, t.Key.String(), t.Summary, FormatTime(r.now())); err != nil {
		return jigerrors.WrapInternal(err, "failed to cache ticket %s", t.Key)
	}
	return nil
}

// UpsertAll stores every ticket in one transaction.
func (r *TicketRepo) UpsertAll(tickets []ticket.Ticket) error {
	tx, err := r.db.Begin()
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to begin cache transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO tickets (key, summary, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET summary = excluded.summary, fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return jigerrors.WrapInternal(err, "failed to prepare cache statement")
	}
	defer stmt.Close()

	now := FormatTime(r.now())
	for _, t := range tickets {
		if _, err := stmt.Exec(t.Key.String(), t.Summary, now); err != nil {
			return jigerrors.WrapInternal(err, "failed to cache ticket %s", t.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return jigerrors.WrapInternal(err, "failed to commit cache transaction")
	}
	return nil
}

// Get returns the cached ticket for key. A KindNotFound error is returned when
// the key was never cached.
func (r *TicketRepo) Get(key ticket.Key) (*CachedTicket, error) {
	var summary, fetchedAt string
	err := r.db.QueryRow("SELECT summary, fetched_at FROM tickets WHERE key = ?", key.String()).
		Scan(&summary, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, jigerrors.NotFound("ticket %s is not cached", key)
	}
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to read cached ticket %s", key)
	}

	return &CachedTicket{
		Ticket:    ticket.Ticket{Key: key, Summary: summary},
		FetchedAt: parseTime(fetchedAt),
	}, nil
}

// Recent returns up to limit tickets, most recently fetched first.
func (r *TicketRepo) Recent(limit int) ([]CachedTicket, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT key, summary, fetched_at FROM tickets
		ORDER BY fetched_at DESC, key ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list cached tickets")
	}
	defer rows.Close()

	var tickets []CachedTicket
	for rows.Next() {
		var key, summary, fetchedAt string
		if err := rows.Scan(&key, &summary, &fetchedAt); err != nil {
			return nil, jigerrors.WrapInternal(err, "failed to scan cached ticket")
		}
		k, err := ticket.Extract(key)
		if err != nil {
			continue
		}
		tickets = append(tickets, CachedTicket{
			Ticket:    ticket.Ticket{Key: k, Summary: summary},
			FetchedAt: parseTime(fetchedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list cached tickets")
	}
	return tickets, nil
}

// Prune removes tickets fetched before cutoff and returns how many were removed.
func (r *TicketRepo) Prune(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM tickets WHERE fetched_at < ?", FormatTime(cutoff))
	if err != nil {
		return 0, jigerrors.WrapInternal(err, "failed to prune ticket cache")
	}
	return res.RowsAffected()
}

// CountBefore returns how many tickets were fetched before cutoff.
func (r *TicketRepo) CountBefore(cutoff time.Time) (int64, error) {
	var n int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tickets WHERE fetched_at < ?", FormatTime(cutoff)).Scan(&n); err != nil {
		return 0, jigerrors.WrapInternal(err, "failed to count cached tickets")
	}
	return n, nil
}
