package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxRecent caps how many events Recent returns.
const maxRecent = 500

// Repository stores events in the file_events table.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts one event.
func (r *Repository) Record(ctx context.Context, e Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO file_events (id, kind, file_id, original_name, size_bytes, occurred_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		e.ID, string(e.Kind), e.FileID, e.OriginalName, e.SizeBytes, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert file event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}

	rows, err := r.db.Query(ctx,
		`SELECT id::text, kind, file_id, COALESCE(original_name, ''), size_bytes, occurred_at
		 FROM file_events
		 ORDER BY occurred_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query file events: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		var e Event
		var kind string
		err := row.Scan(&e.ID, &kind, &e.FileID, &e.OriginalName, &e.SizeBytes, &e.OccurredAt)
		e.Kind = Kind(kind)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan file events: %w", err)
	}
	return events, nil
}
