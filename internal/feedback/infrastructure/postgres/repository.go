package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	feedback "restroom-cloud/internal/feedback/domain"
)

const defaultFeedbackTable = "feedback_entries"

// Repository is a Postgres implementation of the feedback repository.
type Repository struct {
	db    *sql.DB
	table string
}

// Option configures the repository.
type Option func(*Repository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(r *Repository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	repo := &Repository{db: db, table: defaultFeedbackTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save inserts an entry.
func (r *Repository) Save(ctx context.Context, entry feedback.Entry) error {
	if r == nil || r.db == nil {
		return errors.New("feedback repo: nil db")
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	room_id,
	rating,
	comment,
	created_at
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (id) DO NOTHING`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RoomID,
		entry.Rating,
		entry.Comment,
		entry.CreatedAt.UTC(),
	)
	return err
}

// List returns up to limit entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]feedback.Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("feedback repo: nil db")
	}
	if limit <= 0 {
		limit = 200
	}

	query := fmt.Sprintf(`
SELECT id, room_id, rating, comment, created_at
FROM %s
ORDER BY created_at DESC
LIMIT $1`, r.table)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []feedback.Entry
	for rows.Next() {
		var entry feedback.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.RoomID,
			&entry.Rating,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
