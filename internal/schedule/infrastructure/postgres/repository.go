package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	schedule "restroom-cloud/internal/schedule/domain"
)

const defaultScheduleTable = "cleaning_schedules"

// currentKey identifies the single active roster row.
const currentKey = "current"

// Repository is a Postgres implementation of the schedule repository. The
// roster is one row keyed "current" with a JSONB payload.
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
	repo := &Repository{db: db, table: defaultScheduleTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get loads the current schedule.
func (r *Repository) Get(ctx context.Context) (schedule.Schedule, error) {
	if r == nil || r.db == nil {
		return schedule.Schedule{}, errors.New("schedule repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT payload
FROM %s
WHERE schedule_key = $1
LIMIT 1`, r.table)

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, currentKey).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.Schedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.Schedule{}, err
	}

	var sched schedule.Schedule
	if err := json.Unmarshal(payload, &sched); err != nil {
		return schedule.Schedule{}, schedule.ErrScheduleNotFound
	}
	return sched, nil
}

// Put upserts the current schedule.
func (r *Repository) Put(ctx context.Context, sched schedule.Schedule) error {
	if r == nil || r.db == nil {
		return errors.New("schedule repo: nil db")
	}
	if err := sched.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(sched)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (schedule_key, payload)
VALUES ($1, $2)
ON CONFLICT (schedule_key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`, r.table)

	_, err = r.db.ExecContext(ctx, query, currentKey, payload)
	return err
}
