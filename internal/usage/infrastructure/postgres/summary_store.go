package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	usage "restroom-cloud/internal/usage/domain"
)

const defaultSummaryTable = "daily_usage_summaries"

// SummaryStore is a Postgres implementation of the per-day summary store.
// Each day is one row: day_key is the primary key, the summary is a JSONB
// payload. Corrupt payloads are reported as ErrSummaryNotFound so the caller
// falls back to a fresh summary instead of failing.
type SummaryStore struct {
	db    *sql.DB
	table string
}

// StoreOption configures the store.
type StoreOption func(*SummaryStore)

// WithTable overrides the default table name.
func WithTable(table string) StoreOption {
	return func(s *SummaryStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSummaryStore creates a store using the default table name.
func NewSummaryStore(db *sql.DB, opts ...StoreOption) *SummaryStore {
	store := &SummaryStore{db: db, table: defaultSummaryTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Get loads a summary by day key.
func (s *SummaryStore) Get(ctx context.Context, dayKey usage.DayKey) (usage.DailySummary, error) {
	if dayKey == "" {
		return usage.DailySummary{}, usage.ErrEmptyDayKey
	}

	query := fmt.Sprintf(`SELECT payload FROM %s WHERE day_key = $1 LIMIT 1`, s.table)
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, dayKey.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return usage.DailySummary{}, usage.ErrSummaryNotFound
	}
	if err != nil {
		return usage.DailySummary{}, err
	}

	var summary usage.DailySummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return usage.DailySummary{}, usage.ErrSummaryNotFound
	}
	if summary.DayKey != dayKey {
		return usage.DailySummary{}, usage.ErrSummaryNotFound
	}
	return summary, nil
}

// Save upserts a summary under its day key.
func (s *SummaryStore) Save(ctx context.Context, summary usage.DailySummary) error {
	if summary.DayKey == "" {
		return usage.ErrEmptyDayKey
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (day_key, payload)
VALUES ($1, $2)
ON CONFLICT (day_key)
DO UPDATE SET
	payload = EXCLUDED.payload,
	updated_at = NOW()`, s.table)

	_, err = s.db.ExecContext(ctx, query, summary.DayKey.String(), payload)
	return err
}

// DeleteBefore removes summaries with a day key strictly older than the given
// one. Day keys sort lexicographically by calendar date.
func (s *SummaryStore) DeleteBefore(ctx context.Context, dayKey usage.DayKey) (int64, error) {
	if dayKey == "" {
		return 0, usage.ErrEmptyDayKey
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE day_key < $1`, s.table)
	result, err := s.db.ExecContext(ctx, query, dayKey.String())
	if err != nil {
		return 0, err
	}
	removed, _ := result.RowsAffected()
	return removed, nil
}
