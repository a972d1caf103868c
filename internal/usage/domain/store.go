package domain

import "context"

// SummaryStore is the durable per-day key-value store for summaries. Both
// operations are fallible and callers must degrade gracefully: a failed Get
// falls back to an empty summary, a failed Save leaves the in-memory summary
// authoritative for the rest of the session.
type SummaryStore interface {
	Get(ctx context.Context, dayKey DayKey) (DailySummary, error)
	Save(ctx context.Context, summary DailySummary) error
	DeleteBefore(ctx context.Context, dayKey DayKey) (int64, error)
}
