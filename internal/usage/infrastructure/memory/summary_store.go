package memory

import (
	"context"
	"sync"

	usage "restroom-cloud/internal/usage/domain"
)

// SummaryStore is an in-memory summary store for tests and degraded runs.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[usage.DayKey]usage.DailySummary
}

// NewSummaryStore constructs a store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{data: make(map[usage.DayKey]usage.DailySummary)}
}

// Get loads a summary by day key.
func (s *SummaryStore) Get(ctx context.Context, dayKey usage.DayKey) (usage.DailySummary, error) {
	_ = ctx
	if dayKey == "" {
		return usage.DailySummary{}, usage.ErrEmptyDayKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.data[dayKey]
	if !ok {
		return usage.DailySummary{}, usage.ErrSummaryNotFound
	}
	return summary, nil
}

// Save upserts a summary.
func (s *SummaryStore) Save(ctx context.Context, summary usage.DailySummary) error {
	_ = ctx
	if summary.DayKey == "" {
		return usage.ErrEmptyDayKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[summary.DayKey] = summary
	return nil
}

// DeleteBefore removes summaries with a day key strictly older than the given
// one and returns how many were removed.
func (s *SummaryStore) DeleteBefore(ctx context.Context, dayKey usage.DayKey) (int64, error) {
	_ = ctx
	if dayKey == "" {
		return 0, usage.ErrEmptyDayKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key := range s.data {
		if key < dayKey {
			delete(s.data, key)
			removed++
		}
	}
	return removed, nil
}
