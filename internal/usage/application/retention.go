package application

import (
	"context"
	"errors"
	"log"
	"time"

	"restroom-cloud/internal/observability/metrics"
	usage "restroom-cloud/internal/usage/domain"
)

const defaultRetentionDays = 90

// RetentionSweeper deletes stored day summaries older than the retention
// window. Today's row is never eligible.
type RetentionSweeper struct {
	store  usage.SummaryStore
	loc    *time.Location
	days   int
	clock  Clock
	logger *log.Logger
}

// RetentionOption configures the sweeper.
type RetentionOption func(*RetentionSweeper)

// WithRetentionDays overrides the retention window.
func WithRetentionDays(days int) RetentionOption {
	return func(s *RetentionSweeper) {
		if days > 0 {
			s.days = days
		}
	}
}

// WithRetentionClock overrides the clock.
func WithRetentionClock(clock Clock) RetentionOption {
	return func(s *RetentionSweeper) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewRetentionSweeper constructs a sweeper.
func NewRetentionSweeper(store usage.SummaryStore, loc *time.Location, logger *log.Logger, opts ...RetentionOption) (*RetentionSweeper, error) {
	if store == nil {
		return nil, errors.New("retention sweeper: nil store")
	}
	if loc == nil {
		loc = time.UTC
	}
	sweeper := &RetentionSweeper{
		store:  store,
		loc:    loc,
		days:   defaultRetentionDays,
		clock:  SystemClock{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(sweeper)
	}
	return sweeper, nil
}

// SweepOnce deletes everything strictly before the cutoff day and returns the
// number of rows removed.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := usage.ComputeDayKey(s.clock.Now().AddDate(0, 0, -s.days), s.loc)
	removed, err := s.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		metrics.IncStoreError("retention")
		return 0, err
	}
	if removed > 0 {
		metrics.AddRetentionDeleted(removed)
		if s.logger != nil {
			s.logger.Printf("retention sweep removed %d day summaries before %s", removed, cutoff)
		}
	}
	return removed, nil
}

// Start runs a sweep immediately and then once per interval until the context
// is cancelled. A zero interval defaults to 24h.
func (s *RetentionSweeper) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if _, err := s.SweepOnce(ctx); err != nil && s.logger != nil {
		s.logger.Printf("retention sweep failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && s.logger != nil {
				s.logger.Printf("retention sweep failed: %v", err)
			}
		}
	}
}
