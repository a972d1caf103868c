package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"restroom-cloud/internal/observability/metrics"
	statusdomain "restroom-cloud/internal/status/domain"
	usage "restroom-cloud/internal/usage/domain"
)

// Clock provides time for the aggregator.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Aggregator owns the daily summary for "today" in a fixed timezone. It loads
// or initializes the summary from the durable store, folds snapshots into it,
// persists after every successful application, and rolls over at calendar-day
// boundaries. All state is guarded by one mutex so poll ticks and rollover
// ticks never interleave.
type Aggregator struct {
	store  usage.SummaryStore
	loc    *time.Location
	clock  Clock
	logger *log.Logger

	mu      sync.Mutex
	summary usage.DailySummary
}

// NewAggregator constructs an aggregator. The summary is loaded lazily on the
// first Ingest/CheckRollover or eagerly via Start.
func NewAggregator(store usage.SummaryStore, loc *time.Location, clock Clock, logger *log.Logger) (*Aggregator, error) {
	if store == nil {
		return nil, errors.New("usage: nil summary store")
	}
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Aggregator{
		store:  store,
		loc:    loc,
		clock:  clock,
		logger: logger,
	}, nil
}

// Start loads or initializes today's summary.
func (a *Aggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	dayKey := usage.ComputeDayKey(a.clock.Now(), a.loc)
	a.summary = a.loadOrInitLocked(ctx, dayKey)
	return nil
}

// Ingest applies one snapshot at the given poll instant and persists the
// result. If the calendar day advanced since the last tick the summary is
// rolled over first, so a snapshot is never folded into yesterday's summary.
// A persist failure is logged; the in-memory summary stays authoritative.
func (a *Aggregator) Ingest(ctx context.Context, snapshot statusdomain.Snapshot, pollInstant time.Time) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	dayKey := usage.ComputeDayKey(pollInstant, a.loc)
	if a.summary.DayKey != dayKey {
		a.summary = a.loadOrInitLocked(ctx, dayKey)
	}

	a.summary = a.summary.ApplySnapshot(snapshot, pollInstant, a.loc)
	if err := a.store.Save(ctx, a.summary); err != nil {
		metrics.IncStoreError("save")
		a.logf("usage: summary save failed: day=%s err=%v", dayKey, err)
	}
	return nil
}

// CheckRollover recomputes the day key and, when the day advanced, replaces
// the current summary with the stored-or-fresh summary for the new day. It is
// idempotent within a still-current day. The superseded day's persisted row
// is left untouched.
func (a *Aggregator) CheckRollover(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	dayKey := usage.ComputeDayKey(a.clock.Now(), a.loc)
	if a.summary.DayKey == dayKey {
		return false
	}
	previous := a.summary.DayKey
	a.summary = a.loadOrInitLocked(ctx, dayKey)
	metrics.IncRollover()
	a.logf("usage: day rollover: from=%s to=%s", previous, dayKey)
	return true
}

// CurrentView returns the derived read model for today's summary.
func (a *Aggregator) CurrentView() usage.SummaryView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary.View()
}

// ViewFor returns the stored view for an arbitrary day key.
func (a *Aggregator) ViewFor(ctx context.Context, dayKey usage.DayKey) (usage.SummaryView, error) {
	if !dayKey.IsValid() {
		return usage.SummaryView{}, usage.ErrInvalidDayKey
	}
	summary, err := a.store.Get(ctx, dayKey)
	if err != nil {
		return usage.SummaryView{}, err
	}
	return summary.View(), nil
}

// StartRolloverLoop runs the rollover check on its own coarse ticker until the
// context is canceled.
func (a *Aggregator) StartRolloverLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.CheckRollover(ctx)
		}
	}
}

// loadOrInitLocked loads the persisted summary for the day, falling back to a
// fresh empty summary on any miss or corrupt payload. The fresh summary is
// persisted immediately; a failed persist is logged only.
func (a *Aggregator) loadOrInitLocked(ctx context.Context, dayKey usage.DayKey) usage.DailySummary {
	stored, err := a.store.Get(ctx, dayKey)
	if err == nil {
		return stored
	}
	if !errors.Is(err, usage.ErrSummaryNotFound) {
		metrics.IncStoreError("get")
		a.logf("usage: summary load failed: day=%s err=%v", dayKey, err)
	}

	fresh, newErr := usage.NewDailySummary(dayKey)
	if newErr != nil {
		a.logf("usage: new summary error: day=%s err=%v", dayKey, newErr)
		return usage.DailySummary{DayKey: dayKey, Baseline: usage.Baseline{Rooms: map[int]usage.RoomBaseline{}}}
	}
	if saveErr := a.store.Save(ctx, fresh); saveErr != nil {
		a.logf("usage: summary init save failed: day=%s err=%v", dayKey, saveErr)
	}
	return fresh
}

func (a *Aggregator) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
