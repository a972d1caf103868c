package application

import (
	"context"
	"errors"
	"time"

	statusdomain "restroom-cloud/internal/status/domain"
)

// SnapshotWatcher observes every validated snapshot after it has been folded
// into the summary. Watchers must not block for long; failures are their own
// concern.
type SnapshotWatcher interface {
	ObserveSnapshot(ctx context.Context, snapshot statusdomain.Snapshot, at time.Time)
}

// LatestSetter caches the most recent snapshot for the overview page.
type LatestSetter interface {
	Set(snapshot statusdomain.Snapshot)
}

// Recorder is the single entry point for new snapshots, whether polled from
// the upstream feed or POSTed by the device. It validates, updates the latest
// cache, feeds the aggregator, and fans out to watchers.
type Recorder struct {
	aggregator *Aggregator
	latest     LatestSetter
	watchers   []SnapshotWatcher
}

// NewRecorder constructs a recorder. latest and watchers are optional.
func NewRecorder(aggregator *Aggregator, latest LatestSetter, watchers ...SnapshotWatcher) (*Recorder, error) {
	if aggregator == nil {
		return nil, errors.New("usage: nil aggregator")
	}
	return &Recorder{
		aggregator: aggregator,
		latest:     latest,
		watchers:   watchers,
	}, nil
}

// Record applies one snapshot observed at the given instant. An invalid
// snapshot is rejected without touching any state.
func (r *Recorder) Record(ctx context.Context, snapshot statusdomain.Snapshot, at time.Time) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if r.latest != nil {
		r.latest.Set(snapshot)
	}
	if err := r.aggregator.Ingest(ctx, snapshot, at); err != nil {
		return err
	}
	for _, watcher := range r.watchers {
		watcher.ObserveSnapshot(ctx, snapshot, at)
	}
	return nil
}
