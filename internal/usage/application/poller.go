package application

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"restroom-cloud/internal/observability/metrics"
	statusdomain "restroom-cloud/internal/status/domain"
)

// SnapshotSource fetches the latest snapshot from the upstream status feed.
type SnapshotSource interface {
	Latest(ctx context.Context) (statusdomain.Snapshot, error)
}

// Poller drives the aggregator from the upstream feed on a fixed interval.
// A tick that finds the previous fetch still in flight skips its turn
// entirely; the fixed interval itself is the retry mechanism, so failed polls
// are logged and dropped without backoff.
type Poller struct {
	source   SnapshotSource
	recorder *Recorder
	interval time.Duration
	clock    Clock
	logger   *log.Logger

	inFlight atomic.Bool
}

// NewPoller constructs a poller.
func NewPoller(source SnapshotSource, recorder *Recorder, interval time.Duration, clock Clock, logger *log.Logger) (*Poller, error) {
	if source == nil {
		return nil, errors.New("usage: nil snapshot source")
	}
	if recorder == nil {
		return nil, errors.New("usage: nil recorder")
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Poller{
		source:   source,
		recorder: recorder,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Start polls immediately, then on every tick until the context is canceled.
// In-flight fetch results are discarded once the context is done.
func (p *Poller) Start(ctx context.Context) {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// PollOnce runs a single poll cycle, skipping when one is already in flight.
func (p *Poller) PollOnce(ctx context.Context) {
	p.pollOnce(ctx)
}

func (p *Poller) pollOnce(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.IncPollSkipped()
		return
	}
	defer p.inFlight.Store(false)

	start := p.clock.Now()
	snapshot, err := p.source.Latest(ctx)
	if err != nil {
		metrics.ObservePoll(metrics.ResultError, time.Since(start))
		p.logf("poll failed: %v", err)
		return
	}
	if ctx.Err() != nil {
		// The consumer went away mid-fetch; do not apply a stale snapshot.
		return
	}
	if err := p.recorder.Record(ctx, snapshot, p.clock.Now()); err != nil {
		metrics.ObservePoll(metrics.ResultError, time.Since(start))
		p.logf("poll apply failed: %v", err)
		return
	}
	metrics.ObservePoll(metrics.ResultSuccess, time.Since(start))
}

func (p *Poller) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
