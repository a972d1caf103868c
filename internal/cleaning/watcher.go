package cleaning

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"restroom-cloud/internal/cleaning/notify"
	"restroom-cloud/internal/observability/metrics"
	statusdomain "restroom-cloud/internal/status/domain"
)

// Clock provides time for cooldown decisions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Watcher observes status snapshots and notifies the configured channel when
// the feed flips cleaning_required on. Repeated snapshots with the flag still
// raised do not re-notify until the flag has cleared or the cooldown elapsed.
type Watcher struct {
	channel  notify.Channel
	cooldown time.Duration
	clock    Clock
	logger   *log.Logger

	mu       sync.Mutex
	raised   bool
	lastSent time.Time
}

// Option configures the watcher.
type Option func(*Watcher)

// WithCooldown sets the minimum interval between notifications while the flag
// stays raised.
func WithCooldown(cooldown time.Duration) Option {
	return func(w *Watcher) {
		if cooldown > 0 {
			w.cooldown = cooldown
		}
	}
}

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(w *Watcher) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// NewWatcher constructs a watcher. A nil channel disables notifications.
func NewWatcher(channel notify.Channel, logger *log.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		channel:  channel,
		cooldown: 30 * time.Minute,
		clock:    systemClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ObserveSnapshot implements the snapshot watcher hook.
func (w *Watcher) ObserveSnapshot(ctx context.Context, snapshot statusdomain.Snapshot, at time.Time) {
	_ = at
	if w == nil || w.channel == nil {
		return
	}

	w.mu.Lock()
	shouldNotify := false
	now := w.clock.Now()
	if snapshot.CleaningRequired {
		if !w.raised || now.Sub(w.lastSent) >= w.cooldown {
			shouldNotify = true
			w.lastSent = now
		}
		w.raised = true
	} else {
		w.raised = false
	}
	w.mu.Unlock()

	if !shouldNotify {
		return
	}

	content := fmt.Sprintf("Cleaning required (last cleaned %s)", formatLastClean(snapshot.LastCleanTsMs))
	if err := w.channel.Send(ctx, content); err != nil {
		metrics.IncCleaningAlert(metrics.ResultError)
		if w.logger != nil {
			w.logger.Printf("cleaning notify failed: %v", err)
		}
		return
	}
	metrics.IncCleaningAlert(metrics.ResultSuccess)
}

func formatLastClean(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
