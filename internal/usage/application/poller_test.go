package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	statusdomain "restroom-cloud/internal/status/domain"
)

type blockingSource struct {
	release chan struct{}
	calls   atomic.Int64
}

func (s *blockingSource) Latest(_ context.Context) (statusdomain.Snapshot, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	return statusdomain.Snapshot{OK: true}, nil
}

type failingSource struct{}

func (failingSource) Latest(_ context.Context) (statusdomain.Snapshot, error) {
	return statusdomain.Snapshot{}, errors.New("feed unreachable")
}

func newTestRecorder(t *testing.T) (*Recorder, *stubStore) {
	t.Helper()
	store := newStubStore()
	clock := &fakeClock{now: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)}
	agg, err := NewAggregator(store, time.UTC, clock, nil)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	_ = agg.Start(context.Background())
	recorder, err := NewRecorder(agg, nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	return recorder, store
}

func TestPollerSkipsOverlappingTicks(t *testing.T) {
	recorder, _ := newTestRecorder(t)
	source := &blockingSource{release: make(chan struct{})}
	poller, err := NewPoller(source, recorder, time.Second, SystemClock{}, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		poller.PollOnce(ctx)
		close(done)
	}()

	// Wait until the first poll is blocked inside the fetch.
	deadline := time.After(2 * time.Second)
	for source.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("first poll never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A tick while the fetch is in flight must not start a second fetch.
	poller.PollOnce(ctx)
	if got := source.calls.Load(); got != 1 {
		t.Fatalf("overlapping tick started a fetch: calls=%d", got)
	}

	close(source.release)
	<-done

	// With the first poll finished the next tick fetches again.
	source.release = nil
	poller.PollOnce(ctx)
	if got := source.calls.Load(); got != 2 {
		t.Fatalf("post-completion tick did not fetch: calls=%d", got)
	}
}

func TestPollerFetchFailureLeavesStateUntouched(t *testing.T) {
	recorder, store := newTestRecorder(t)
	poller, err := NewPoller(failingSource{}, recorder, time.Second, SystemClock{}, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	poller.PollOnce(context.Background())

	if summary, ok := store.stored("2026-08-29"); ok && summary.TotalUsers != 0 {
		t.Fatalf("failed poll mutated summary: %+v", summary)
	}
}

func TestPollerDiscardsResultAfterCancel(t *testing.T) {
	recorder, store := newTestRecorder(t)
	source := &blockingSource{release: make(chan struct{})}
	poller, err := NewPoller(source, recorder, time.Second, SystemClock{}, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.PollOnce(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for source.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("poll never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	close(source.release)
	<-done

	before := store.saves
	if before != 1 {
		// Only the Start-time init save is expected; the canceled poll must
		// not have applied its snapshot.
		t.Fatalf("canceled poll reached the store: saves=%d", before)
	}
}
