package memory

import (
	"context"
	"sync"

	schedule "restroom-cloud/internal/schedule/domain"
)

// Repository keeps the current schedule in memory.
type Repository struct {
	mu      sync.RWMutex
	current schedule.Schedule
	set     bool
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Get returns the current schedule.
func (r *Repository) Get(_ context.Context) (schedule.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.set {
		return schedule.Schedule{}, schedule.ErrScheduleNotFound
	}
	return r.current, nil
}

// Put replaces the current schedule.
func (r *Repository) Put(_ context.Context, sched schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = sched
	r.set = true
	return nil
}
