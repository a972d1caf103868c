package memory

import (
	"context"
	"sync"

	feedback "restroom-cloud/internal/feedback/domain"
)

// Repository keeps feedback entries in memory, newest first.
type Repository struct {
	mu      sync.RWMutex
	entries []feedback.Entry
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Save appends an entry.
func (r *Repository) Save(_ context.Context, entry feedback.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]feedback.Entry{entry}, r.entries...)
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (r *Repository) List(_ context.Context, limit int) ([]feedback.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]feedback.Entry, n)
	copy(out, r.entries[:n])
	return out, nil
}
