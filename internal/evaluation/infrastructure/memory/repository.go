package memory

import (
	"context"
	"sync"

	evaluation "restroom-cloud/internal/evaluation/domain"
)

// Repository keeps evaluations in memory, newest first.
type Repository struct {
	mu    sync.RWMutex
	evals []evaluation.Evaluation
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Save prepends an evaluation.
func (r *Repository) Save(_ context.Context, eval evaluation.Evaluation) error {
	if err := eval.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evals = append([]evaluation.Evaluation{eval}, r.evals...)
	return nil
}

// List returns up to limit evaluations, optionally filtered by employee.
func (r *Repository) List(_ context.Context, employee string, limit int) ([]evaluation.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []evaluation.Evaluation
	for _, eval := range r.evals {
		if employee != "" && eval.Employee != employee {
			continue
		}
		out = append(out, eval)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
