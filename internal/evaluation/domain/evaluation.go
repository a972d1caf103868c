package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Evaluation is a manager's scoring of one employee's cleaning work.
// All four criteria are required and range 1..5.
type Evaluation struct {
	ID          string    `json:"id"`
	Employee    string    `json:"employee"`
	Evaluator   string    `json:"evaluator"`
	Cleanliness int       `json:"cleanliness"`
	Supplies    int       `json:"supplies"`
	Floor       int       `json:"floor"`
	Odor        int       `json:"odor"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks evaluation invariants.
func (e Evaluation) Validate() error {
	if e.ID == "" {
		return errors.New("evaluation: empty id")
	}
	if e.Employee == "" {
		return errors.New("evaluation: empty employee")
	}
	for _, criterion := range []struct {
		name  string
		score int
	}{
		{"cleanliness", e.Cleanliness},
		{"supplies", e.Supplies},
		{"floor", e.Floor},
		{"odor", e.Odor},
	} {
		if criterion.score < 1 || criterion.score > 5 {
			return fmt.Errorf("evaluation: %s must be 1..5", criterion.name)
		}
	}
	return nil
}

// Average returns the mean of the four criteria scores.
func (e Evaluation) Average() float64 {
	return float64(e.Cleanliness+e.Supplies+e.Floor+e.Odor) / 4
}

// Repository manages evaluation persistence.
type Repository interface {
	Save(ctx context.Context, eval Evaluation) error
	List(ctx context.Context, employee string, limit int) ([]Evaluation, error)
}
