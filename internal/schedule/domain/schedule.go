package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Weekday names accepted in assignments.
var validDays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// Assignment is one cleaning shift slot.
type Assignment struct {
	Day      string `json:"day"`
	Shift    string `json:"shift"`
	Employee string `json:"employee"`
}

// Schedule is the full weekly cleaning roster.
type Schedule struct {
	Assignments []Assignment `json:"assignments"`
	UpdatedAt   time.Time    `json:"updated_at"`
	UpdatedBy   string       `json:"updated_by"`
}

// Validate checks schedule invariants.
func (s Schedule) Validate() error {
	for i, assignment := range s.Assignments {
		if !validDays[assignment.Day] {
			return fmt.Errorf("schedule: assignment %d has invalid day %q", i, assignment.Day)
		}
		if assignment.Shift == "" {
			return fmt.Errorf("schedule: assignment %d has empty shift", i)
		}
	}
	return nil
}

// ErrScheduleNotFound indicates no schedule has been stored yet.
var ErrScheduleNotFound = errors.New("schedule: not found")

// Repository manages schedule persistence. There is a single current
// schedule; Put replaces it.
type Repository interface {
	Get(ctx context.Context) (Schedule, error)
	Put(ctx context.Context, sched Schedule) error
}
