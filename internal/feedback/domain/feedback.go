package feedback

import (
	"context"
	"errors"
	"time"
)

// Entry is one piece of visitor feedback.
type Entry struct {
	ID        string    `json:"id"`
	RoomID    int       `json:"room_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks entry invariants.
func (e Entry) Validate() error {
	if e.ID == "" {
		return errors.New("feedback: empty id")
	}
	if e.Rating < 1 || e.Rating > 5 {
		return errors.New("feedback: rating must be 1..5")
	}
	if e.RoomID < 0 {
		return errors.New("feedback: negative room id")
	}
	return nil
}

// Repository manages feedback persistence.
type Repository interface {
	Save(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
}
