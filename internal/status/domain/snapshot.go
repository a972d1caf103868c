package domain

import "errors"

// RoomState is the reported occupancy state of a single room.
type RoomState string

const (
	StateVacant   RoomState = "vacant"
	StateOccupied RoomState = "occupied"
	StateCleaning RoomState = "cleaning"
)

// IsValid checks if the state is one of the supported values.
func (s RoomState) IsValid() bool {
	switch s {
	case StateVacant, StateOccupied, StateCleaning:
		return true
	default:
		return false
	}
}

// Room is the per-room slice of a status packet. UseCount and TotalUseMs are
// cumulative since device boot, not day-scoped.
type Room struct {
	RoomID     int       `json:"room_id"`
	State      RoomState `json:"state"`
	UseCount   int64     `json:"use_count"`
	TotalUseMs int64     `json:"total_use_ms"`
}

// Snapshot is one status packet as reported by the device or the upstream
// status endpoint.
type Snapshot struct {
	OK               bool   `json:"ok"`
	DeviceID         string `json:"device,omitempty"`
	TsMs             int64  `json:"ts_ms"`
	CleaningRequired bool   `json:"cleaning_required"`
	LastCleanTsMs    int64  `json:"last_clean_ts_ms"`
	Rooms            []Room `json:"rooms"`
}

var (
	ErrNotOK           = errors.New("status: snapshot not ok")
	ErrInvalidRoomID   = errors.New("status: invalid room id")
	ErrInvalidState    = errors.New("status: invalid room state")
	ErrNegativeCounter = errors.New("status: negative counter")
)

// Validate checks the snapshot against the wire contract. A snapshot that
// fails validation must not be applied to any summary.
func (s Snapshot) Validate() error {
	if !s.OK {
		return ErrNotOK
	}
	for _, room := range s.Rooms {
		if room.RoomID < 1 {
			return ErrInvalidRoomID
		}
		if room.State != "" && !room.State.IsValid() {
			return ErrInvalidState
		}
		if room.UseCount < 0 || room.TotalUseMs < 0 {
			return ErrNegativeCounter
		}
	}
	return nil
}
