package domain

import (
	"fmt"
	"time"

	statusdomain "restroom-cloud/internal/status/domain"
)

// HourBuckets is the number of per-hour histogram buckets in a day.
const HourBuckets = 24

// RoomBaseline is the last-seen raw cumulative counters for one room. It
// exists only so the next poll's delta can be computed; it is not part of the
// public summary.
type RoomBaseline struct {
	UseCount   int64 `json:"use_count"`
	TotalUseMs int64 `json:"total_use_ms"`
}

// Baseline is the last-seen raw state across all known rooms plus the last
// observed clean timestamp.
type Baseline struct {
	LastCleanTsMs int64                `json:"last_clean_ts_ms"`
	Rooms         map[int]RoomBaseline `json:"rooms"`
}

// DailySummary accumulates usage for a single calendar day.
// Invariants:
// 1) TotalUsers and TotalUseMs are non-negative and non-decreasing within a day.
// 2) CleanCount increments at most once per distinct last_clean_ts_ms value.
// 3) All mutations happen only while the wall-clock date equals DayKey; once
//    the day advances the summary is superseded, never carried over.
type DailySummary struct {
	DayKey     DayKey             `json:"day_key"`
	TotalUsers int64              `json:"total_users"`
	TotalUseMs int64              `json:"total_use_ms"`
	CleanCount int64              `json:"clean_count"`
	PerHour    [HourBuckets]int64 `json:"per_hour"`
	Baseline   Baseline           `json:"baseline"`
}

// NewDailySummary creates an empty summary for the given day.
func NewDailySummary(dayKey DayKey) (DailySummary, error) {
	if dayKey == "" {
		return DailySummary{}, ErrEmptyDayKey
	}
	if !dayKey.IsValid() {
		return DailySummary{}, ErrInvalidDayKey
	}
	return DailySummary{
		DayKey:   dayKey,
		Baseline: Baseline{Rooms: make(map[int]RoomBaseline)},
	}, nil
}

// ApplySnapshot folds one polled snapshot into the summary and returns the
// updated value. It is pure: the receiver is copied, the baseline map is
// cloned, and the poll instant plus location determine hour attribution.
//
// Delta rules:
//   - per-room deltas are max(0, new-baseline); a counter that went backwards
//     (device restart) contributes zero for this poll,
//   - the baseline always advances to the latest raw counters,
//   - rooms absent from the snapshot keep their baseline untouched,
//   - clean count increments only when last_clean_ts_ms is positive and
//     differs from the last observed value.
func (s DailySummary) ApplySnapshot(snapshot statusdomain.Snapshot, pollInstant time.Time, loc *time.Location) DailySummary {
	next := s
	next.Baseline = s.Baseline.clone()
	if next.Baseline.Rooms == nil {
		next.Baseline.Rooms = make(map[int]RoomBaseline)
	}

	hourIdx := HourIndex(pollInstant, loc)

	if snapshot.LastCleanTsMs > 0 && snapshot.LastCleanTsMs != next.Baseline.LastCleanTsMs {
		next.CleanCount++
		next.Baseline.LastCleanTsMs = snapshot.LastCleanTsMs
	}

	for _, room := range snapshot.Rooms {
		if room.RoomID < 1 {
			continue
		}
		base := next.Baseline.Rooms[room.RoomID]

		deltaUse := room.UseCount - base.UseCount
		if deltaUse < 0 {
			deltaUse = 0
		}
		deltaMs := room.TotalUseMs - base.TotalUseMs
		if deltaMs < 0 {
			deltaMs = 0
		}

		if deltaUse > 0 {
			next.TotalUsers += deltaUse
			next.PerHour[hourIdx] += deltaUse
		}
		if deltaMs > 0 {
			next.TotalUseMs += deltaMs
		}

		next.Baseline.Rooms[room.RoomID] = RoomBaseline{
			UseCount:   room.UseCount,
			TotalUseMs: room.TotalUseMs,
		}
	}

	return next
}

func (b Baseline) clone() Baseline {
	out := Baseline{LastCleanTsMs: b.LastCleanTsMs}
	if b.Rooms != nil {
		out.Rooms = make(map[int]RoomBaseline, len(b.Rooms))
		for id, room := range b.Rooms {
			out.Rooms[id] = room
		}
	}
	return out
}

// HourPoint is one histogram bucket of the derived view.
type HourPoint struct {
	Hour  string `json:"hour"`
	Users int64  `json:"users"`
}

// SummaryView is the read model served to the dashboard.
type SummaryView struct {
	DayKey            string      `json:"day_key"`
	TotalUsers        int64       `json:"total_users"`
	TotalUseMinutes   float64     `json:"total_use_minutes"`
	AvgMinutesPerUser float64     `json:"avg_minutes_per_user"`
	CleanCount        int64       `json:"clean_count"`
	PerHour           []HourPoint `json:"per_hour"`
}

// View derives the dashboard read model. AvgMinutesPerUser is defined as zero
// when no users were counted.
func (s DailySummary) View() SummaryView {
	totalMinutes := float64(s.TotalUseMs) / 60000.0
	avg := 0.0
	if s.TotalUsers > 0 {
		avg = totalMinutes / float64(s.TotalUsers)
	}
	perHour := make([]HourPoint, HourBuckets)
	for i := range s.PerHour {
		perHour[i] = HourPoint{
			Hour:  formatHour(i),
			Users: s.PerHour[i],
		}
	}
	return SummaryView{
		DayKey:            string(s.DayKey),
		TotalUsers:        s.TotalUsers,
		TotalUseMinutes:   totalMinutes,
		AvgMinutesPerUser: avg,
		CleanCount:        s.CleanCount,
		PerHour:           perHour,
	}
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d", h)
}
