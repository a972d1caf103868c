package domain

import "time"

// dayKeyLayout sorts and compares by calendar date.
const dayKeyLayout = "2006-01-02"

// DayKey identifies the calendar day a summary covers, in the facility's
// fixed timezone.
type DayKey string

// ComputeDayKey derives the day key for an instant in the given location.
// It is pure so rollover behavior can be tested without real timers.
func ComputeDayKey(now time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey(now.In(loc).Format(dayKeyLayout))
}

// HourIndex returns the hour-of-day (0..23) of an instant in the given
// location. Per-hour usage is attributed to the hour the delta was observed,
// not when the underlying usage occurred.
func HourIndex(now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Hour()
}

// IsValid checks the day key format.
func (k DayKey) IsValid() bool {
	if k == "" {
		return false
	}
	_, err := time.Parse(dayKeyLayout, string(k))
	return err == nil
}

// String returns the key as a plain string.
func (k DayKey) String() string { return string(k) }
