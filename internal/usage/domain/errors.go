package domain

import "errors"

var (
	ErrEmptyDayKey     = errors.New("usage: empty day key")
	ErrInvalidDayKey   = errors.New("usage: invalid day key")
	ErrSummaryNotFound = errors.New("usage: summary not found")
)
