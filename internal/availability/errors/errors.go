package errors

import "errors"

var (
	ErrNotFound = errors.New("availability slot not found")

	ErrInvalidID = errors.New("invalid availability slot ID format")

	ErrInvalidTimeRange = errors.New("start_time must be before end_time")

	ErrPastDate = errors.New("specific_date must not be in the past")

	ErrVersionMismatch = errors.New("availability set version mismatch")
)
