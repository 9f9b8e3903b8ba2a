package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrVersionMismatch = errors.New("booking version mismatch")

	ErrTimeConflict = errors.New("requested time conflicts with an existing booking")
)
