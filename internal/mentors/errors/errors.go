package errors

import "errors"

var (
	ErrNotFound = errors.New("mentor profile not found")

	ErrAlreadyExists = errors.New("mentor profile already exists")
)
