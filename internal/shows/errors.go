package shows

import "errors"

var (
	// ErrShowNotFound is returned when a show ID does not resolve to a row.
	ErrShowNotFound = errors.New("show not found")

	// ErrInvalidInput is returned for validation failures before any store access.
	ErrInvalidInput = errors.New("invalid input")
)
