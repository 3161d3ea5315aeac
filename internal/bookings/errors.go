package bookings

import "errors"

var (
	// ErrInvalidInput is returned for validation failures; no store access
	// has happened when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBookingNotFound is returned when a booking ID does not resolve.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTransactionFailed wraps store or lock-layer failures. The whole
	// attempt was rolled back, so the caller may retry safely.
	ErrTransactionFailed = errors.New("booking transaction failed")

	// ErrHoldAlreadyResolved is returned by the finalize step when the hold
	// was resolved by someone else, normally the expiry reclaimer.
	ErrHoldAlreadyResolved = errors.New("hold already resolved")
)
