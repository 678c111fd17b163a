package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrNotClaimable covers both a lost claim race and a booking that
	// never existed; the claim path deliberately does not distinguish
	// the two.
	ErrNotClaimable = errors.New("booking already claimed or not available")
)
