package errors

import "errors"

var (
	ErrNotFound = errors.New("engineer not found")

	ErrInvalidID = errors.New("invalid engineer ID format")
)
