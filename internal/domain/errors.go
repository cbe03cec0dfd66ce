package domain

import "errors"

// Error taxonomy. Handlers translate these into problem+json responses;
// everything else maps to an upstream failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrUpstream     = errors.New("upstream service failure")
)
