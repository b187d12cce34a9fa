package usecase

import "errors"

// Sentinel errors the HTTP layer maps onto response statuses. Services
// wrap them with %w plus a message naming what exactly failed.
var (
	// ErrInvalidInput rejects a malformed or out-of-range request value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means the requested league or view is not configured.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized rejects a missing or wrong internal token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDependencyUnavailable means a backing dependency cannot serve
	// the request right now.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
