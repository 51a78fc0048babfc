package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCredentials indicates the user has no credential entries for
	// the requested provider type. Surfaced before any I/O is attempted.
	ErrNoCredentials = errors.New("no credentials for provider")

	// ErrUnsupportedProvider indicates an unknown provider type.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrSearchTimeout indicates a search waited for an in-flight cache
	// build longer than the configured limit. The whole search call fails
	// with this error rather than returning a misleading partial result.
	ErrSearchTimeout = errors.New("timed out waiting for repository cache build")
)
