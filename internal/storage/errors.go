package storage

import "errors"

// Sentinel errors shared by every store backend. The attempt and run
// stores are append-only: a key collision is a refused update, never an
// overwrite.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert collides with an
	// existing key.
	ErrDuplicateKey = errors.New("duplicate key: store is append-only")

	// ErrInvalidInput is returned when a record fails validation before
	// it reaches the backend.
	ErrInvalidInput = errors.New("invalid input")
)
