package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a page definition is not found.
	ErrNotFound = errors.New("page definition not found")

	// ErrDuplicateKey is returned when adding a page definition whose
	// name is already present.
	ErrDuplicateKey = errors.New("page definition already exists")
)
