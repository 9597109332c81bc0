package repositories

import "errors"

// Sentinel errors returned by every store. Engines translate them into
// apperrors kinds.
var (
	ErrNotFound = errors.New("repositories: not found")
	ErrConflict = errors.New("repositories: unique constraint violated")
)
