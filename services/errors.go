package services

import (
	"errors"
)

var (
	// ErrStoreUnavailable marks a failed read or write against the document store.
	// It is the only error class that aborts a user's computation.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrInvalidSeason = errors.New("invalid season")
	ErrInvalidWeek   = errors.New("invalid week")

	// ErrEntryNotFound is returned when an override targets a user with no survivor entry
	ErrEntryNotFound = errors.New("survivor entry not found")

	// ErrNotEliminated is returned when reinstating an entry that is still alive
	ErrNotEliminated = errors.New("survivor entry is not eliminated")
)
