// Package common defines shared constants and sentinel errors used across
// the client and server layers of Daybook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrReferentialConflict is returned when a category cannot be deleted
	// because non-deleted entries still reference it. The caller must
	// reassign or delete those entries first.
	ErrReferentialConflict = errors.New("referential conflict")

	// Sync / remote errors.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
)
