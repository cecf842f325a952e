package db

import (
	"errors"
	"time"
)

// Sentinel errors returned by store implementations. Callers classify with
// errors.Is; anything else is an infrastructure fault.
var (
	// ErrConstraintUnique is returned when a write violates a storage-level
	// unique constraint (the UNIQUE(email) index on identities).
	ErrConstraintUnique = errors.New("unique constraint violation")

	// ErrEmailClaimed is returned when an email is already bound to a
	// different external id.
	ErrEmailClaimed = errors.New("email claimed by another identity")

	// ErrIdentityNotFound is returned by writes that require an existing row.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrMissingFields is returned when a write lacks required fields.
	ErrMissingFields = errors.New("missing required fields")
)

// Timestamps are stored as RFC3339 text in UTC.
// Example: "2024-03-07T15:04:05Z"

// TimeFormat renders a time for storage.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TimeParse parses a stored timestamp.
func TimeParse(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
