package db

import (
	"fmt"
	"time"
)

// Status is the verification state of an identity.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRevoked  Status = "revoked"
)

// ParseStatus converts a stored status column into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusVerified, StatusRevoked:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Identity is one row of the identities table, keyed by the external user id
// the calling surface uses. Timestamps are RFC3339 UTC in storage; zero time
// means the column is null.
//
// PendingCode and CodeExpiresAt are set and cleared together: a non-empty
// code always carries its expiry.
type Identity struct {
	ExternalID     string
	Name           string
	Email          string
	Status         Status
	PendingCode    string
	CodeExpiresAt  time.Time
	VerifiedAt     time.Time
	LastActivityAt time.Time
	Created        time.Time
	IsAdmin        bool
}

// HasLiveCode reports whether a pending code exists and has not expired.
func (i *Identity) HasLiveCode(now time.Time) bool {
	if i.PendingCode == "" || i.CodeExpiresAt.IsZero() {
		return false
	}
	return now.Before(i.CodeExpiresAt)
}

// SessionExpired reports whether the last authenticated activity is older
// than the session TTL.
func (i *Identity) SessionExpired(now time.Time, sessionTTL time.Duration) bool {
	if i.LastActivityAt.IsZero() {
		return true
	}
	return now.Sub(i.LastActivityAt) > sessionTTL
}

// PendingUpsert carries the fields written when a verification attempt
// starts. Email must be normalized by the caller.
type PendingUpsert struct {
	ExternalID    string
	Name          string
	Email         string
	Code          string
	CodeExpiresAt time.Time
	Now           time.Time
}

// DbIdentity is the store contract of the verification state machine.
// Every method is a single atomic transaction; read-modify-write sequences
// are serialized per row by the implementation.
type DbIdentity interface {
	// GetByExternalID returns the identity or (nil, nil) when absent.
	GetByExternalID(externalID string) (*Identity, error)

	// GetByEmail returns the identity bound to the normalized email, or
	// (nil, nil) when the email is unclaimed.
	GetByEmail(email string) (*Identity, error)

	// UpsertPending creates or overwrites the row for p.ExternalID with
	// status pending, the new email and code. Returns ErrEmailClaimed when
	// the email is bound to a different external id; the claim check and the
	// write happen in one transaction, with the unique index as backstop.
	UpsertPending(p PendingUpsert) error

	// ConsumeCode flips the row to verified iff it is pending with exactly
	// this code, unexpired at now. The flip and the code clear are one
	// statement. Returns true when the row transitioned.
	ConsumeCode(externalID, code string, now time.Time) (bool, error)

	// ExpireSession downgrades verified to pending iff last activity is
	// before cutoff. Returns true when the row was downgraded.
	ExpireSession(externalID string, cutoff time.Time) (bool, error)

	// Touch sets last activity; missing rows are a no-op, not an error.
	Touch(externalID string, now time.Time) error

	// SetAdmin flips the admin flag. Requires an existing row.
	SetAdmin(externalID string, isAdmin bool) error

	// SetStatus writes the status directly. It is the administrative
	// surface (revocation); the state machine never calls it.
	SetStatus(externalID string, status Status) error
}

// DbJanitor is the maintenance contract used by the background sweep.
// Nothing here changes observable verification status.
type DbJanitor interface {
	// ClearDeadCodes nulls pending codes whose expiry is before cutoff.
	ClearDeadCodes(cutoff time.Time) (int64, error)

	// PruneInteractions deletes interaction rows created before cutoff.
	PruneInteractions(cutoff time.Time) (int64, error)
}

// DbApp combines the store roles the application wires together.
type DbApp interface {
	DbIdentity
	DbAudit
	DbJanitor
}
