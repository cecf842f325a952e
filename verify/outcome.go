package verify

import (
	"time"

	"github.com/gitinsky/gatekeeper/db"
)

// StartOutcome classifies the result of a verification start. Infra faults
// travel as errors, never as outcomes.
type StartOutcome int

const (
	StartCodeSent StartOutcome = iota
	StartInvalidEmail
	StartEmailClaimed
	StartAlreadyRequested
	StartDeliveryFailed
)

func (o StartOutcome) String() string {
	switch o {
	case StartCodeSent:
		return "code_sent"
	case StartInvalidEmail:
		return "invalid_email"
	case StartEmailClaimed:
		return "email_claimed"
	case StartAlreadyRequested:
		return "already_requested"
	case StartDeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// StartResult is the typed reply of StartVerification. Message is safe to
// show to the end user.
type StartResult struct {
	Outcome StartOutcome
	Message string
}

// SubmitOutcome classifies the result of a code submission.
type SubmitOutcome int

const (
	SubmitVerified SubmitOutcome = iota
	SubmitAlreadyVerified
	SubmitNotFound
	SubmitCodeExpired
	SubmitCodeMismatch
)

func (o SubmitOutcome) String() string {
	switch o {
	case SubmitVerified:
		return "verified"
	case SubmitAlreadyVerified:
		return "already_verified"
	case SubmitNotFound:
		return "not_found"
	case SubmitCodeExpired:
		return "code_expired"
	case SubmitCodeMismatch:
		return "code_mismatch"
	default:
		return "unknown"
	}
}

// Verified and AlreadyVerified are both success-shaped.
func (o SubmitOutcome) Success() bool {
	return o == SubmitVerified || o == SubmitAlreadyVerified
}

// SubmitResult is the typed reply of SubmitCode.
type SubmitResult struct {
	Outcome SubmitOutcome
	Message string
}

// StatusReport is the read-only projection returned by Status. Registered is
// false when no record exists; the zero Status then carries no meaning.
type StatusReport struct {
	Registered bool
	Status     db.Status
	Email      string
	VerifiedAt time.Time

	// CodeMinutesLeft is set only for a pending record with a live code.
	CodeMinutesLeft int

	Message string
}
