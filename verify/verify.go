// Package verify implements the identity verification and session-lifecycle
// state machine: one-time email codes, the pending/verified/revoked
// transitions and the rolling session window.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/gitinsky/gatekeeper/cache"
	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/crypto"
	"github.com/gitinsky/gatekeeper/db"
	"github.com/gitinsky/gatekeeper/notify"
)

// Deliverer sends an issued code to an email address. mail.Mailer satisfies
// this.
type Deliverer interface {
	DeliverCode(ctx context.Context, email, code string, ttl time.Duration) error
}

// Service is the verification state machine. All mutating decisions are
// pushed into single-statement conditional updates on the store, so
// concurrent calls for the same identity cannot observe partial transitions.
type Service struct {
	store          db.DbIdentity
	deliverer      Deliverer
	cooldown       cache.Cache[string, time.Time]
	notifier       notify.Notifier
	configProvider *config.Provider
	logger         *slog.Logger

	// now and issueCode are swappable for tests.
	now       func() time.Time
	issueCode func(length int) (string, error)
}

func NewService(store db.DbIdentity, deliverer Deliverer, cooldown cache.Cache[string, time.Time], notifier notify.Notifier, configProvider *config.Provider, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("verify: store is required")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("verify: deliverer is required")
	}
	if cooldown == nil {
		return nil, fmt.Errorf("verify: cooldown cache is required")
	}
	if configProvider == nil {
		return nil, fmt.Errorf("verify: config provider is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("verify: logger is required")
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}

	return &Service{
		store:          store,
		deliverer:      deliverer,
		cooldown:       cooldown,
		notifier:       notifier,
		configProvider: configProvider,
		logger:         logger,
		now:            time.Now,
		issueCode:      crypto.RandomDigits,
	}, nil
}

// NormalizeEmail lowercases and trims an address; storage and comparisons
// always use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail reports whether addr is a plain well-formed address on the
// allowed domain.
func validEmail(addr, allowedDomain string) bool {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return false
	}
	return strings.HasSuffix(addr, "@"+allowedDomain)
}

func cooldownKey(email string) string { return "resend:" + email }

// StartVerification validates the address, binds it to the caller's record
// with a fresh code in one transaction, then attempts delivery. Delivery
// failure keeps the pending row and its live code.
func (s *Service) StartVerification(ctx context.Context, externalID, name, email string) (StartResult, error) {
	cfg := s.configProvider.Get()
	email = NormalizeEmail(email)

	if !validEmail(email, cfg.Verification.AllowedDomain) {
		return StartResult{
			Outcome: StartInvalidEmail,
			Message: fmt.Sprintf("Please provide a valid @%s email address.", cfg.Verification.AllowedDomain),
		}, nil
	}

	if cfg.Verification.ResendCooldown.Duration > 0 {
		if _, hit := s.cooldown.Get(cooldownKey(email)); hit {
			return StartResult{
				Outcome: StartAlreadyRequested,
				Message: "A code was sent recently. Check your inbox, or try again later.",
			}, nil
		}
	}

	now := s.now()
	code, err := s.issueCode(cfg.Verification.CodeLength)
	if err != nil {
		return StartResult{}, fmt.Errorf("verify: issue code: %w", err)
	}

	err = s.store.UpsertPending(db.PendingUpsert{
		ExternalID:    externalID,
		Name:          name,
		Email:         email,
		Code:          code,
		CodeExpiresAt: now.Add(cfg.Verification.CodeTTL.Duration),
		Now:           now,
	})
	if err != nil {
		if errors.Is(err, db.ErrEmailClaimed) {
			s.notifier.Send(ctx, notify.Notification{
				Timestamp: now,
				Type:      notify.AlarmNotification,
				Level:     slog.LevelWarn,
				Source:    "verify",
				Message:   "email claim conflict",
				Fields:    map[string]any{"email": email, "external_id": externalID},
			})
			return StartResult{
				Outcome: StartEmailClaimed,
				Message: "This email address is already in use by another account.",
			}, nil
		}
		return StartResult{}, fmt.Errorf("verify: upsert pending: %w", err)
	}

	deliveryCtx, cancel := context.WithTimeout(ctx, cfg.Verification.DeliveryTimeout.Duration)
	defer cancel()

	if err := s.deliverer.DeliverCode(deliveryCtx, email, code, cfg.Verification.CodeTTL.Duration); err != nil {
		s.logger.Error("verify: code delivery failed",
			"external_id", externalID, "email", email, "err", err)
		return StartResult{
			Outcome: StartDeliveryFailed,
			Message: "Could not send the verification email. Please try again.",
		}, nil
	}

	// Only a delivered code starts the cooldown, so a failed send can be
	// retried immediately.
	if cfg.Verification.ResendCooldown.Duration > 0 {
		s.cooldown.SetWithTTL(cooldownKey(email), now, 1, cfg.Verification.ResendCooldown.Duration)
	}

	ttlMinutes := int(cfg.Verification.CodeTTL.Duration.Minutes())
	return StartResult{
		Outcome: StartCodeSent,
		Message: fmt.Sprintf("A verification code was sent to %s. It expires in %d minutes.", email, ttlMinutes),
	}, nil
}

// SubmitCode checks the submitted code against the pending one. Expiry takes
// precedence over mismatch, and a mismatch never clears the code.
func (s *Service) SubmitCode(ctx context.Context, externalID, code string) (SubmitResult, error) {
	_ = ctx
	code = strings.TrimSpace(code)
	now := s.now()

	identity, err := s.store.GetByExternalID(externalID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("verify: get identity: %w", err)
	}
	if identity == nil {
		return SubmitResult{
			Outcome: SubmitNotFound,
			Message: "No verification in progress. Request a code first.",
		}, nil
	}

	if identity.Status == db.StatusVerified {
		return SubmitResult{
			Outcome: SubmitAlreadyVerified,
			Message: "You are already verified.",
		}, nil
	}

	if !identity.HasLiveCode(now) {
		return SubmitResult{
			Outcome: SubmitCodeExpired,
			Message: "This code has expired. Request a new one.",
		}, nil
	}

	if code != identity.PendingCode {
		return SubmitResult{
			Outcome: SubmitCodeMismatch,
			Message: "That code is not correct. Try again.",
		}, nil
	}

	flipped, err := s.store.ConsumeCode(externalID, code, now)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("verify: consume code: %w", err)
	}
	if !flipped {
		// Lost a race: the row changed between the read and the conditional
		// update. Re-read to classify.
		identity, err = s.store.GetByExternalID(externalID)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("verify: get identity: %w", err)
		}
		if identity != nil && identity.Status == db.StatusVerified {
			return SubmitResult{
				Outcome: SubmitAlreadyVerified,
				Message: "You are already verified.",
			}, nil
		}
		return SubmitResult{
			Outcome: SubmitCodeExpired,
			Message: "This code has expired. Request a new one.",
		}, nil
	}

	s.logger.Info("verify: identity verified",
		"external_id", externalID, "email", identity.Email)
	return SubmitResult{
		Outcome: SubmitVerified,
		Message: fmt.Sprintf("Verification complete. You are verified as %s.", identity.Email),
	}, nil
}

// CheckVerified reports whether the identity holds a live verified session.
// A stale session is downgraded to pending as a side effect, so callers must
// treat this as a write.
func (s *Service) CheckVerified(ctx context.Context, externalID string) (bool, error) {
	_ = ctx
	now := s.now()
	sessionTTL := s.configProvider.Get().Verification.SessionTTL.Duration

	identity, err := s.store.GetByExternalID(externalID)
	if err != nil {
		return false, fmt.Errorf("verify: get identity: %w", err)
	}
	if identity == nil || identity.Status != db.StatusVerified {
		return false, nil
	}

	if identity.SessionExpired(now, sessionTTL) {
		if _, err := s.store.ExpireSession(externalID, now.Add(-sessionTTL)); err != nil {
			return false, fmt.Errorf("verify: expire session: %w", err)
		}
		s.logger.Info("verify: session expired, downgraded to pending",
			"external_id", externalID)
		return false, nil
	}
	return true, nil
}

// Status is the human-facing projection. It applies the same session-expiry
// downgrade as CheckVerified.
func (s *Service) Status(ctx context.Context, externalID string) (StatusReport, error) {
	_ = ctx
	now := s.now()
	sessionTTL := s.configProvider.Get().Verification.SessionTTL.Duration

	identity, err := s.store.GetByExternalID(externalID)
	if err != nil {
		return StatusReport{}, fmt.Errorf("verify: get identity: %w", err)
	}
	if identity == nil {
		return StatusReport{
			Registered: false,
			Message:    "You are not registered. Start verification to get access.",
		}, nil
	}

	if identity.Status == db.StatusVerified && identity.SessionExpired(now, sessionTTL) {
		if _, err := s.store.ExpireSession(externalID, now.Add(-sessionTTL)); err != nil {
			return StatusReport{}, fmt.Errorf("verify: expire session: %w", err)
		}
		identity.Status = db.StatusPending
	}

	report := StatusReport{
		Registered: true,
		Status:     identity.Status,
		Email:      identity.Email,
	}

	switch identity.Status {
	case db.StatusVerified:
		report.VerifiedAt = identity.VerifiedAt
		report.Message = fmt.Sprintf("You are verified as %s (since %s).",
			identity.Email, identity.VerifiedAt.UTC().Format("2006-01-02 15:04 UTC"))

	case db.StatusPending:
		if identity.HasLiveCode(now) {
			minutes := int(identity.CodeExpiresAt.Sub(now).Minutes())
			if minutes < 1 {
				minutes = 1
			}
			report.CodeMinutesLeft = minutes
			report.Message = fmt.Sprintf("Verification pending. Your code expires in %d minutes.", minutes)
		} else {
			report.Message = "Verification pending. Request a new code."
		}

	case db.StatusRevoked:
		report.Message = "Your access has been revoked. Contact an administrator."
	}

	return report, nil
}

// IsAdmin resolves privilege: the static allow-list wins without a store
// read, then the stored flag. A missing record is simply not an admin.
func (s *Service) IsAdmin(ctx context.Context, externalID string) (bool, error) {
	_ = ctx
	for _, id := range s.configProvider.Get().Admins {
		if id == externalID {
			return true, nil
		}
	}

	identity, err := s.store.GetByExternalID(externalID)
	if err != nil {
		return false, fmt.Errorf("verify: get identity: %w", err)
	}
	if identity == nil {
		return false, nil
	}
	return identity.IsAdmin, nil
}

// Touch refreshes the activity timestamp that feeds the session window.
func (s *Service) Touch(ctx context.Context, externalID string) error {
	_ = ctx
	if err := s.store.Touch(externalID, s.now()); err != nil {
		return fmt.Errorf("verify: touch: %w", err)
	}
	return nil
}
