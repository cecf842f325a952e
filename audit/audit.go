// Package audit records authenticated interactions for the admin statistics
// surface.
package audit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gitinsky/gatekeeper/db"
)

// Recorder assigns interaction ids and persists exchanges. Safe for
// concurrent use.
type Recorder struct {
	store  db.DbAudit
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(store db.DbAudit, logger *slog.Logger) (*Recorder, error) {
	if store == nil {
		return nil, fmt.Errorf("audit: store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("audit: logger is required")
	}
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Record persists one exchange. Failures are logged and returned; callers on
// the hot path may choose to ignore the error since auditing is best-effort.
func (r *Recorder) Record(externalID, query, response string, elapsed time.Duration) error {
	it := db.Interaction{
		ID:             uuid.NewString(),
		ExternalID:     externalID,
		Query:          query,
		Response:       response,
		ResponseTimeMs: elapsed.Milliseconds(),
		Created:        r.now(),
	}
	if err := r.store.InsertInteraction(it); err != nil {
		r.logger.Error("audit: failed to record interaction",
			"external_id", externalID, "err", err)
		return fmt.Errorf("audit: insert interaction: %w", err)
	}
	return nil
}

// Stats returns the admin summary projection.
func (r *Recorder) Stats() (*db.Stats, error) {
	stats, err := r.store.GetStats()
	if err != nil {
		return nil, fmt.Errorf("audit: get stats: %w", err)
	}
	return stats, nil
}
