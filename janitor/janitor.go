// Package janitor sweeps expired one-time codes and old interaction rows on
// an interval. The sweep never changes a verification status.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/db"
)

type Janitor struct {
	configProvider *config.Provider
	store          db.DbJanitor
	logger         *slog.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}

	// now is swappable for tests.
	now func() time.Time
}

func NewJanitor(configProvider *config.Provider, store db.DbJanitor, logger *slog.Logger) *Janitor {
	if configProvider == nil {
		panic("janitor: configProvider cannot be nil")
	}
	if store == nil {
		panic("janitor: store cannot be nil")
	}
	if logger == nil {
		panic("janitor: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		configProvider: configProvider,
		store:          store,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
		now:            time.Now,
	}
}

func (j *Janitor) Name() string { return "janitor" }

func (j *Janitor) Start() error {
	j.logger.Info("janitor: starting",
		"interval", j.configProvider.Get().Janitor.Interval.Duration)
	go j.run()
	return nil
}

func (j *Janitor) Stop(ctx context.Context) error {
	j.logger.Info("janitor: stopping")
	j.cancel()

	select {
	case <-j.shutdownDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Janitor) run() {
	defer close(j.shutdownDone)

	ticker := time.NewTicker(j.configProvider.Get().Janitor.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.ctx.Done():
			return
		}
	}
}

// sweep clears dead codes and prunes old interactions. Errors are logged;
// the next tick retries.
func (j *Janitor) sweep() {
	now := j.now()

	cleared, err := j.store.ClearDeadCodes(now)
	if err != nil {
		j.logger.Error("janitor: clearing dead codes failed", "err", err)
	} else if cleared > 0 {
		j.logger.Info("janitor: cleared dead codes", "rows", cleared)
	}

	retention := j.configProvider.Get().Janitor.InteractionRetention.Duration
	if retention <= 0 {
		return
	}
	pruned, err := j.store.PruneInteractions(now.Add(-retention))
	if err != nil {
		j.logger.Error("janitor: pruning interactions failed", "err", err)
	} else if pruned > 0 {
		j.logger.Info("janitor: pruned interactions", "rows", pruned)
	}
}
