package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gitinsky/gatekeeper/config"
)

// BatchHandler is a lightweight slog.Handler that sends records to a channel
// for batched processing by the Daemon. Handle never blocks: when the
// channel is full the record is dropped and an error returned, so a slow log
// sink cannot stall request handling.
type BatchHandler struct {
	configProvider *config.Provider   // for dynamic log levels
	recordChan     chan<- slog.Record // write-end of the channel, provided by Daemon
	daemonCtx      context.Context    // daemon context for shutdown detection
	attrs          []slog.Attr
}

// NewBatchHandler creates a new BatchHandler. All parameters are required.
func NewBatchHandler(configProvider *config.Provider, recordChan chan<- slog.Record, daemonCtx context.Context) *BatchHandler {
	if configProvider == nil {
		panic("batchhandler: configProvider cannot be nil")
	}
	if recordChan == nil {
		panic("batchhandler: recordChan cannot be nil")
	}
	if daemonCtx == nil {
		panic("batchhandler: daemonCtx cannot be nil")
	}

	return &BatchHandler{
		configProvider: configProvider,
		recordChan:     recordChan,
		daemonCtx:      daemonCtx,
		attrs:          []slog.Attr{},
	}
}

// Enabled consults the config provider so the level can change at runtime.
func (h *BatchHandler) Enabled(_ context.Context, level slog.Level) bool {
	conf := h.configProvider.Get()
	return level >= conf.Log.Batch.Level.Level
}

// Handle sends the record to the buffered channel. Shutdown is checked
// first; a full channel drops the record.
func (h *BatchHandler) Handle(_ context.Context, r slog.Record) error {
	if h.daemonCtx.Err() != nil {
		return fmt.Errorf("daemon shutting down, dropping log record")
	}

	if len(h.attrs) > 0 {
		r.AddAttrs(h.attrs...)
	}

	select {
	case h.recordChan <- r:
		return nil
	default:
		return fmt.Errorf("log channel full, dropping record")
	}
}

func (h *BatchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &BatchHandler{
		configProvider: h.configProvider,
		recordChan:     h.recordChan,
		daemonCtx:      h.daemonCtx,
		attrs:          newAttrs,
	}
}

// WithGroup is accepted but flattening is not implemented; grouped attrs are
// recorded ungrouped.
func (h *BatchHandler) WithGroup(_ string) slog.Handler {
	return &BatchHandler{
		configProvider: h.configProvider,
		recordChan:     h.recordChan,
		daemonCtx:      h.daemonCtx,
		attrs:          h.attrs,
	}
}
