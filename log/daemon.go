package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/db"
)

// Daemon drains the record channel fed by BatchHandler and persists records
// in batches. A batch is flushed when it reaches FlushSize or when
// FlushInterval elapses, whichever comes first.
type Daemon struct {
	configProvider *config.Provider
	recordChan     chan slog.Record
	store          db.DbLog

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}

	// logger reports daemon internals (flush failures, drops) and must not be
	// backed by this daemon's own handler.
	logger *slog.Logger
}

// NewDaemon creates the batching daemon. The returned daemon owns the store
// and closes it on Stop.
func NewDaemon(configProvider *config.Provider, store db.DbLog, logger *slog.Logger) *Daemon {
	if configProvider == nil {
		panic("log daemon: configProvider cannot be nil")
	}
	if store == nil {
		panic("log daemon: store cannot be nil")
	}
	if logger == nil {
		panic("log daemon: logger cannot be nil")
	}

	cfg := configProvider.Get().Log.Batch
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		configProvider: configProvider,
		recordChan:     make(chan slog.Record, cfg.ChanSize),
		store:          store,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
		logger:         logger,
	}
}

// Chan returns the write-end of the record channel for BatchHandler.
func (d *Daemon) Chan() chan<- slog.Record { return d.recordChan }

// Ctx returns the daemon context, used by BatchHandler to detect shutdown.
func (d *Daemon) Ctx() context.Context { return d.ctx }

func (d *Daemon) Name() string { return "log batch daemon" }

// Start launches the processing goroutine.
func (d *Daemon) Start() error {
	d.logger.Info("log daemon: starting")
	go d.processRecords()
	return nil
}

// Stop signals shutdown and waits for the final flush, bounded by ctx.
func (d *Daemon) Stop(ctx context.Context) error {
	d.logger.Info("log daemon: stopping")
	d.cancel()

	select {
	case <-d.shutdownDone:
		d.logger.Info("log daemon: stopped gracefully")
		return nil
	case <-ctx.Done():
		d.logger.Error("log daemon: shutdown timed out, records may be lost")
		return ctx.Err()
	}
}

func (d *Daemon) processRecords() {
	defer close(d.shutdownDone)

	cfg := d.configProvider.Get().Log.Batch

	buffer := make([]db.Log, 0, cfg.FlushSize)
	ticker := time.NewTicker(cfg.FlushInterval.Duration)
	defer ticker.Stop()

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if err := d.store.InsertBatch(buffer); err != nil {
			d.logger.Error("log daemon: flush failed", "err", err, "records", len(buffer))
		}
		buffer = buffer[:0]
	}

	for {
		select {
		case r := <-d.recordChan:
			buffer = append(buffer, recordToLog(r))
			if len(buffer) >= cfg.FlushSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-d.ctx.Done():
			// Drain whatever is already queued, then flush once.
			for {
				select {
				case r := <-d.recordChan:
					buffer = append(buffer, recordToLog(r))
				default:
					flush()
					if err := d.store.Close(); err != nil {
						d.logger.Error("log daemon: closing store failed", "err", err)
					}
					return
				}
			}
		}
	}
}

// recordToLog converts an slog.Record to the persisted form. Attrs become a
// flat JSON object; values that cannot be marshalled are stringified.
func recordToLog(r slog.Record) db.Log {
	attrs := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	var jsonData string
	if len(attrs) > 0 {
		data, err := json.Marshal(attrs)
		if err != nil {
			for k, v := range attrs {
				attrs[k] = slog.AnyValue(v).String()
			}
			data, _ = json.Marshal(attrs)
		}
		jsonData = string(data)
	}

	return db.Log{
		Level:    int64(r.Level),
		Message:  r.Message,
		JsonData: jsonData,
		Created:  db.TimeFormat(r.Time),
	}
}
