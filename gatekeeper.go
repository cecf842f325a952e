// Package gatekeeper wires the verification core, its SQLite stores and the
// HTTP surface into a runnable application.
package gatekeeper

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/gitinsky/gatekeeper/audit"
	"github.com/gitinsky/gatekeeper/cache/ristretto"
	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/core"
	"github.com/gitinsky/gatekeeper/db/zombiezen"
	"github.com/gitinsky/gatekeeper/janitor"
	applog "github.com/gitinsky/gatekeeper/log"
	"github.com/gitinsky/gatekeeper/mail"
	"github.com/gitinsky/gatekeeper/migrations"
	"github.com/gitinsky/gatekeeper/notify"
	"github.com/gitinsky/gatekeeper/notify/discord"
	"github.com/gitinsky/gatekeeper/router/httprouter"
	"github.com/gitinsky/gatekeeper/server"
	"github.com/gitinsky/gatekeeper/verify"
	"golang.org/x/time/rate"
)

// New loads the configuration, wires every component and returns the app and
// a server ready to Run. Extra options run last and may override defaults
// (router, logger, notifier).
func New(configPath string, opts ...core.Option) (*core.App, *server.Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	provider := config.NewProvider(cfg)

	pool, err := zombiezen.NewPool(cfg.DBFile, runtime.NumCPU())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	conn, err := pool.Take(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	err = zombiezen.ApplyMigrations(conn, migrations.Schema())
	pool.Put(conn)
	if err != nil {
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	dbApp, err := zombiezen.New(pool)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	// The bootstrap logger also backs the log daemon's internals; the batch
	// handler must never log through itself.
	bootLogger := NewPhusLogger(nil)

	logger := bootLogger
	var logDaemon *applog.Daemon
	if cfg.Log.Batch.Activated {
		logStore, err := zombiezen.NewLogStore(cfg.Log.Batch.DbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open log store: %w", err)
		}
		logDaemon = applog.NewDaemon(provider, logStore, bootLogger)
		logger = slog.New(applog.NewBatchHandler(provider, logDaemon.Chan(), logDaemon.Ctx()))
	}

	var deliverer verify.Deliverer
	if cfg.Smtp.Enabled {
		mailer, err := mail.New(cfg.Smtp, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init mailer: %w", err)
		}
		deliverer = mailer
	} else {
		deliverer = &devDeliverer{logger: logger}
	}

	cooldown, err := ristretto.New[time.Time]()
	if err != nil {
		return nil, nil, fmt.Errorf("init cache: %w", err)
	}

	var notifier notify.Notifier = notify.Discard{}
	if cfg.Notifier.Discord.Activated {
		dn, err := discord.New(discord.Options{
			WebhookURL:   cfg.Notifier.Discord.WebhookURL,
			APIRateLimit: rate.Every(cfg.Notifier.Discord.APIRateLimit.Duration),
			APIBurst:     cfg.Notifier.Discord.APIBurst,
			SendTimeout:  cfg.Notifier.Discord.SendTimeout.Duration,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init discord notifier: %w", err)
		}
		notifier = dn
	}

	verifier, err := verify.NewService(dbApp, deliverer, cooldown, notifier, provider, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init verifier: %w", err)
	}
	auditor, err := audit.NewRecorder(dbApp, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init auditor: %w", err)
	}

	allOpts := []core.Option{
		core.WithConfigProvider(provider),
		core.WithDbApp(dbApp),
		core.WithRouter(httprouter.New()),
		core.WithLogger(logger),
		core.WithNotifier(notifier),
		core.WithVerifier(verifier),
		core.WithAuditor(auditor),
	}
	allOpts = append(allOpts, opts...)

	app, err := core.NewApp(allOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("init app: %w", err)
	}

	route(app)

	srv := server.NewServer(provider, app.Router(), app.Logger(), func() error {
		return config.Reload(provider, app.Logger())
	})
	srv.AddDaemon(janitor.NewJanitor(provider, dbApp, app.Logger()))
	if logDaemon != nil {
		srv.AddDaemon(logDaemon)
	}

	return app, srv, nil
}

// devDeliverer logs codes instead of mailing them. Used when SMTP is
// disabled, for local development.
type devDeliverer struct {
	logger *slog.Logger
}

func (d *devDeliverer) DeliverCode(_ context.Context, email, code string, ttl time.Duration) error {
	d.logger.Info("smtp disabled, not sending verification code",
		"email", email, "code", code, "ttl", ttl)
	return nil
}
