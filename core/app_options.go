package core

import (
	"fmt"
	"log/slog"

	"github.com/gitinsky/gatekeeper/audit"
	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/db"
	"github.com/gitinsky/gatekeeper/notify"
	"github.com/gitinsky/gatekeeper/router"
	"github.com/gitinsky/gatekeeper/verify"
)

type Option func(*App)

// NewApp builds the App from options and checks the required pieces are
// present.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.dbApp == nil {
		return nil, fmt.Errorf("core: db is required (use WithDbApp)")
	}
	if a.configProvider == nil {
		return nil, fmt.Errorf("core: config provider is required (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("core: logger is required (use WithLogger)")
	}
	if a.verifier == nil {
		return nil, fmt.Errorf("core: verifier is required (use WithVerifier)")
	}
	if a.auditor == nil {
		return nil, fmt.Errorf("core: auditor is required (use WithAuditor)")
	}
	if a.notifier == nil {
		a.notifier = notify.Discard{}
	}

	return a, nil
}

// WithDbApp sets the store implementation.
func WithDbApp(d db.DbApp) Option {
	return func(a *App) {
		a.dbApp = d
	}
}

// WithRouter sets the router implementation.
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithNotifier sets the alarm/metric notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithVerifier sets the verification state machine.
func WithVerifier(v *verify.Service) Option {
	return func(a *App) {
		a.verifier = v
	}
}

// WithAuditor sets the interaction recorder.
func WithAuditor(rec *audit.Recorder) Option {
	return func(a *App) {
		a.auditor = rec
	}
}
