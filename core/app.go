package core

import (
	"log/slog"

	"github.com/gitinsky/gatekeeper/audit"
	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/db"
	"github.com/gitinsky/gatekeeper/notify"
	"github.com/gitinsky/gatekeeper/router"
	"github.com/gitinsky/gatekeeper/verify"
)

// App is the application wide context: store handles, the verification
// service and the other permanent objects the handlers need. All handlers
// are methods on App.
type App struct {
	dbApp          db.DbApp
	router         router.Router
	configProvider *config.Provider
	logger         *slog.Logger
	notifier       notify.Notifier
	verifier       *verify.Service
	auditor        *audit.Recorder
}

// Router returns the application's router instance.
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbApp() db.DbApp {
	return a.dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Config returns the current configuration snapshot.
func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) Verifier() *verify.Service {
	return a.verifier
}

func (a *App) Auditor() *audit.Recorder {
	return a.auditor
}
