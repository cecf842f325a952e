package gatekeeper

import (
	"github.com/gitinsky/gatekeeper/core"
)

// route registers the API surface on the app's router.
func route(ap *core.App) {
	rt := ap.Router()

	rt.HandleFunc("POST /api/request-verification", ap.RequestVerificationHandler)
	rt.HandleFunc("POST /api/confirm-verification", ap.ConfirmVerificationHandler)
	rt.HandleFunc("GET /api/status", ap.StatusHandler)
	rt.HandleFunc("GET /api/check", ap.CheckVerifiedHandler)
	rt.HandleFunc("POST /api/touch", ap.TouchHandler)
	rt.HandleFunc("GET /api/is-admin", ap.IsAdminHandler)
	rt.HandleFunc("POST /api/interactions", ap.RecordInteractionHandler)
	rt.HandleFunc("GET /api/admin/stats", ap.AdminStatsHandler)
}
