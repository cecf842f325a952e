package core

import (
	"net/http"
	"strings"
)

// AdminStatsHandler returns the identity and interaction summary. The
// requester must resolve as an administrator.
// Endpoint: GET /api/admin/stats?external_id=...
// Authenticated: admin only
func (a *App) AdminStatsHandler(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(r.URL.Query().Get("external_id"))
	if externalID == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	admin, err := a.verifier.IsAdmin(r.Context(), externalID)
	if err != nil {
		a.logger.Error("admin stats: privilege check failed", "external_id", externalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if !admin {
		writeJsonError(w, errorAdminRequired)
		return
	}

	stats, err := a.auditor.Stats()
	if err != nil {
		a.logger.Error("admin stats failed", "external_id", externalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	identities := make(map[string]int64, len(stats.IdentitiesByStatus))
	for status, n := range stats.IdentitiesByStatus {
		identities[string(status)] = n
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkStats,
			Message: "Statistics",
		},
		Data: map[string]interface{}{
			"identities":   identities,
			"interactions": stats.Interactions,
		},
	})
}
