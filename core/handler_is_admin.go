package core

import (
	"net/http"
	"strings"
)

// IsAdminHandler resolves the privilege of an external user id.
// Endpoint: GET /api/is-admin?external_id=...
// Authenticated: No
func (a *App) IsAdminHandler(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(r.URL.Query().Get("external_id"))
	if externalID == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	admin, err := a.verifier.IsAdmin(r.Context(), externalID)
	if err != nil {
		a.logger.Error("is-admin failed", "external_id", externalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkAdmin,
			Message: "Privilege check complete",
		},
		Data: map[string]bool{"admin": admin},
	})
}
