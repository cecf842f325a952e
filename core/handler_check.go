package core

import (
	"net/http"
	"strings"
)

// CheckVerifiedHandler reports whether an external user id holds a live
// verified session. A stale session is downgraded as a side effect.
// Endpoint: GET /api/check?external_id=...
// Authenticated: No
func (a *App) CheckVerifiedHandler(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(r.URL.Query().Get("external_id"))
	if externalID == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	verified, err := a.verifier.CheckVerified(r.Context(), externalID)
	if err != nil {
		a.logger.Error("check failed", "external_id", externalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkCheck,
			Message: "Verification check complete",
		},
		Data: map[string]bool{"verified": verified},
	})
}
