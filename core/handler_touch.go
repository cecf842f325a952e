package core

import (
	"encoding/json"
	"net/http"
	"strings"
)

// TouchHandler refreshes the activity timestamp feeding the session window.
// Endpoint: POST /api/touch
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) TouchHandler(w http.ResponseWriter, r *http.Request) {
	if resp := a.ValidateContentType(r, MimeTypeJSON); resp.status != 0 {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		ExternalID string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.ExternalID == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := a.verifier.Touch(r.Context(), req.ExternalID); err != nil {
		a.logger.Error("touch failed", "external_id", req.ExternalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okTouched)
}
