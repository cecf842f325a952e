package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// RecordInteractionHandler stores one authenticated exchange for the admin
// statistics. The caller must hold a live verified session.
// Endpoint: POST /api/interactions
// Authenticated: verified session required
// Allowed Mimetype: application/json
func (a *App) RecordInteractionHandler(w http.ResponseWriter, r *http.Request) {
	if resp := a.ValidateContentType(r, MimeTypeJSON); resp.status != 0 {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		ExternalID     string `json:"external_id"`
		Query          string `json:"query"`
		Response       string `json:"response"`
		ResponseTimeMs int64  `json:"response_time_ms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.ExternalID == "" || req.Query == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	verified, err := a.verifier.CheckVerified(r.Context(), req.ExternalID)
	if err != nil {
		a.logger.Error("record interaction: check failed", "external_id", req.ExternalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if !verified {
		writeJsonError(w, errorNotVerified)
		return
	}

	elapsed := time.Duration(req.ResponseTimeMs) * time.Millisecond
	if err := a.auditor.Record(req.ExternalID, req.Query, req.Response, elapsed); err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okRecorded)
}
