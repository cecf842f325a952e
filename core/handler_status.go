package core

import (
	"net/http"
	"strings"

	"github.com/gitinsky/gatekeeper/db"
)

type statusData struct {
	Registered      bool   `json:"registered"`
	Status          string `json:"status,omitempty"`
	Email           string `json:"email,omitempty"`
	VerifiedAt      string `json:"verified_at,omitempty"`
	CodeMinutesLeft int    `json:"code_minutes_left,omitempty"`
}

// StatusHandler reports the verification status of an external user id.
// Applies the session-expiry downgrade, so it is a write despite the GET.
// Endpoint: GET /api/status?external_id=...
// Authenticated: No
func (a *App) StatusHandler(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(r.URL.Query().Get("external_id"))
	if externalID == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	report, err := a.verifier.Status(r.Context(), externalID)
	if err != nil {
		a.logger.Error("status failed", "external_id", externalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	data := statusData{
		Registered:      report.Registered,
		Status:          string(report.Status),
		Email:           report.Email,
		CodeMinutesLeft: report.CodeMinutesLeft,
	}
	if !report.VerifiedAt.IsZero() {
		data.VerifiedAt = db.TimeFormat(report.VerifiedAt)
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkStatus,
			Message: report.Message,
		},
		Data: data,
	})
}
