package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gitinsky/gatekeeper/verify"
)

// RequestVerificationHandler starts a verification attempt for an external
// user id.
// Endpoint: POST /api/request-verification
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RequestVerificationHandler(w http.ResponseWriter, r *http.Request) {
	if resp := a.ValidateContentType(r, MimeTypeJSON); resp.status != 0 {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		ExternalID string `json:"external_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.ExternalID == "" || strings.TrimSpace(req.Email) == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	res, err := a.verifier.StartVerification(r.Context(), req.ExternalID, req.Name, req.Email)
	if err != nil {
		a.logger.Error("request-verification failed", "external_id", req.ExternalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	switch res.Outcome {
	case verify.StartCodeSent:
		writeJsonOk(w, okCodeSent)
	case verify.StartInvalidEmail:
		writeJsonError(w, errorInvalidEmail)
	case verify.StartEmailClaimed:
		writeJsonError(w, errorEmailConflict)
	case verify.StartAlreadyRequested:
		writeJsonError(w, errorAlreadyRequested)
	case verify.StartDeliveryFailed:
		writeJsonError(w, errorDeliveryFailed)
	default:
		writeJsonError(w, errorServiceUnavailable)
	}
}
