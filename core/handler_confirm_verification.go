package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gitinsky/gatekeeper/verify"
)

// ConfirmVerificationHandler submits a one-time code.
// Endpoint: POST /api/confirm-verification
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ConfirmVerificationHandler(w http.ResponseWriter, r *http.Request) {
	if resp := a.ValidateContentType(r, MimeTypeJSON); resp.status != 0 {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		ExternalID string `json:"external_id"`
		Code       string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.ExternalID == "" || strings.TrimSpace(req.Code) == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	res, err := a.verifier.SubmitCode(r.Context(), req.ExternalID, req.Code)
	if err != nil {
		a.logger.Error("confirm-verification failed", "external_id", req.ExternalID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	switch res.Outcome {
	case verify.SubmitVerified:
		writeJsonOk(w, okVerified)
	case verify.SubmitAlreadyVerified:
		writeJsonOk(w, okAlreadyVerified)
	case verify.SubmitNotFound:
		writeJsonError(w, errorNotFound)
	case verify.SubmitCodeExpired:
		writeJsonError(w, errorCodeExpired)
	case verify.SubmitCodeMismatch:
		writeJsonError(w, errorCodeMismatch)
	default:
		writeJsonError(w, errorServiceUnavailable)
	}
}
