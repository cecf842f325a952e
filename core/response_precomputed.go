package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkCodeSent        = "ok_code_sent"
	CodeOkVerified        = "ok_verified"
	CodeOkAlreadyVerified = "ok_already_verified"
	CodeOkTouched         = "ok_touched"
	CodeOkRecorded        = "ok_interaction_recorded"

	// dynamic ok responses, not precomputed
	CodeOkStatus = "ok_status"
	CodeOkCheck  = "ok_check"
	CodeOkAdmin  = "ok_admin"
	CodeOkStats  = "ok_stats"

	// errors
	CodeErrorInvalidRequest     = "err_invalid_input"
	CodeErrorMissingFields      = "err_missing_fields"
	CodeErrorInvalidEmail       = "err_invalid_email"
	CodeErrorEmailConflict      = "err_email_conflict"
	CodeErrorAlreadyRequested   = "err_code_already_requested"
	CodeErrorDeliveryFailed     = "err_delivery_failed"
	CodeErrorNotFound           = "err_not_found"
	CodeErrorCodeExpired        = "err_code_expired"
	CodeErrorCodeMismatch       = "err_code_mismatch"
	CodeErrorNotVerified        = "err_not_verified"
	CodeErrorAdminRequired      = "err_admin_required"
	CodeErrorServiceUnavailable = "err_service_unavailable"
	CodeErrorInvalidContentType = "err_invalid_content_type"
)

// precomputeBasicResponse runs during initialization, so the JSON body is
// marshalled once and writeJsonOk/writeJsonError only copy bytes during
// request handling.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorInvalidRequest     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorMissingFields      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorInvalidEmail       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidEmail, "Email address is invalid or not on the allowed domain")
	errorEmailConflict      = precomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already in use by another account")
	errorAlreadyRequested   = precomputeBasicResponse(http.StatusConflict, CodeErrorAlreadyRequested, "A verification code was sent recently. Check your inbox")
	errorDeliveryFailed     = precomputeBasicResponse(http.StatusBadGateway, CodeErrorDeliveryFailed, "Could not send the verification email. Please try again")
	errorNotFound           = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "No verification in progress for this user")
	errorCodeExpired        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorCodeExpired, "The verification code has expired. Request a new one")
	errorCodeMismatch       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorCodeMismatch, "The verification code is not correct")
	errorNotVerified        = precomputeBasicResponse(http.StatusForbidden, CodeErrorNotVerified, "Verification required")
	errorAdminRequired      = precomputeBasicResponse(http.StatusForbidden, CodeErrorAdminRequired, "Administrator privileges required")
	errorServiceUnavailable = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")
	errorInvalidContentType = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")

	// oks
	okCodeSent        = precomputeBasicResponse(http.StatusAccepted, CodeOkCodeSent, "Verification code sent. Check your mailbox")
	okVerified        = precomputeBasicResponse(http.StatusOK, CodeOkVerified, "Verification complete")
	okAlreadyVerified = precomputeBasicResponse(http.StatusAccepted, CodeOkAlreadyVerified, "Already verified - no further action needed")
	okTouched         = precomputeBasicResponse(http.StatusOK, CodeOkTouched, "Activity recorded")
	okRecorded        = precomputeBasicResponse(http.StatusCreated, CodeOkRecorded, "Interaction recorded")
)
