package core

import (
	"net/http"
	"strings"
)

const MimeTypeJSON = "application/json"

// ValidateContentType checks if the request's Content-Type matches the
// allowed type. Returns the zero jsonResponse when valid, otherwise a
// precomputed 415 response.
func (a *App) ValidateContentType(r *http.Request, allowedType string) jsonResponse {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return errorInvalidContentType
	}

	// Content-Type may carry parameters, e.g. "application/json; charset=utf-8"
	mediaType := strings.Split(contentType, ";")[0]
	mediaType = strings.TrimSpace(mediaType)

	if mediaType != allowedType {
		return errorInvalidContentType
	}

	return jsonResponse{}
}
