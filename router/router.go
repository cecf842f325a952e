// Package router abstracts HTTP route registration so the mux implementation
// stays swappable.
package router

import (
	"net/http"
	"strings"
)

// Router is the registration surface the application wires handlers into.
// Patterns use the "METHOD /path" form; implementations without native
// method routing must parse the prefix themselves.
type Router interface {
	http.Handler

	Handle(pattern string, handler http.Handler)
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// SplitPattern separates an optional method prefix from the path.
// "POST /api/x" -> ("POST", "/api/x"); "/api/x" -> ("GET", "/api/x").
func SplitPattern(pattern string) (method, path string) {
	method = http.MethodGet
	path = pattern
	if i := strings.IndexByte(pattern, ' '); i > 0 && !strings.HasPrefix(pattern, "/") {
		method = pattern[:i]
		path = strings.TrimSpace(pattern[i+1:])
	}
	return method, path
}
