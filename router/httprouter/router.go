// Package httprouter implements router.Router on julienschmidt's
// trie-based httprouter.
package httprouter

import (
	"net/http"

	jshttprouter "github.com/julienschmidt/httprouter"

	"github.com/gitinsky/gatekeeper/router"
)

type Router struct {
	rt *jshttprouter.Router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

// Handle registers the handler. httprouter has no method-in-pattern syntax,
// so the "METHOD /path" prefix is parsed here.
func (r *Router) Handle(pattern string, handler http.Handler) {
	method, path := router.SplitPattern(pattern)
	r.rt.Handler(method, path, handler)
}

func (r *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(pattern, http.HandlerFunc(handler))
}

// Param reads a named path parameter from the request context.
func (r *Router) Param(req *http.Request, key string) string {
	params := jshttprouter.ParamsFromContext(req.Context())
	return params.ByName(key)
}

func New() router.Router {
	return &Router{rt: jshttprouter.New()}
}
