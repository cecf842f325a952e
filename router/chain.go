package router

import (
	"net/http"
)

// Chain composes a base handler with middlewares and trailing observers.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
	observers   []http.Handler
}

// Chains maps route patterns to their handler chains.
type Chains map[string]*Chain

func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{
		handler:     h,
		middlewares: make([]func(http.Handler) http.Handler, 0),
		observers:   make([]http.Handler, 0),
	}
}

// WithMiddleware adds one or more middlewares to the chain. Middlewares
// execute in the order they are given, left to right, before the handler —
// the same semantics as alice-style chaining packages.
func (r *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	for _, mw := range middlewares {
		r.middlewares = append([]func(http.Handler) http.Handler{mw}, r.middlewares...)
	}
	return r
}

// WithMiddlewareChain prepends a slice of middlewares, preserving order.
func (r *Chain) WithMiddlewareChain(middlewares []func(http.Handler) http.Handler) *Chain {
	return r.WithMiddleware(middlewares...)
}

// WithObservers adds handlers that run after the main chain completes.
// Observers must not write to the response; headers may already be sent.
func (r *Chain) WithObservers(observers ...http.Handler) *Chain {
	r.observers = append(r.observers, observers...)
	return r
}

// Handler returns the final handler with all middlewares and observers
// applied.
func (r *Chain) Handler() http.Handler {
	handler := r.handler

	for _, mw := range r.middlewares {
		handler = mw(handler)
	}

	if len(r.observers) == 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handler.ServeHTTP(w, req)

		for _, obs := range r.observers {
			obs.ServeHTTP(w, req)
		}
	})
}
