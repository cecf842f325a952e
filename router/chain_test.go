package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	rtr "github.com/gitinsky/gatekeeper/router"
)

func TestChainBasicHandler(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	chain := rtr.NewChain(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()

	chain.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != "OK" {
		t.Errorf("expected body 'OK', got '%s'", body)
	}
}

func TestChainMiddlewareOrder(t *testing.T) {
	var callOrder []string

	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				callOrder = append(callOrder, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callOrder = append(callOrder, "handler")
	})

	chain := rtr.NewChain(handler).WithMiddleware(mw("mw1"), mw("mw2"))

	req := httptest.NewRequest("GET", "/test", nil)
	chain.Handler().ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"mw1", "mw2", "handler"}
	if len(callOrder) != len(want) {
		t.Fatalf("call order %v, want %v", callOrder, want)
	}
	for i := range want {
		if callOrder[i] != want[i] {
			t.Errorf("call order %v, want %v", callOrder, want)
			break
		}
	}
}

func TestChainObserversRunAfterHandler(t *testing.T) {
	var callOrder []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callOrder = append(callOrder, "handler")
	})
	observer := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callOrder = append(callOrder, "observer")
	})

	chain := rtr.NewChain(handler).WithObservers(observer)

	req := httptest.NewRequest("GET", "/test", nil)
	chain.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if len(callOrder) != 2 || callOrder[0] != "handler" || callOrder[1] != "observer" {
		t.Errorf("call order %v, want [handler observer]", callOrder)
	}
}

func TestSplitPattern(t *testing.T) {
	cases := []struct {
		pattern string
		method  string
		path    string
	}{
		{"POST /api/request-verification", "POST", "/api/request-verification"},
		{"GET /api/status", "GET", "/api/status"},
		{"/plain", "GET", "/plain"},
	}
	for _, tc := range cases {
		method, path := rtr.SplitPattern(tc.pattern)
		if method != tc.method || path != tc.path {
			t.Errorf("SplitPattern(%q) = (%q, %q), want (%q, %q)",
				tc.pattern, method, path, tc.method, tc.path)
		}
	}
}
