package httprouter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMethodPrefixRouting(t *testing.T) {
	rt := New()
	rt.HandleFunc("POST /api/thing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	rt.HandleFunc("GET /api/thing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("got it"))
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("POST", "/api/thing", nil))
	if rec.Code != http.StatusCreated {
		t.Errorf("POST status = %d, want %d", rec.Code, http.StatusCreated)
	}

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/api/thing", nil))
	if rec.Body.String() != "got it" {
		t.Errorf("GET body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing route status = %d, want 404", rec.Code)
	}
}
