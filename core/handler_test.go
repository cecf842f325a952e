package core

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gitinsky/gatekeeper/audit"
	"github.com/gitinsky/gatekeeper/config"
	"github.com/gitinsky/gatekeeper/db"
	"github.com/gitinsky/gatekeeper/db/mock"
	"github.com/gitinsky/gatekeeper/notify"
	"github.com/gitinsky/gatekeeper/verify"
)

type testCache struct {
	m map[string]time.Time
}

func (c *testCache) Get(k string) (time.Time, bool) {
	v, ok := c.m[k]
	return v, ok
}
func (c *testCache) Set(k string, v time.Time, _ int64) bool { c.m[k] = v; return true }
func (c *testCache) SetWithTTL(k string, v time.Time, _ int64, _ time.Duration) bool {
	c.m[k] = v
	return true
}

type testDeliverer struct {
	err error
}

func (d *testDeliverer) DeliverCode(context.Context, string, string, time.Duration) error {
	return d.err
}

func newTestApp(t *testing.T, store *mock.Db, deliverer *testDeliverer) *App {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Verification.AllowedDomain = "co.com"
	cfg.Admins = []string{"tg:admin"}
	provider := config.NewProvider(cfg)
	logger := slog.New(slog.DiscardHandler)

	if deliverer == nil {
		deliverer = &testDeliverer{}
	}

	verifier, err := verify.NewService(store, deliverer, &testCache{m: map[string]time.Time{}}, notify.Discard{}, provider, logger)
	if err != nil {
		t.Fatal(err)
	}
	auditor, err := audit.NewRecorder(store, logger)
	if err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(
		WithDbApp(store),
		WithConfigProvider(provider),
		WithLogger(logger),
		WithVerifier(verifier),
		WithAuditor(auditor),
	)
	if err != nil {
		t.Fatal(err)
	}
	return app
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBasic(t *testing.T, rec *httptest.ResponseRecorder) JsonBasic {
	t.Helper()
	var resp JsonBasic
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return resp
}

func TestRequestVerificationHandler(t *testing.T) {
	cases := []struct {
		name       string
		req        *http.Request
		store      *mock.Db
		deliverer  *testDeliverer
		wantStatus int
		wantCode   string
	}{
		{
			name: "missing content type",
			req: httptest.NewRequest("POST", "/api/request-verification",
				strings.NewReader(`{"external_id":"tg:42","email":"a@co.com"}`)),
			store:      &mock.Db{},
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   CodeErrorInvalidContentType,
		},
		{
			name:       "malformed body",
			req:        postJSON("/api/request-verification", "{"),
			store:      &mock.Db{},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorInvalidRequest,
		},
		{
			name:       "missing fields",
			req:        postJSON("/api/request-verification", `{"external_id":"","email":""}`),
			store:      &mock.Db{},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
		{
			name:       "invalid email domain",
			req:        postJSON("/api/request-verification", `{"external_id":"tg:42","email":"a@other.com"}`),
			store:      &mock.Db{},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorInvalidEmail,
		},
		{
			name: "code sent",
			req:  postJSON("/api/request-verification", `{"external_id":"tg:42","name":"alice","email":"a@co.com"}`),
			store: &mock.Db{
				UpsertPendingFunc: func(db.PendingUpsert) error { return nil },
			},
			wantStatus: http.StatusAccepted,
			wantCode:   CodeOkCodeSent,
		},
		{
			name: "email claimed",
			req:  postJSON("/api/request-verification", `{"external_id":"tg:42","email":"a@co.com"}`),
			store: &mock.Db{
				UpsertPendingFunc: func(db.PendingUpsert) error { return db.ErrEmailClaimed },
			},
			wantStatus: http.StatusConflict,
			wantCode:   CodeErrorEmailConflict,
		},
		{
			name: "delivery failed",
			req:  postJSON("/api/request-verification", `{"external_id":"tg:42","email":"a@co.com"}`),
			store: &mock.Db{
				UpsertPendingFunc: func(db.PendingUpsert) error { return nil },
			},
			deliverer:  &testDeliverer{err: errors.New("smtp down")},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeErrorDeliveryFailed,
		},
		{
			name: "store fault",
			req:  postJSON("/api/request-verification", `{"external_id":"tg:42","email":"a@co.com"}`),
			store: &mock.Db{
				UpsertPendingFunc: func(db.PendingUpsert) error { return errors.New("db locked") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeErrorServiceUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.store, tc.deliverer)
			rec := httptest.NewRecorder()

			app.RequestVerificationHandler(rec, tc.req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if resp := decodeBasic(t, rec); resp.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestConfirmVerificationHandler(t *testing.T) {
	liveCode := func() *db.Identity {
		return &db.Identity{
			ExternalID:    "tg:42",
			Status:        db.StatusPending,
			Email:         "a@co.com",
			PendingCode:   "123456",
			CodeExpiresAt: time.Now().Add(10 * time.Minute),
		}
	}

	cases := []struct {
		name       string
		body       string
		store      *mock.Db
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing fields",
			body:       `{"external_id":"tg:42"}`,
			store:      &mock.Db{},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
		{
			name: "no record",
			body: `{"external_id":"tg:42","code":"123456"}`,
			store: &mock.Db{
				GetByExternalIDFunc: func(string) (*db.Identity, error) { return nil, nil },
			},
			wantStatus: http.StatusNotFound,
			wantCode:   CodeErrorNotFound,
		},
		{
			name: "already verified",
			body: `{"external_id":"tg:42","code":"123456"}`,
			store: &mock.Db{
				GetByExternalIDFunc: func(string) (*db.Identity, error) {
					return &db.Identity{ExternalID: "tg:42", Status: db.StatusVerified}, nil
				},
			},
			wantStatus: http.StatusAccepted,
			wantCode:   CodeOkAlreadyVerified,
		},
		{
			name: "expired code",
			body: `{"external_id":"tg:42","code":"123456"}`,
			store: &mock.Db{
				GetByExternalIDFunc: func(string) (*db.Identity, error) {
					i := liveCode()
					i.CodeExpiresAt = time.Now().Add(-time.Minute)
					return i, nil
				},
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorCodeExpired,
		},
		{
			name: "mismatch",
			body: `{"external_id":"tg:42","code":"999999"}`,
			store: &mock.Db{
				GetByExternalIDFunc: func(string) (*db.Identity, error) { return liveCode(), nil },
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorCodeMismatch,
		},
		{
			name: "verified",
			body: `{"external_id":"tg:42","code":"123456"}`,
			store: &mock.Db{
				GetByExternalIDFunc: func(string) (*db.Identity, error) { return liveCode(), nil },
				ConsumeCodeFunc:     func(string, string, time.Time) (bool, error) { return true, nil },
			},
			wantStatus: http.StatusOK,
			wantCode:   CodeOkVerified,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.store, nil)
			rec := httptest.NewRecorder()

			app.ConfirmVerificationHandler(rec, postJSON("/api/confirm-verification", tc.body))

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if resp := decodeBasic(t, rec); resp.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	store := &mock.Db{
		GetByExternalIDFunc: func(externalID string) (*db.Identity, error) {
			if externalID != "tg:42" {
				return nil, nil
			}
			return &db.Identity{
				ExternalID:     "tg:42",
				Status:         db.StatusVerified,
				Email:          "a@co.com",
				VerifiedAt:     time.Now().Add(-time.Hour),
				LastActivityAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}
	app := newTestApp(t, store, nil)

	rec := httptest.NewRecorder()
	app.StatusHandler(rec, httptest.NewRequest("GET", "/api/status", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing param status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.StatusHandler(rec, httptest.NewRequest("GET", "/api/status?external_id=tg:42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		JsonBasic
		Data statusData `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Data.Registered || resp.Data.Status != "verified" || resp.Data.Email != "a@co.com" {
		t.Errorf("unexpected data: %+v", resp.Data)
	}

	rec = httptest.NewRecorder()
	app.StatusHandler(rec, httptest.NewRequest("GET", "/api/status?external_id=tg:404", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unregistered status = %d, want 200", rec.Code)
	}
	resp.Data = statusData{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Registered {
		t.Error("unknown id must report registered=false")
	}
}

func TestCheckVerifiedHandler(t *testing.T) {
	store := &mock.Db{
		GetByExternalIDFunc: func(string) (*db.Identity, error) {
			return &db.Identity{
				ExternalID:     "tg:42",
				Status:         db.StatusVerified,
				LastActivityAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}
	app := newTestApp(t, store, nil)

	rec := httptest.NewRecorder()
	app.CheckVerifiedHandler(rec, httptest.NewRequest("GET", "/api/check?external_id=tg:42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		JsonBasic
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Data["verified"] {
		t.Error("expected verified=true")
	}
}

func TestIsAdminHandler(t *testing.T) {
	store := &mock.Db{
		GetByExternalIDFunc: func(string) (*db.Identity, error) { return nil, nil },
	}
	app := newTestApp(t, store, nil)

	rec := httptest.NewRecorder()
	app.IsAdminHandler(rec, httptest.NewRequest("GET", "/api/is-admin?external_id=tg:admin", nil))
	var resp struct {
		JsonBasic
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Data["admin"] {
		t.Error("allow-listed id must be admin")
	}
}

func TestAdminStatsHandler(t *testing.T) {
	store := &mock.Db{
		GetByExternalIDFunc: func(string) (*db.Identity, error) { return nil, nil },
		GetStatsFunc: func() (*db.Stats, error) {
			return &db.Stats{
				IdentitiesByStatus: map[db.Status]int64{db.StatusVerified: 2},
				Interactions:       5,
			}, nil
		},
	}
	app := newTestApp(t, store, nil)

	rec := httptest.NewRecorder()
	app.AdminStatsHandler(rec, httptest.NewRequest("GET", "/api/admin/stats?external_id=tg:nobody", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.AdminStatsHandler(rec, httptest.NewRequest("GET", "/api/admin/stats?external_id=tg:admin", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
	var resp struct {
		JsonBasic
		Data struct {
			Identities   map[string]int64 `json:"identities"`
			Interactions int64            `json:"interactions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Interactions != 5 || resp.Data.Identities["verified"] != 2 {
		t.Errorf("unexpected stats: %+v", resp.Data)
	}
}

func TestRecordInteractionHandler(t *testing.T) {
	inserted := false
	verifiedStore := func(verified bool) *mock.Db {
		status := db.StatusPending
		if verified {
			status = db.StatusVerified
		}
		return &mock.Db{
			GetByExternalIDFunc: func(string) (*db.Identity, error) {
				return &db.Identity{
					ExternalID:     "tg:42",
					Status:         status,
					LastActivityAt: time.Now().Add(-time.Minute),
				}, nil
			},
			InsertInteractionFunc: func(it db.Interaction) error {
				inserted = true
				if it.ExternalID != "tg:42" || it.ResponseTimeMs != 120 {
					t.Errorf("unexpected interaction: %+v", it)
				}
				return nil
			},
		}
	}

	app := newTestApp(t, verifiedStore(false), nil)
	rec := httptest.NewRecorder()
	app.RecordInteractionHandler(rec, postJSON("/api/interactions",
		`{"external_id":"tg:42","query":"q","response":"a","response_time_ms":120}`))
	if rec.Code != http.StatusForbidden {
		t.Errorf("unverified status = %d, want 403", rec.Code)
	}

	app = newTestApp(t, verifiedStore(true), nil)
	rec = httptest.NewRecorder()
	app.RecordInteractionHandler(rec, postJSON("/api/interactions",
		`{"external_id":"tg:42","query":"q","response":"a","response_time_ms":120}`))
	if rec.Code != http.StatusCreated {
		t.Errorf("verified status = %d, want 201", rec.Code)
	}
	if !inserted {
		t.Error("interaction was not stored")
	}
}
