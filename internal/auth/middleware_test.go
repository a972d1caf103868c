package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func mustToken(t *testing.T, secret []byte, role Role) string {
	t.Helper()
	token, err := IssueToken("user-1", role, secret, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestMiddlewareNoToken(t *testing.T) {
	secret := []byte("test-secret")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/restroom/status/latest", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMiddlewareViewerForbiddenUsageDaily(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, RoleViewer)
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestMiddlewareManagerAllowedExport(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, RoleManager)
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily/export.xlsx", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestMiddlewareFeedbackPostIsPublic(t *testing.T) {
	secret := []byte("test-secret")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(`{"rating":5}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous feedback post, got %d", resp.Code)
	}

	// Listing requires a manager.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous feedback list, got %d", resp.Code)
	}
}

func TestMiddlewareScheduleRoles(t *testing.T) {
	secret := []byte("test-secret")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	staffToken := mustToken(t, secret, RoleStaff)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("staff schedule read: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/schedule", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("staff schedule write: expected 403, got %d", resp.Code)
	}
}

func TestMiddlewareExemptPaths(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy([]string{"/healthz"}, []string{"/ingest/"})
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(okHandler())

	for _, path := range []string{"/healthz", "/ingest/restroom/status"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("exempt path %s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken("user-1", RoleManager, secret, time.Nanosecond)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.Code)
	}
}

func TestLoginHandlerIssuesToken(t *testing.T) {
	secret := []byte("test-secret")
	users := []User{{Username: "manager", Password: "s3cret", Role: RoleManager}}
	handler, err := NewLoginHandler(users, secret, time.Hour)
	if err != nil {
		t.Fatalf("new login handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"manager","password":"s3cret"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("login status = %d", resp.Code)
	}

	var payload struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Role != string(RoleManager) {
		t.Fatalf("role = %s", payload.Role)
	}

	claims, err := ParseJWT(payload.Token, secret)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != "manager" || claims.Role != string(RoleManager) {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginHandlerRejectsBadPassword(t *testing.T) {
	secret := []byte("test-secret")
	users := []User{{Username: "manager", Password: "s3cret", Role: RoleManager}}
	handler, _ := NewLoginHandler(users, secret, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"manager","password":"wrong"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestIngestSignatureRoundTrip(t *testing.T) {
	secret := []byte("ingest-secret")
	mw := NewIngestAuthMiddleware(secret, 5*time.Minute)
	var gotBody string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"device_id":"restroom-ctl-01"}`
	tsStr := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/ingest/restroom/status", strings.NewReader(body))
	req.Header.Set("X-Ingest-Timestamp", tsStr)
	req.Header.Set("X-Ingest-Signature", ComputeIngestSignature(secret, tsStr, []byte(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("signed request rejected: %d %s", resp.Code, resp.Body.String())
	}
	if gotBody != body {
		t.Fatalf("body not replayed to handler: %q", gotBody)
	}

	// Tampered body fails.
	req = httptest.NewRequest(http.MethodPost, "/ingest/restroom/status", strings.NewReader(body+" "))
	req.Header.Set("X-Ingest-Timestamp", tsStr)
	req.Header.Set("X-Ingest-Signature", ComputeIngestSignature(secret, tsStr, []byte(body)))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("tampered request accepted: %d", resp.Code)
	}
}
