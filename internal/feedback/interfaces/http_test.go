package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	feedback "restroom-cloud/internal/feedback/domain"
	"restroom-cloud/internal/feedback/infrastructure/memory"
)

func TestFeedbackSubmitAndList(t *testing.T) {
	repo := memory.NewRepository()
	handler, err := NewHandler(repo, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(`{"room_id":2,"rating":4,"comment":"  clean enough  "}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body=%s", resp.Code, resp.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["id"] == "" {
		t.Fatalf("missing id in response")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("list status = %d", resp.Code)
	}
	var listed struct {
		Items []feedback.Entry `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(listed.Items))
	}
	if listed.Items[0].Comment != "clean enough" {
		t.Fatalf("comment not trimmed: %q", listed.Items[0].Comment)
	}
}

func TestFeedbackRejectsOutOfRangeRating(t *testing.T) {
	handler, _ := NewHandler(memory.NewRepository(), nil)

	for _, body := range []string{`{"rating":0}`, `{"rating":6}`, `{"rating":-1}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, resp.Code)
		}
	}
}

func TestFeedbackListLimit(t *testing.T) {
	repo := memory.NewRepository()
	handler, _ := NewHandler(repo, nil)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(`{"rating":3}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("submit %d failed: %d", i, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback?limit=2", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	var listed struct {
		Items []feedback.Entry `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(listed.Items))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/feedback?limit=zero", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", resp.Code)
	}
}
