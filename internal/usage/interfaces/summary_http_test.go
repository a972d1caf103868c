package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	statusdomain "restroom-cloud/internal/status/domain"
	usageapp "restroom-cloud/internal/usage/application"
	usage "restroom-cloud/internal/usage/domain"
	"restroom-cloud/internal/usage/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestAggregator(t *testing.T) *usageapp.Aggregator {
	t.Helper()
	store := memory.NewSummaryStore()
	clock := fixedClock{now: time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC)}
	agg, err := usageapp.NewAggregator(store, time.UTC, clock, nil)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	ctx := context.Background()
	if err := agg.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	snapshot := statusdomain.Snapshot{
		OK:            true,
		LastCleanTsMs: 1756400000000,
		Rooms: []statusdomain.Room{
			{RoomID: 1, State: statusdomain.StateVacant, UseCount: 5, TotalUseMs: 600000},
		},
	}
	if err := agg.Ingest(ctx, snapshot, clock.Now()); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return agg
}

func TestSummaryHandlerServesTodayView(t *testing.T) {
	handler, err := NewSummaryHandler(newTestAggregator(t), nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var view usage.SummaryView
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.DayKey != "2026-08-29" || view.TotalUsers != 5 {
		t.Fatalf("view = %+v", view)
	}
	if view.TotalUseMinutes != 10 {
		t.Fatalf("total minutes = %v, want 10", view.TotalUseMinutes)
	}
	if view.AvgMinutesPerUser != 2 {
		t.Fatalf("avg = %v, want 2", view.AvgMinutesPerUser)
	}
	if view.CleanCount != 1 {
		t.Fatalf("clean count = %v, want 1", view.CleanCount)
	}
	if len(view.PerHour) != 24 {
		t.Fatalf("per hour = %d points", len(view.PerHour))
	}
	if view.PerHour[10].Users != 5 {
		t.Fatalf("hour 10 = %+v", view.PerHour[10])
	}
}

func TestSummaryHandlerExplicitDay(t *testing.T) {
	handler, _ := NewSummaryHandler(newTestAggregator(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily?day=2026-08-29", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("stored day status = %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily?day=2000-01-01", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing day status = %d, want 404", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily?day=garbage", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad day status = %d, want 400", resp.Code)
	}
}

func TestSummaryHandlerExportsXLSX(t *testing.T) {
	handler, _ := NewSummaryHandler(newTestAggregator(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily/export.xlsx", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %s", ct)
	}
	// XLSX containers are zip archives.
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("payload is not a zip archive")
	}
}

func TestSummaryHandlerExportsPDF(t *testing.T) {
	handler, _ := NewSummaryHandler(newTestAggregator(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/daily/export.pdf", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %s", ct)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("payload is not a pdf")
	}
}

func TestSummaryHandlerMethodNotAllowed(t *testing.T) {
	handler, _ := NewSummaryHandler(newTestAggregator(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/daily", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.Code)
	}
}
