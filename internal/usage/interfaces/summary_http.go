package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"restroom-cloud/internal/audit"
	"restroom-cloud/internal/auth"
	"restroom-cloud/internal/observability/metrics"
	usageapp "restroom-cloud/internal/usage/application"
	usage "restroom-cloud/internal/usage/domain"
)

// SummaryHandler serves the daily usage view and report exports under
// /api/v1/usage/daily.
type SummaryHandler struct {
	aggregator  *usageapp.Aggregator
	auditLogger audit.Logger
}

// NewSummaryHandler constructs a handler.
func NewSummaryHandler(aggregator *usageapp.Aggregator, auditLogger audit.Logger) (*SummaryHandler, error) {
	if aggregator == nil {
		return nil, errors.New("usage handler: nil aggregator")
	}
	return &SummaryHandler{aggregator: aggregator, auditLogger: auditLogger}, nil
}

// ServeHTTP handles GET /api/v1/usage/daily and the export routes.
func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Path
	switch {
	case path == "/api/v1/usage/daily":
		h.handleView(w, r)
	case path == "/api/v1/usage/daily/export.xlsx":
		h.handleExport(w, r, "xlsx")
	case path == "/api/v1/usage/daily/export.pdf":
		h.handleExport(w, r, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *SummaryHandler) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.resolveView(r)
	if err != nil {
		respondViewError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (h *SummaryHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	view, err := h.resolveView(r)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		respondViewError(w, err)
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "xlsx":
		payload, err = BuildUsageReportXLSX(view)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		payload, err = BuildUsageReportPDF(view)
		contentType = "application/pdf"
	default:
		err = fmt.Errorf("usage handler: unknown format %q", format)
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))

	filename := fmt.Sprintf("usage-%s.%s", view.DayKey, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(payload)

	h.logAudit(r, view.DayKey, format)
}

// resolveView returns today's in-memory view, or the stored view when an
// explicit ?day=YYYY-MM-DD is requested.
func (h *SummaryHandler) resolveView(r *http.Request) (usage.SummaryView, error) {
	day := strings.TrimSpace(r.URL.Query().Get("day"))
	if day == "" {
		return h.aggregator.CurrentView(), nil
	}
	return h.aggregator.ViewFor(r.Context(), usage.DayKey(day))
}

func (h *SummaryHandler) logAudit(r *http.Request, dayKey, format string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"day": dayKey, "format": format})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "usage.export",
		ResourceType: "daily_summary",
		ResourceID:   dayKey,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondViewError(w http.ResponseWriter, err error) {
	if errors.Is(err, usage.ErrSummaryNotFound) {
		http.Error(w, "no summary for that day", http.StatusNotFound)
		return
	}
	if errors.Is(err, usage.ErrInvalidDayKey) {
		http.Error(w, "day must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	http.Error(w, "summary lookup failed", http.StatusInternalServerError)
}
