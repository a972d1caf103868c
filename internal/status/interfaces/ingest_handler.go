package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"restroom-cloud/internal/observability/metrics"
	statusdomain "restroom-cloud/internal/status/domain"
)

// SnapshotRecorder applies a validated snapshot to the daily aggregation.
type SnapshotRecorder interface {
	Record(ctx context.Context, snapshot statusdomain.Snapshot, at time.Time) error
}

// devicePacket is the wire shape POSTed by the on-site device.
type devicePacket struct {
	DeviceID         string              `json:"device_id"`
	TsMs             int64               `json:"ts_ms"`
	LastCleanTsMs    int64               `json:"last_clean_ts_ms"`
	CleaningRequired bool                `json:"cleaning_required"`
	Rooms            []statusdomain.Room `json:"rooms"`
}

// IngestHandler accepts status packets from the device.
type IngestHandler struct {
	recorder SnapshotRecorder
	logger   *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(recorder SnapshotRecorder, logger *log.Logger) (*IngestHandler, error) {
	if recorder == nil {
		return nil, errors.New("status ingest: nil recorder")
	}
	return &IngestHandler{recorder: recorder, logger: logger}, nil
}

// ServeHTTP handles POST /ingest/restroom/status.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var packet devicePacket
	if err := json.NewDecoder(r.Body).Decode(&packet); err != nil {
		metrics.IncIngestError("decode")
		metrics.ObserveIngest(metrics.ResultError)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	snapshot := statusdomain.Snapshot{
		OK:               true,
		DeviceID:         packet.DeviceID,
		TsMs:             packet.TsMs,
		CleaningRequired: packet.CleaningRequired,
		LastCleanTsMs:    packet.LastCleanTsMs,
		Rooms:            packet.Rooms,
	}

	if err := h.recorder.Record(r.Context(), snapshot, time.Now()); err != nil {
		metrics.IncIngestError("validate")
		metrics.ObserveIngest(metrics.ResultError)
		h.logf("status ingest rejected: device=%s err=%v", packet.DeviceID, err)
		http.Error(w, "invalid packet", http.StatusBadRequest)
		return
	}
	metrics.ObserveIngest(metrics.ResultSuccess)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":                true,
		"device":            packet.DeviceID,
		"packet_time_iso":   msToISO(packet.TsMs),
		"last_clean_iso":    msToISO(packet.LastCleanTsMs),
		"cleaning_required": packet.CleaningRequired,
		"rooms":             packet.Rooms,
	})
}

func (h *IngestHandler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}

func msToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
