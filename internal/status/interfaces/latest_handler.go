package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"restroom-cloud/internal/status/latest"
)

// LatestHandler serves the most recent snapshot for the overview page.
type LatestHandler struct {
	store *latest.Store
}

// NewLatestHandler constructs a latest-status handler.
func NewLatestHandler(store *latest.Store) (*LatestHandler, error) {
	if store == nil {
		return nil, errors.New("status latest: nil store")
	}
	return &LatestHandler{store: store}, nil
}

// ServeHTTP handles GET /api/restroom/status/latest.
func (h *LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	snapshot, ok := h.store.Get()
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      false,
			"message": "no data yet",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(snapshot)
}
