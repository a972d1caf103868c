package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"restroom-cloud/internal/auth"
	schedule "restroom-cloud/internal/schedule/domain"
)

// Handler serves /api/v1/schedule. Route policy lets staff read the roster
// and restricts replacing it to managers.
type Handler struct {
	repo   schedule.Repository
	logger *log.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo schedule.Repository, logger *log.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("schedule handler: nil repository")
	}
	return &Handler{repo: repo, logger: logger}, nil
}

// ServeHTTP dispatches by method.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sched, err := h.repo.Get(r.Context())
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			sched = schedule.Schedule{Assignments: []schedule.Assignment{}}
		} else {
			if h.logger != nil {
				h.logger.Printf("schedule get failed: %v", err)
			}
			http.Error(w, "schedule lookup failed", http.StatusInternalServerError)
			return
		}
	}
	if sched.Assignments == nil {
		sched.Assignments = []schedule.Assignment{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sched)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var sched schedule.Schedule
	if err := json.NewDecoder(r.Body).Decode(&sched); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	sched.UpdatedAt = time.Now().UTC()
	sched.UpdatedBy = auth.SubjectFromContext(r.Context())

	if err := sched.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Put(r.Context(), sched); err != nil {
		if h.logger != nil {
			h.logger.Printf("schedule put failed: %v", err)
		}
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
