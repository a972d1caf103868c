package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	feedback "restroom-cloud/internal/feedback/domain"
)

// Handler serves /api/v1/feedback. Submitting feedback is open to visitors;
// route policy restricts listing to managers.
type Handler struct {
	repo   feedback.Repository
	logger *log.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo feedback.Repository, logger *log.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("feedback handler: nil repository")
	}
	return &Handler{repo: repo, logger: logger}, nil
}

type submitRequest struct {
	RoomID  int    `json:"room_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ServeHTTP dispatches by method.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	entry := feedback.Entry{
		ID:        uuid.NewString(),
		RoomID:    req.RoomID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Save(r.Context(), entry); err != nil {
		if h.logger != nil {
			h.logger.Printf("feedback save failed: %v", err)
		}
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": entry.ID})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("feedback list failed: %v", err)
		}
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []feedback.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": entries})
}
