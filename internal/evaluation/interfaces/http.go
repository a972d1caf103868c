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

	"restroom-cloud/internal/auth"
	evaluation "restroom-cloud/internal/evaluation/domain"
)

// Handler serves /api/v1/evaluations (manager only, enforced by route policy).
type Handler struct {
	repo   evaluation.Repository
	logger *log.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo evaluation.Repository, logger *log.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("evaluation handler: nil repository")
	}
	return &Handler{repo: repo, logger: logger}, nil
}

type submitRequest struct {
	Employee    string `json:"employee"`
	Cleanliness int    `json:"cleanliness"`
	Supplies    int    `json:"supplies"`
	Floor       int    `json:"floor"`
	Odor        int    `json:"odor"`
	Comment     string `json:"comment"`
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

	eval := evaluation.Evaluation{
		ID:          uuid.NewString(),
		Employee:    strings.TrimSpace(req.Employee),
		Evaluator:   auth.SubjectFromContext(r.Context()),
		Cleanliness: req.Cleanliness,
		Supplies:    req.Supplies,
		Floor:       req.Floor,
		Odor:        req.Odor,
		Comment:     strings.TrimSpace(req.Comment),
		CreatedAt:   time.Now().UTC(),
	}
	if err := eval.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Save(r.Context(), eval); err != nil {
		if h.logger != nil {
			h.logger.Printf("evaluation save failed: %v", err)
		}
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      eval.ID,
		"average": eval.Average(),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	employee := strings.TrimSpace(r.URL.Query().Get("employee"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	evals, err := h.repo.List(r.Context(), employee, limit)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("evaluation list failed: %v", err)
		}
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if evals == nil {
		evals = []evaluation.Evaluation{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": evals})
}
