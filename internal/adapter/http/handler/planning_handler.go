package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// PlanningService defines the behavior needed by PlanningHandler.
type PlanningService interface {
	CreatePlanning(ctx context.Context, input usecase.CreatePlanningInput) (*domain.PlanningTransaction, error)
	GetPlanning(ctx context.Context, id string) (*domain.PlanningTransaction, error)
	ListPlanning(ctx context.Context) ([]*domain.PlanningTransaction, error)
	UpdatePlanning(ctx context.Context, id string, input usecase.CreatePlanningInput) (*domain.PlanningTransaction, error)
	DeletePlanning(ctx context.Context, id string) error
	Execute(ctx context.Context, id string, date time.Time) (*domain.Transaction, error)
	ExpandOccurrences(p *domain.PlanningTransaction, start, end time.Time) []time.Time
}

// PlanningHandler handles planning-transaction HTTP requests.
type PlanningHandler struct {
	planningUC PlanningService
}

// NewPlanningHandler creates a new PlanningHandler.
func NewPlanningHandler(planningUC PlanningService) *PlanningHandler {
	return &PlanningHandler{planningUC: planningUC}
}

// Create creates a planning transaction.
func (h *PlanningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	p, err := h.planningUC.CreatePlanning(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create planning", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlanningFromDomain(p))
}

// Get retrieves a planning transaction by ID.
func (h *PlanningHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.planningUC.GetPlanning(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get planning", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanningFromDomain(p))
}

// List lists all planning transactions.
func (h *PlanningHandler) List(w http.ResponseWriter, r *http.Request) {
	plannings, err := h.planningUC.ListPlanning(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plannings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanningsFromDomain(plannings))
}

// Update rewrites a planning transaction and its counter template.
func (h *PlanningHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CreatePlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	p, err := h.planningUC.UpdatePlanning(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update planning", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanningFromDomain(p))
}

// Delete removes a planning transaction and its counter template.
func (h *PlanningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.planningUC.DeletePlanning(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete planning", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Execute converts one occurrence of a planning transaction into a real
// booking. The plan is retired automatically when no occurrence remains.
func (h *PlanningHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ExecutePlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.planningUC.Execute(r.Context(), id, req.Date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to execute planning", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Occurrences expands a planning transaction into its occurrence dates
// within a from/to range.
func (h *PlanningHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}
	end, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	p, err := h.planningUC.GetPlanning(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get planning", err.Error())
		return
	}

	occurrences := h.planningUC.ExpandOccurrences(p, start, end)
	dates := make([]string, len(occurrences))
	for i, d := range occurrences {
		dates[i] = d.Format("2006-01-02")
	}

	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}
