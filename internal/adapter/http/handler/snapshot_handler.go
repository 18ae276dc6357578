package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
)

// SnapshotReader reads persisted monthly snapshots.
type SnapshotReader interface {
	Get(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error)
	All(ctx context.Context) ([]*domain.MonthlyBalance, error)
}

// SnapshotRecalculator recomputes a month's snapshot from scratch.
type SnapshotRecalculator interface {
	CalculateBalanceForMonth(ctx context.Context, month domain.Month, changedAccountIDs, changedCategoryIDs []string, existing *domain.MonthlyBalance) (*domain.MonthlyBalance, error)
}

// SnapshotHandler exposes monthly balance snapshots.
type SnapshotHandler struct {
	reader SnapshotReader
	calc   SnapshotRecalculator
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(reader SnapshotReader, calc SnapshotRecalculator) *SnapshotHandler {
	return &SnapshotHandler{reader: reader, calc: calc}
}

// Get returns the stored snapshot for a month.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	snapshot, err := h.reader.Get(r.Context(), month)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get snapshot", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// List returns every stored snapshot in chronological order.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.reader.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list snapshots", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotsFromDomain(snapshots))
}

// Recalculate recomputes the month's snapshot from its transactions and
// persists it.
func (h *SnapshotHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	existing, err := h.reader.Get(r.Context(), month)
	if err != nil && !errors.Is(err, domain.ErrSnapshotNotFound) {
		writeError(w, mapDomainError(err), "failed to load snapshot", err.Error())
		return
	}

	snapshot, err := h.calc.CalculateBalanceForMonth(r.Context(), month, nil, nil, existing)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to recalculate snapshot", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}
