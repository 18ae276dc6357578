package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetTodayBalance(ctx context.Context, entityType usecase.EntityType, id string, asOf time.Time) (decimal.Decimal, error)
	GetProjectedBalance(ctx context.Context, entityType usecase.EntityType, id string, asOf time.Time) (decimal.Decimal, error)
	GetRunningBalances(ctx context.Context, entityType usecase.EntityType, id string, start, end time.Time, includeProjection bool) ([]usecase.RunningBalanceEntry, error)
}

// BalanceHandler answers balance queries for accounts and categories.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// AccountBalance returns an account's actual and projected balance as of a
// date (default today).
func (h *BalanceHandler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	h.balance(w, r, usecase.EntityAccount)
}

// CategoryBalance returns a category's actual and projected balance as of a
// date (default today).
func (h *BalanceHandler) CategoryBalance(w http.ResponseWriter, r *http.Request) {
	h.balance(w, r, usecase.EntityCategory)
}

func (h *BalanceHandler) balance(w http.ResponseWriter, r *http.Request, entityType usecase.EntityType) {
	id := chi.URLParam(r, "id")

	asOf := time.Now()
	if d, err := parseDateQuery(r, "as_of"); err == nil {
		asOf = d
	}

	balance, err := h.balanceUC.GetTodayBalance(r.Context(), entityType, id, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	projected, err := h.balanceUC.GetProjectedBalance(r.Context(), entityType, id, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get projected balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		ID:        id,
		Balance:   balance,
		Projected: projected,
		AsOf:      asOf,
	})
}

// AccountRunningBalances returns an account's daily running balance series
// for a from/to range.
func (h *BalanceHandler) AccountRunningBalances(w http.ResponseWriter, r *http.Request) {
	h.runningBalances(w, r, usecase.EntityAccount)
}

// CategoryRunningBalances returns a category's daily running balance series
// for a from/to range.
func (h *BalanceHandler) CategoryRunningBalances(w http.ResponseWriter, r *http.Request) {
	h.runningBalances(w, r, usecase.EntityCategory)
}

func (h *BalanceHandler) runningBalances(w http.ResponseWriter, r *http.Request, entityType usecase.EntityType) {
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

	includeProjection := parseBoolQuery(r, "projection", true)

	entries, err := h.balanceUC.GetRunningBalances(r.Context(), entityType, id, start, end, includeProjection)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get running balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunningBalancesFromUseCase(entries))
}
