package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	GetSingleCategoryMonthlyBudgetData(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error)
	GetAggregatedMonthlyBudgetData(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error)
	GetMonthlySummary(ctx context.Context, month domain.Month, incomeCategories bool) (usecase.BudgetData, error)
	ResetMonthBudget(ctx context.Context, month domain.Month) (usecase.BulkResult, error)
	ApplyBudgetTemplate(ctx context.Context, month domain.Month) (*usecase.ApplyTemplateResult, error)
}

// BudgetHandler handles budget-related HTTP requests. Month path parameters
// use the "YYYY-MM" form.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

// CategoryData returns one category's budget figures for a month. With
// aggregate=true the category's active subtree is rolled up.
func (h *BudgetHandler) CategoryData(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	month, err := parseMonthParam(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	var data usecase.BudgetData
	if parseBoolQuery(r, "aggregate", false) {
		data, err = h.budgetUC.GetAggregatedMonthlyBudgetData(r.Context(), categoryID, month)
	} else {
		data, err = h.budgetUC.GetSingleCategoryMonthlyBudgetData(r.Context(), categoryID, month)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get budget data", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetDataFromUseCase(categoryID, month, data))
}

// Summary returns the month-wide totals over expense or income categories.
func (h *BudgetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	incomeCategories := parseBoolQuery(r, "income", false)

	data, err := h.budgetUC.GetMonthlySummary(r.Context(), month, incomeCategories)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get monthly summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetDataFromUseCase("", month, data))
}

// Reset deletes the month's envelope allocations. Income mirror pairs are
// preserved.
func (h *BudgetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	result, err := h.budgetUC.ResetMonthBudget(r.Context(), month)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reset month budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BulkResultFromUseCase(result))
}

// ApplyTemplate runs the two-pass template allocation for a month.
func (h *BudgetHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	result, err := h.budgetUC.ApplyBudgetTemplate(r.Context(), month)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply budget template", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApplyTemplateFromUseCase(result))
}
