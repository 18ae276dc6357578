package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

type budgetServiceStub struct {
	singleFn     func(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error)
	aggregatedFn func(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error)
	summaryFn    func(ctx context.Context, month domain.Month, incomeCategories bool) (usecase.BudgetData, error)
	resetFn      func(ctx context.Context, month domain.Month) (usecase.BulkResult, error)
	templateFn   func(ctx context.Context, month domain.Month) (*usecase.ApplyTemplateResult, error)
}

func (s *budgetServiceStub) GetSingleCategoryMonthlyBudgetData(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error) {
	return s.singleFn(ctx, categoryID, month)
}

func (s *budgetServiceStub) GetAggregatedMonthlyBudgetData(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error) {
	return s.aggregatedFn(ctx, categoryID, month)
}

func (s *budgetServiceStub) GetMonthlySummary(ctx context.Context, month domain.Month, incomeCategories bool) (usecase.BudgetData, error) {
	return s.summaryFn(ctx, month, incomeCategories)
}

func (s *budgetServiceStub) ResetMonthBudget(ctx context.Context, month domain.Month) (usecase.BulkResult, error) {
	return s.resetFn(ctx, month)
}

func (s *budgetServiceStub) ApplyBudgetTemplate(ctx context.Context, month domain.Month) (*usecase.ApplyTemplateResult, error) {
	return s.templateFn(ctx, month)
}

func setChiURLParam2(r *http.Request, key1, value1, key2, value2 string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key1, key2},
			Values: []string{value1, value2},
		},
	}))
}

func TestBudgetHandler_CategoryData(t *testing.T) {
	stub := &budgetServiceStub{
		singleFn: func(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error) {
			if categoryID != "cat-1" || month.Key() != "2024-03" {
				t.Fatalf("unexpected args: %s %s", categoryID, month.Key())
			}
			return usecase.BudgetData{
				Budgeted: decimal.RequireFromString("400"),
				Spent:    decimal.RequireFromString("-120"),
				Saldo:    decimal.RequireFromString("280"),
			}, nil
		},
		aggregatedFn: func(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error) {
			t.Fatal("aggregated variant should not be called without aggregate=true")
			return usecase.BudgetData{}, nil
		},
	}
	handler := NewBudgetHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/categories/cat-1/budget/2024-03", nil)
	req = setChiURLParam2(req, "id", "cat-1", "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.CategoryData(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BudgetDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Month != "2024-03" || !resp.Saldo.Equal(decimal.RequireFromString("280")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBudgetHandler_CategoryData_Aggregate(t *testing.T) {
	called := false
	stub := &budgetServiceStub{
		aggregatedFn: func(ctx context.Context, categoryID string, month domain.Month) (usecase.BudgetData, error) {
			called = true
			return usecase.BudgetData{}, nil
		},
	}
	handler := NewBudgetHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/categories/cat-1/budget/2024-03?aggregate=true", nil)
	req = setChiURLParam2(req, "id", "cat-1", "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.CategoryData(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Fatal("expected aggregated variant to be called")
	}
}

func TestBudgetHandler_CategoryData_BadMonth(t *testing.T) {
	handler := NewBudgetHandler(&budgetServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/categories/cat-1/budget/March", nil)
	req = setChiURLParam2(req, "id", "cat-1", "month", "March")
	rec := httptest.NewRecorder()

	handler.CategoryData(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBudgetHandler_Summary_IncomeFlag(t *testing.T) {
	var captured bool
	stub := &budgetServiceStub{
		summaryFn: func(ctx context.Context, month domain.Month, incomeCategories bool) (usecase.BudgetData, error) {
			captured = incomeCategories
			return usecase.BudgetData{}, nil
		},
	}
	handler := NewBudgetHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/budget/2024-03/summary?income=true", nil)
	req = setChiURLParam(req, "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !captured {
		t.Fatal("expected income flag to reach the service")
	}
}

func TestBudgetHandler_ApplyTemplate(t *testing.T) {
	stub := &budgetServiceStub{
		templateFn: func(ctx context.Context, month domain.Month) (*usecase.ApplyTemplateResult, error) {
			return &usecase.ApplyTemplateResult{
				Allocated:        decimal.RequireFromString("950"),
				TransfersCreated: 3,
			}, nil
		},
	}
	handler := NewBudgetHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/budget/2024-03/apply-template", nil)
	req = setChiURLParam(req, "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.ApplyTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ApplyTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TransfersCreated != 3 || !resp.Allocated.Equal(decimal.RequireFromString("950")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
