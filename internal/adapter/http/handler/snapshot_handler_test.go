package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
)

type snapshotReaderStub struct {
	getFn func(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error)
	allFn func(ctx context.Context) ([]*domain.MonthlyBalance, error)
}

func (s *snapshotReaderStub) Get(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error) {
	return s.getFn(ctx, month)
}

func (s *snapshotReaderStub) All(ctx context.Context) ([]*domain.MonthlyBalance, error) {
	return s.allFn(ctx)
}

type snapshotCalcStub struct {
	calcFn func(ctx context.Context, month domain.Month, changedAccountIDs, changedCategoryIDs []string, existing *domain.MonthlyBalance) (*domain.MonthlyBalance, error)
}

func (s *snapshotCalcStub) CalculateBalanceForMonth(ctx context.Context, month domain.Month, changedAccountIDs, changedCategoryIDs []string, existing *domain.MonthlyBalance) (*domain.MonthlyBalance, error) {
	return s.calcFn(ctx, month, changedAccountIDs, changedCategoryIDs, existing)
}

func TestSnapshotHandler_Get(t *testing.T) {
	month := domain.Month{Year: 2024, Month: time.March}
	snapshot := domain.NewMonthlyBalance(month)
	snapshot.AccountBalances["acc-1"] = decimal.RequireFromString("1500")

	reader := &snapshotReaderStub{
		getFn: func(ctx context.Context, m domain.Month) (*domain.MonthlyBalance, error) {
			if m.Key() != "2024-03" {
				t.Fatalf("unexpected month %s", m.Key())
			}
			return snapshot, nil
		},
	}
	handler := NewSnapshotHandler(reader, &snapshotCalcStub{})

	req := httptest.NewRequest(http.MethodGet, "/snapshots/2024-03", nil)
	req = setChiURLParam(req, "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Month != "2024-03" || !resp.AccountBalances["acc-1"].Equal(decimal.RequireFromString("1500")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSnapshotHandler_Get_NotFound(t *testing.T) {
	reader := &snapshotReaderStub{
		getFn: func(ctx context.Context, m domain.Month) (*domain.MonthlyBalance, error) {
			return nil, domain.ErrSnapshotNotFound
		},
	}
	handler := NewSnapshotHandler(reader, &snapshotCalcStub{})

	req := httptest.NewRequest(http.MethodGet, "/snapshots/2024-03", nil)
	req = setChiURLParam(req, "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSnapshotHandler_Recalculate_MissingSnapshotIsNotFatal(t *testing.T) {
	month := domain.Month{Year: 2024, Month: time.March}

	reader := &snapshotReaderStub{
		getFn: func(ctx context.Context, m domain.Month) (*domain.MonthlyBalance, error) {
			return nil, domain.ErrSnapshotNotFound
		},
	}
	calc := &snapshotCalcStub{
		calcFn: func(ctx context.Context, m domain.Month, accounts, categories []string, existing *domain.MonthlyBalance) (*domain.MonthlyBalance, error) {
			if existing != nil {
				t.Fatalf("expected nil existing snapshot, got %+v", existing)
			}
			return domain.NewMonthlyBalance(month), nil
		},
	}
	handler := NewSnapshotHandler(reader, calc)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/2024-03/recalculate", nil)
	req = setChiURLParam(req, "month", "2024-03")
	rec := httptest.NewRecorder()

	handler.Recalculate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSnapshotHandler_Recalculate_BadMonth(t *testing.T) {
	handler := NewSnapshotHandler(&snapshotReaderStub{}, &snapshotCalcStub{})

	req := httptest.NewRequest(http.MethodPost, "/snapshots/bad/recalculate", nil)
	req = setChiURLParam(req, "month", "bad")
	rec := httptest.NewRecorder()

	handler.Recalculate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
