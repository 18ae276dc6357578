package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

func TestTransactionFromDomain(t *testing.T) {
	now := time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC)
	tx := &domain.Transaction{
		ID:                   "tx-1",
		Type:                 domain.TransactionTypeAccountTransfer,
		AccountID:            "acc-1",
		TransferToAccountID:  "acc-2",
		CounterTransactionID: "tx-2",
		Amount:               decimal.RequireFromString("-250"),
		Date:                 now,
		ValueDate:            now,
		RunningBalance:       decimal.RequireFromString("1750"),
		Reconciled:           true,
	}

	got := TransactionFromDomain(tx)
	if got.ID != "tx-1" || got.Type != "ACCOUNTTRANSFER" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if got.CounterTransactionID != "tx-2" || got.TransferToAccountID != "acc-2" {
		t.Fatalf("transfer linkage lost: %+v", got)
	}
	if !got.RunningBalance.Equal(decimal.RequireFromString("1750")) || !got.Reconciled {
		t.Fatalf("unexpected balance fields: %+v", got)
	}
}

func TestAccountsFromDomain(t *testing.T) {
	accounts := []*domain.Account{
		{ID: "acc-1", Name: "Checking", Active: true},
		{ID: "acc-2", Name: "Savings", Offline: true},
	}

	got := AccountsFromDomain(accounts)
	if len(got) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(got))
	}
	if got[0].Name != "Checking" || !got[1].Offline {
		t.Fatalf("unexpected responses: %+v %+v", got[0], got[1])
	}
}

func TestRunningBalancesFromUseCase(t *testing.T) {
	entries := []usecase.RunningBalanceEntry{
		{
			Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Balance:   decimal.RequireFromString("100"),
			Projected: decimal.RequireFromString("80"),
		},
	}

	got := RunningBalancesFromUseCase(entries)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Date != "2024-03-01" {
		t.Fatalf("expected date formatting, got %s", got[0].Date)
	}
	if !got[0].Projected.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("unexpected projected %s", got[0].Projected)
	}
}

func TestBudgetDataFromUseCase(t *testing.T) {
	month := domain.MonthOf(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	data := usecase.BudgetData{
		Budgeted: decimal.RequireFromString("400"),
		Forecast: decimal.RequireFromString("400"),
		Spent:    decimal.RequireFromString("-120.55"),
		Saldo:    decimal.RequireFromString("279.45"),
	}

	got := BudgetDataFromUseCase("cat-1", month, data)
	if got.Month != "2024-03" || got.CategoryID != "cat-1" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if !got.Saldo.Equal(decimal.RequireFromString("279.45")) {
		t.Fatalf("unexpected saldo %s", got.Saldo)
	}
}

func TestApplyTemplateFromUseCase(t *testing.T) {
	result := &usecase.ApplyTemplateResult{
		Allocated:        decimal.RequireFromString("950"),
		TransfersCreated: 3,
		Errors:           []error{errors.New("category Vacation skipped")},
	}

	got := ApplyTemplateFromUseCase(result)
	if got.TransfersCreated != 3 || !got.Allocated.Equal(decimal.RequireFromString("950")) {
		t.Fatalf("unexpected response: %+v", got)
	}
	if len(got.Errors) != 1 || got.Errors[0] != "category Vacation skipped" {
		t.Fatalf("unexpected errors: %v", got.Errors)
	}
}
