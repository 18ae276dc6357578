package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

func TestCreateTransactionRequest_ToUseCaseInput(t *testing.T) {
	valueDate := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	req := &CreateTransactionRequest{
		Type:       "EXPENSE",
		AccountID:  "acc-1",
		CategoryID: "cat-1",
		Amount:     decimal.RequireFromString("-42.50"),
		Date:       time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
		ValueDate:  &valueDate,
		Note:       "groceries",
	}

	got := req.ToUseCaseInput()
	if got.Type != domain.TransactionTypeExpense {
		t.Fatalf("expected EXPENSE, got %s", got.Type)
	}
	if got.AccountID != "acc-1" || got.CategoryID != "cat-1" || got.Note != "groceries" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("-42.50")) {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
	if got.ValueDate == nil || !got.ValueDate.Equal(valueDate) {
		t.Fatalf("expected value date to carry over, got %v", got.ValueDate)
	}
}

func TestCategoryTransferRequest_ToUseCaseInput(t *testing.T) {
	req := &CategoryTransferRequest{
		FromCategoryID: "cat-af",
		ToCategoryID:   "cat-rent",
		Amount:         decimal.RequireFromString("400"),
		Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Note:           "allocation",
	}

	got := req.ToUseCaseInput()
	if got.FromCategoryID != "cat-af" || got.ToCategoryID != "cat-rent" {
		t.Fatalf("unexpected endpoints: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
}

func TestCreatePlanningRequest_ToUseCaseInput(t *testing.T) {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	req := &CreatePlanningRequest{
		Name:            "Rent",
		Type:            "EXPENSE",
		AccountID:       "acc-1",
		CategoryID:      "cat-rent",
		Amount:          decimal.RequireFromString("-900"),
		Recurrence:      "MONTHLY",
		EndType:         "DATE",
		WeekendHandling: "BEFORE",
		StartDate:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		EndDate:         &end,
		ExecutionDay:    31,
	}

	got := req.ToUseCaseInput()
	if got.Recurrence != domain.RecurrenceMonthly || got.EndType != domain.RecurrenceEndDate {
		t.Fatalf("unexpected recurrence mapping: %+v", got)
	}
	if got.WeekendHandling != domain.WeekendBefore || got.ExecutionDay != 31 {
		t.Fatalf("unexpected schedule mapping: %+v", got)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Fatalf("expected end date to carry over, got %v", got.EndDate)
	}
}

func TestImportTransactionsRequest_ToUseCaseInputs(t *testing.T) {
	req := &ImportTransactionsRequest{
		Transactions: []CreateTransactionRequest{
			{Type: "INCOME", AccountID: "acc-1", Amount: decimal.RequireFromString("100")},
			{Type: "EXPENSE", AccountID: "acc-1", Amount: decimal.RequireFromString("-5")},
		},
	}

	inputs := req.ToUseCaseInputs()
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}
	if inputs[0].Type != domain.TransactionTypeIncome || inputs[1].Type != domain.TransactionTypeExpense {
		t.Fatalf("unexpected types: %+v", inputs)
	}
}
