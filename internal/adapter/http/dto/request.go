package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// CreateAccountRequest represents a request to create or update an account.
type CreateAccountRequest struct {
	Name      string `json:"name"`
	GroupID   string `json:"group_id,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
	Offline   bool   `json:"offline,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.AccountInput {
	return usecase.AccountInput{
		Name:      r.Name,
		GroupID:   r.GroupID,
		SortOrder: r.SortOrder,
		Offline:   r.Offline,
	}
}

// CreateCategoryRequest represents a request to create or update a category.
type CreateCategoryRequest struct {
	Name              string          `json:"name"`
	ParentID          string          `json:"parent_id,omitempty"`
	GroupID           string          `json:"group_id,omitempty"`
	SortOrder         int             `json:"sort_order,omitempty"`
	Priority          int             `json:"priority,omitempty"`
	MonthlyAmount     decimal.Decimal `json:"monthly_amount,omitempty"`
	AllocationPercent decimal.Decimal `json:"allocation_percent,omitempty"`
	TargetAmount      decimal.Decimal `json:"target_amount,omitempty"`
	IsIncomeCategory  bool            `json:"is_income_category,omitempty"`
	IsAvailableFunds  bool            `json:"is_available_funds,omitempty"`
	IsSavingsGoal     bool            `json:"is_savings_goal,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCategoryRequest) ToUseCaseInput() usecase.CategoryInput {
	return usecase.CategoryInput{
		Name:              r.Name,
		ParentID:          r.ParentID,
		GroupID:           r.GroupID,
		SortOrder:         r.SortOrder,
		Priority:          r.Priority,
		MonthlyAmount:     r.MonthlyAmount,
		AllocationPercent: r.AllocationPercent,
		TargetAmount:      r.TargetAmount,
		IsIncomeCategory:  r.IsIncomeCategory,
		IsAvailableFunds:  r.IsAvailableFunds,
		IsSavingsGoal:     r.IsSavingsGoal,
	}
}

// CreateTransactionRequest represents a request to book an income or expense.
type CreateTransactionRequest struct {
	Type       string          `json:"type"`
	AccountID  string          `json:"account_id"`
	CategoryID string          `json:"category_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	ValueDate  *time.Time      `json:"value_date,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.TransactionInput {
	return usecase.TransactionInput{
		Type:       domain.TransactionType(r.Type),
		AccountID:  r.AccountID,
		CategoryID: r.CategoryID,
		Amount:     r.Amount,
		Date:       r.Date,
		ValueDate:  r.ValueDate,
		Note:       r.Note,
	}
}

// AccountTransferRequest represents a request to move money between accounts.
type AccountTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	ValueDate     *time.Time      `json:"value_date,omitempty"`
	Note          string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AccountTransferRequest) ToUseCaseInput() usecase.AccountTransferInput {
	return usecase.AccountTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Date:          r.Date,
		ValueDate:     r.ValueDate,
		Note:          r.Note,
	}
}

// CategoryTransferRequest represents a request to move budget between categories.
type CategoryTransferRequest struct {
	FromCategoryID string          `json:"from_category_id"`
	ToCategoryID   string          `json:"to_category_id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	Note           string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CategoryTransferRequest) ToUseCaseInput() usecase.CategoryTransferInput {
	return usecase.CategoryTransferInput{
		FromCategoryID: r.FromCategoryID,
		ToCategoryID:   r.ToCategoryID,
		Amount:         r.Amount,
		Date:           r.Date,
		Note:           r.Note,
	}
}

// ReconcileRequest represents a request to reconcile an account against a
// stated external balance.
type ReconcileRequest struct {
	StatedBalance decimal.Decimal `json:"stated_balance"`
	Date          time.Time       `json:"date"`
}

// BulkDeleteRequest represents a request to delete a set of transactions.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// ImportTransactionsRequest represents a request to import transactions in bulk.
type ImportTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions"`
}

// ToUseCaseInputs converts to use case inputs.
func (r *ImportTransactionsRequest) ToUseCaseInputs() []usecase.TransactionInput {
	inputs := make([]usecase.TransactionInput, len(r.Transactions))
	for i, t := range r.Transactions {
		inputs[i] = t.ToUseCaseInput()
	}
	return inputs
}

// CreatePlanningRequest represents a request to create or update a
// planning transaction.
type CreatePlanningRequest struct {
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	AccountID           string          `json:"account_id,omitempty"`
	CategoryID          string          `json:"category_id,omitempty"`
	ToCategoryID        string          `json:"to_category_id,omitempty"`
	TransferToAccountID string          `json:"transfer_to_account_id,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Recurrence          string          `json:"recurrence"`
	EndType             string          `json:"end_type"`
	WeekendHandling     string          `json:"weekend_handling,omitempty"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	MaxOccurrences      int             `json:"max_occurrences,omitempty"`
	ExecutionDay        int             `json:"execution_day,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePlanningRequest) ToUseCaseInput() usecase.CreatePlanningInput {
	return usecase.CreatePlanningInput{
		Name:                r.Name,
		Type:                domain.TransactionType(r.Type),
		AccountID:           r.AccountID,
		CategoryID:          r.CategoryID,
		ToCategoryID:        r.ToCategoryID,
		TransferToAccountID: r.TransferToAccountID,
		Amount:              r.Amount,
		Recurrence:          domain.RecurrencePattern(r.Recurrence),
		EndType:             domain.RecurrenceEnd(r.EndType),
		WeekendHandling:     domain.WeekendHandling(r.WeekendHandling),
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		MaxOccurrences:      r.MaxOccurrences,
		ExecutionDay:        r.ExecutionDay,
	}
}

// ExecutePlanningRequest represents a request to execute a planning
// transaction for a specific occurrence date.
type ExecutePlanningRequest struct {
	Date time.Time `json:"date"`
}
