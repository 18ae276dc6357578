package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GroupID   string    `json:"group_id,omitempty"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	Offline   bool      `json:"offline"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		GroupID:   a.GroupID,
		SortOrder: a.SortOrder,
		Active:    a.Active,
		Offline:   a.Offline,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	ParentID          string          `json:"parent_id,omitempty"`
	GroupID           string          `json:"group_id,omitempty"`
	SortOrder         int             `json:"sort_order"`
	Priority          int             `json:"priority"`
	MonthlyAmount     decimal.Decimal `json:"monthly_amount"`
	AllocationPercent decimal.Decimal `json:"allocation_percent"`
	TargetAmount      decimal.Decimal `json:"target_amount"`
	IsIncomeCategory  bool            `json:"is_income_category"`
	IsAvailableFunds  bool            `json:"is_available_funds"`
	IsSavingsGoal     bool            `json:"is_savings_goal"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CategoryFromDomain converts domain category to response.
func CategoryFromDomain(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:                c.ID,
		Name:              c.Name,
		ParentID:          c.ParentID,
		GroupID:           c.GroupID,
		SortOrder:         c.SortOrder,
		Priority:          c.Priority,
		MonthlyAmount:     c.MonthlyAmount,
		AllocationPercent: c.AllocationPercent,
		TargetAmount:      c.TargetAmount,
		IsIncomeCategory:  c.IsIncomeCategory,
		IsAvailableFunds:  c.IsAvailableFunds,
		IsSavingsGoal:     c.IsSavingsGoal,
		Active:            c.Active,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.Category) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = CategoryFromDomain(c)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	AccountID            string          `json:"account_id,omitempty"`
	CategoryID           string          `json:"category_id,omitempty"`
	ToCategoryID         string          `json:"to_category_id,omitempty"`
	TransferToAccountID  string          `json:"transfer_to_account_id,omitempty"`
	CounterTransactionID string          `json:"counter_transaction_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Date                 time.Time       `json:"date"`
	ValueDate            time.Time       `json:"value_date"`
	Note                 string          `json:"note,omitempty"`
	RunningBalance       decimal.Decimal `json:"running_balance"`
	Reconciled           bool            `json:"reconciled"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		Type:                 string(t.Type),
		AccountID:            t.AccountID,
		CategoryID:           t.CategoryID,
		ToCategoryID:         t.ToCategoryID,
		TransferToAccountID:  t.TransferToAccountID,
		CounterTransactionID: t.CounterTransactionID,
		Amount:               t.Amount,
		Date:                 t.Date,
		ValueDate:            t.ValueDate,
		Note:                 t.Note,
		RunningBalance:       t.RunningBalance,
		Reconciled:           t.Reconciled,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// PlanningResponse represents a planning transaction in API responses.
type PlanningResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	AccountID           string          `json:"account_id,omitempty"`
	CategoryID          string          `json:"category_id,omitempty"`
	ToCategoryID        string          `json:"to_category_id,omitempty"`
	TransferToAccountID string          `json:"transfer_to_account_id,omitempty"`
	CounterPlanningID   string          `json:"counter_planning_id,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Recurrence          string          `json:"recurrence"`
	EndType             string          `json:"end_type"`
	WeekendHandling     string          `json:"weekend_handling"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	MaxOccurrences      int             `json:"max_occurrences,omitempty"`
	ExecutionDay        int             `json:"execution_day,omitempty"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// PlanningFromDomain converts domain planning transaction to response.
func PlanningFromDomain(p *domain.PlanningTransaction) *PlanningResponse {
	return &PlanningResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Type:                string(p.Type),
		AccountID:           p.AccountID,
		CategoryID:          p.CategoryID,
		ToCategoryID:        p.ToCategoryID,
		TransferToAccountID: p.TransferToAccountID,
		CounterPlanningID:   p.CounterPlanningID,
		Amount:              p.Amount,
		Recurrence:          string(p.Recurrence),
		EndType:             string(p.EndType),
		WeekendHandling:     string(p.WeekendHandling),
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		MaxOccurrences:      p.MaxOccurrences,
		ExecutionDay:        p.ExecutionDay,
		Active:              p.Active,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// PlanningsFromDomain converts domain planning transactions to responses.
func PlanningsFromDomain(plannings []*domain.PlanningTransaction) []*PlanningResponse {
	result := make([]*PlanningResponse, len(plannings))
	for i, p := range plannings {
		result[i] = PlanningFromDomain(p)
	}
	return result
}

// BalanceResponse represents a point-in-time balance.
type BalanceResponse struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	Projected decimal.Decimal `json:"projected,omitempty"`
	AsOf      time.Time       `json:"as_of"`
}

// RunningBalanceResponse represents one day in a running balance series.
type RunningBalanceResponse struct {
	Date      string          `json:"date"`
	Balance   decimal.Decimal `json:"balance"`
	Projected decimal.Decimal `json:"projected"`
}

// RunningBalancesFromUseCase converts balance engine entries to responses.
func RunningBalancesFromUseCase(entries []usecase.RunningBalanceEntry) []RunningBalanceResponse {
	result := make([]RunningBalanceResponse, len(entries))
	for i, e := range entries {
		result[i] = RunningBalanceResponse{
			Date:      e.Date.Format("2006-01-02"),
			Balance:   e.Balance,
			Projected: e.Projected,
		}
	}
	return result
}

// BudgetDataResponse represents per-category budget figures for one month.
type BudgetDataResponse struct {
	CategoryID string          `json:"category_id,omitempty"`
	Month      string          `json:"month"`
	Budgeted   decimal.Decimal `json:"budgeted"`
	Forecast   decimal.Decimal `json:"forecast"`
	Spent      decimal.Decimal `json:"spent"`
	Saldo      decimal.Decimal `json:"saldo"`
}

// BudgetDataFromUseCase converts budget engine output to a response.
func BudgetDataFromUseCase(categoryID string, month domain.Month, d usecase.BudgetData) BudgetDataResponse {
	return BudgetDataResponse{
		CategoryID: categoryID,
		Month:      month.Key(),
		Budgeted:   d.Budgeted,
		Forecast:   d.Forecast,
		Spent:      d.Spent,
		Saldo:      d.Saldo,
	}
}

// SnapshotResponse represents a monthly balance snapshot.
type SnapshotResponse struct {
	Month                     string                     `json:"month"`
	AccountBalances           map[string]decimal.Decimal `json:"account_balances"`
	CategoryBalances          map[string]decimal.Decimal `json:"category_balances"`
	ProjectedAccountBalances  map[string]decimal.Decimal `json:"projected_account_balances"`
	ProjectedCategoryBalances map[string]decimal.Decimal `json:"projected_category_balances"`
	LastCalculated            time.Time                  `json:"last_calculated"`
}

// SnapshotFromDomain converts a domain snapshot to a response.
func SnapshotFromDomain(s *domain.MonthlyBalance) *SnapshotResponse {
	return &SnapshotResponse{
		Month:                     s.Month.Key(),
		AccountBalances:           s.AccountBalances,
		CategoryBalances:          s.CategoryBalances,
		ProjectedAccountBalances:  s.ProjectedAccountBalances,
		ProjectedCategoryBalances: s.ProjectedCategoryBalances,
		LastCalculated:            s.LastCalculated,
	}
}

// SnapshotsFromDomain converts domain snapshots to responses.
func SnapshotsFromDomain(snapshots []*domain.MonthlyBalance) []*SnapshotResponse {
	result := make([]*SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		result[i] = SnapshotFromDomain(s)
	}
	return result
}

// BulkResultResponse reports a bulk mutation outcome.
type BulkResultResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Errors  []string `json:"errors,omitempty"`
}

// BulkResultFromUseCase converts a bulk result to a response.
func BulkResultFromUseCase(r usecase.BulkResult) BulkResultResponse {
	return BulkResultResponse{
		Success: r.Success,
		Count:   r.Count,
		Errors:  r.Errors,
	}
}

// ApplyTemplateResponse reports a budget-template application.
type ApplyTemplateResponse struct {
	Allocated        decimal.Decimal `json:"allocated"`
	TransfersCreated int             `json:"transfers_created"`
	Errors           []string        `json:"errors,omitempty"`
}

// ApplyTemplateFromUseCase converts a template result to a response.
func ApplyTemplateFromUseCase(r *usecase.ApplyTemplateResult) ApplyTemplateResponse {
	errs := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		errs = append(errs, err.Error())
	}
	return ApplyTemplateResponse{
		Allocated:        r.Allocated,
		TransfersCreated: r.TransfersCreated,
		Errors:           errs,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
