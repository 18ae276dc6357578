package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// BudgetWriter is the slice of the transaction service the budget engine
// mutates through. Implemented by TransactionUseCase.
type BudgetWriter interface {
	AddCategoryTransfer(ctx context.Context, input CategoryTransferInput) (*domain.Transaction, error)
	BulkDeleteTransactions(ctx context.Context, ids []string) BulkResult
}

// BudgetData holds the four budgeting figures for one category and month.
type BudgetData struct {
	Budgeted decimal.Decimal `json:"budgeted"`
	Forecast decimal.Decimal `json:"forecast"`
	Spent    decimal.Decimal `json:"spent"`
	Saldo    decimal.Decimal `json:"saldo"`
}

func (d BudgetData) add(other BudgetData) BudgetData {
	return BudgetData{
		Budgeted: d.Budgeted.Add(other.Budgeted),
		Forecast: d.Forecast.Add(other.Forecast),
		Spent:    d.Spent.Add(other.Spent),
		Saldo:    d.Saldo.Add(other.Saldo),
	}
}

// ApplyTemplateResult reports a budget-template allocation pass.
type ApplyTemplateResult struct {
	Allocated        decimal.Decimal
	TransfersCreated int
	Errors           []error
}

// BudgetUseCase derives per-category budget figures by composing balance
// engine outputs with planning occurrences.
type BudgetUseCase struct {
	txRepo       TransactionRepository
	categoryRepo CategoryRepository
	snapshotRepo SnapshotRepository
	balance      *BalanceUseCase
	planning     *PlanningUseCase
	writer       BudgetWriter
	cache        Cache
	logger       zerolog.Logger
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(
	txRepo TransactionRepository,
	categoryRepo CategoryRepository,
	snapshotRepo SnapshotRepository,
	balance *BalanceUseCase,
	planning *PlanningUseCase,
	writer BudgetWriter,
	cache Cache,
	logger zerolog.Logger,
) *BudgetUseCase {
	return &BudgetUseCase{
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		snapshotRepo: snapshotRepo,
		balance:      balance,
		planning:     planning,
		writer:       writer,
		cache:        cache,
		logger:       logger,
	}
}

// CategoryIndex loads the category tree into an adjacency index; built once
// per pass and threaded through instead of rescanning the category list.
func (uc *BudgetUseCase) CategoryIndex(ctx context.Context) (*domain.CategoryIndex, error) {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := uc.categoryRepo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	return domain.NewCategoryIndex(categories, groups), nil
}

// GetSingleCategoryMonthlyBudgetData returns the category's own figures for
// the month, without children. A missing category yields a zeroed result.
func (uc *BudgetUseCase) GetSingleCategoryMonthlyBudgetData(ctx context.Context, categoryID string, month domain.Month) (BudgetData, error) {
	idx, err := uc.CategoryIndex(ctx)
	if err != nil {
		return BudgetData{}, err
	}

	cat := idx.ByID(categoryID)
	if cat == nil {
		uc.logger.Debug().Str("category_id", categoryID).Msg("budget data requested for unknown category")
		return zeroBudgetData(), nil
	}

	return uc.singleCategoryData(ctx, cat, month)
}

// GetAggregatedMonthlyBudgetData returns the category's figures for the
// month including all active descendants.
func (uc *BudgetUseCase) GetAggregatedMonthlyBudgetData(ctx context.Context, categoryID string, month domain.Month) (BudgetData, error) {
	idx, err := uc.CategoryIndex(ctx)
	if err != nil {
		return BudgetData{}, err
	}

	cat := idx.ByID(categoryID)
	if cat == nil {
		uc.logger.Debug().Str("category_id", categoryID).Msg("budget data requested for unknown category")
		return zeroBudgetData(), nil
	}

	return uc.aggregatedData(ctx, idx, cat, month)
}

func (uc *BudgetUseCase) aggregatedData(ctx context.Context, idx *domain.CategoryIndex, cat *domain.Category, month domain.Month) (BudgetData, error) {
	data, err := uc.singleCategoryData(ctx, cat, month)
	if err != nil {
		return BudgetData{}, err
	}

	for _, child := range idx.ActiveChildrenOf(cat.ID) {
		childData, err := uc.aggregatedData(ctx, idx, child, month)
		if err != nil {
			return BudgetData{}, err
		}
		data = data.add(childData)
	}

	return data, nil
}

// singleCategoryData computes the four figures. Expense categories carry
// the previous month's projected saldo forward; income categories reset
// every month by design.
func (uc *BudgetUseCase) singleCategoryData(ctx context.Context, cat *domain.Category, month domain.Month) (BudgetData, error) {
	bucket, err := uc.balance.monthTransactions(ctx, month)
	if err != nil {
		return BudgetData{}, err
	}

	budgeted := decimal.Zero
	spent := decimal.Zero

	for _, t := range bucket.byValueDate {
		if t.CategoryID != cat.ID {
			continue
		}

		switch t.Type {
		case domain.TransactionTypeCategoryTransfer:
			budgeted = budgeted.Add(t.Amount)
		case domain.TransactionTypeExpense:
			if !cat.IsIncomeCategory {
				spent = spent.Add(t.Amount)
			}
		case domain.TransactionTypeIncome:
			spent = spent.Add(t.Amount)
		}
	}

	forecast, err := uc.planning.ForecastForCategory(ctx, cat.ID, month.Start(), month.End())
	if err != nil {
		return BudgetData{}, err
	}

	saldo := budgeted.Add(spent).Add(forecast)
	if !cat.IsIncomeCategory {
		prevSaldo := decimal.Zero
		if prev, err := uc.snapshotRepo.Get(ctx, month.Prev()); err == nil && prev.Valid() {
			prevSaldo = zeroFilled(prev.ProjectedCategoryBalances, cat.ID)
		}
		saldo = prevSaldo.Add(saldo)
	}

	return BudgetData{Budgeted: budgeted, Forecast: forecast, Spent: spent, Saldo: saldo}, nil
}

// GetMonthlySummary sums aggregated figures over all active root categories
// of the given type, excluding Available Funds. Results are memoized with a
// short TTL keyed by month and type.
func (uc *BudgetUseCase) GetMonthlySummary(ctx context.Context, month domain.Month, incomeCategories bool) (BudgetData, error) {
	kind := "expense"
	if incomeCategories {
		kind = "income"
	}
	cacheKey := fmt.Sprintf("budget:summary:%s:%s", month.Key(), kind)

	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, cacheKey); err == nil && len(raw) > 0 {
			var cached BudgetData
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	idx, err := uc.CategoryIndex(ctx)
	if err != nil {
		return BudgetData{}, err
	}

	summary := zeroBudgetData()
	for _, root := range idx.Roots() {
		if root.IsAvailableFunds || root.IsIncomeCategory != incomeCategories {
			continue
		}

		data, err := uc.aggregatedData(ctx, idx, root, month)
		if err != nil {
			return BudgetData{}, err
		}
		summary = summary.add(data)
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, raw, SummaryCacheTTL); err != nil {
				uc.logger.Debug().Err(err).Str("key", cacheKey).Msg("summary cache write failed")
			}
		}
	}

	return summary, nil
}

// ResetMonthBudget bulk-deletes all category-transfer pairs touching
// expense categories within the month. Income-category transfers to
// Available Funds survive.
func (uc *BudgetUseCase) ResetMonthBudget(ctx context.Context, month domain.Month) (BulkResult, error) {
	idx, err := uc.CategoryIndex(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	bucket, err := uc.balance.monthTransactions(ctx, month)
	if err != nil {
		return BulkResult{}, err
	}

	toDelete := make(map[string]struct{})
	for _, t := range bucket.byValueDate {
		if t.Type != domain.TransactionTypeCategoryTransfer {
			continue
		}

		src := idx.ByID(t.CategoryID)
		dst := idx.ByID(t.ToCategoryID)
		if (src != nil && src.IsIncomeCategory) || (dst != nil && dst.IsIncomeCategory) {
			continue
		}

		toDelete[t.ID] = struct{}{}
		if t.CounterTransactionID != "" {
			toDelete[t.CounterTransactionID] = struct{}{}
		}
	}

	if len(toDelete) == 0 {
		return BulkResult{}, nil
	}

	ids := make([]string, 0, len(toDelete))
	for id := range toDelete {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return uc.writer.BulkDeleteTransactions(ctx, ids), nil
}

// ApplyBudgetTemplate allocates the current Available-Funds balance to
// expense categories in two passes: first categories without an explicit
// priority take their fixed monthly amounts, then the rest are processed in
// ascending priority order taking a fixed amount or a percentage of the
// remaining funds, capped by any savings-goal remaining-to-target amount.
// Processing stops once funds reach zero.
func (uc *BudgetUseCase) ApplyBudgetTemplate(ctx context.Context, month domain.Month) (*ApplyTemplateResult, error) {
	idx, err := uc.CategoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	af, err := idx.AvailableFunds()
	if err != nil {
		return nil, err
	}

	funds, err := uc.balance.GetTodayBalance(ctx, EntityCategory, af.ID, month.End())
	if err != nil {
		return nil, err
	}

	result := &ApplyTemplateResult{Allocated: decimal.Zero}
	if funds.LessThanOrEqual(decimal.Zero) {
		return result, nil
	}

	var fixed, prioritized []*domain.Category
	for _, c := range allocationCandidates(idx) {
		if c.Priority == 0 {
			if c.MonthlyAmount.GreaterThan(decimal.Zero) {
				fixed = append(fixed, c)
			}
			continue
		}
		prioritized = append(prioritized, c)
	}

	sortForAllocation(idx, fixed)
	sort.SliceStable(prioritized, func(i, j int) bool {
		if prioritized[i].Priority != prioritized[j].Priority {
			return prioritized[i].Priority < prioritized[j].Priority
		}
		gi, gj := idx.GroupSortOrder(prioritized[i]), idx.GroupSortOrder(prioritized[j])
		if gi != gj {
			return gi < gj
		}
		return prioritized[i].SortOrder < prioritized[j].SortOrder
	})

	remaining := funds

	allocate := func(cat *domain.Category, amount decimal.Decimal) {
		amount = uc.capToSavingsGoal(ctx, cat, amount, month)
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return
		}

		_, err := uc.writer.AddCategoryTransfer(ctx, CategoryTransferInput{
			FromCategoryID: af.ID,
			ToCategoryID:   cat.ID,
			Amount:         amount,
			Date:           month.Start(),
			Note:           "budget template",
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("allocate %s: %w", cat.ID, err))
			return
		}

		remaining = remaining.Sub(amount)
		result.Allocated = result.Allocated.Add(amount)
		result.TransfersCreated++
	}

	for _, cat := range fixed {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		allocate(cat, cat.MonthlyAmount)
	}

	for _, cat := range prioritized {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		amount := cat.MonthlyAmount
		if amount.LessThanOrEqual(decimal.Zero) && cat.AllocationPercent.GreaterThan(decimal.Zero) {
			amount = remaining.Mul(cat.AllocationPercent).Div(decimal.NewFromInt(100)).Round(RunningBalanceScale)
		}
		allocate(cat, amount)
	}

	return result, nil
}

func (uc *BudgetUseCase) capToSavingsGoal(ctx context.Context, cat *domain.Category, amount decimal.Decimal, month domain.Month) decimal.Decimal {
	if !cat.IsSavingsGoal || cat.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return amount
	}

	current, err := uc.balance.GetTodayBalance(ctx, EntityCategory, cat.ID, month.End())
	if err != nil {
		uc.logger.Debug().Err(err).Str("category_id", cat.ID).Msg("savings goal balance lookup failed")
		return amount
	}

	toTarget := cat.TargetAmount.Sub(current)
	if toTarget.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if amount.GreaterThan(toTarget) {
		return toTarget
	}
	return amount
}

func allocationCandidates(idx *domain.CategoryIndex) []*domain.Category {
	var out []*domain.Category

	var walk func(cats []*domain.Category)
	walk = func(cats []*domain.Category) {
		for _, c := range cats {
			if !c.IsIncomeCategory && !c.IsAvailableFunds {
				if c.MonthlyAmount.GreaterThan(decimal.Zero) || c.AllocationPercent.GreaterThan(decimal.Zero) {
					out = append(out, c)
				}
			}
			walk(idx.ActiveChildrenOf(c.ID))
		}
	}
	walk(idx.Roots())

	return out
}

func sortForAllocation(idx *domain.CategoryIndex, cats []*domain.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		gi, gj := idx.GroupSortOrder(cats[i]), idx.GroupSortOrder(cats[j])
		if gi != gj {
			return gi < gj
		}
		return cats[i].SortOrder < cats[j].SortOrder
	})
}

func zeroBudgetData() BudgetData {
	return BudgetData{
		Budgeted: decimal.Zero,
		Forecast: decimal.Zero,
		Spent:    decimal.Zero,
		Saldo:    decimal.Zero,
	}
}
