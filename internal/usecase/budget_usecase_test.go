package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
	"github.com/iho/gobudget/internal/usecase/mocks"
)

type stubWriter struct {
	transfers   []usecase.CategoryTransferInput
	deleted     [][]string
	transferErr error
}

func (s *stubWriter) AddCategoryTransfer(ctx context.Context, input usecase.CategoryTransferInput) (*domain.Transaction, error) {
	if s.transferErr != nil {
		return nil, s.transferErr
	}
	s.transfers = append(s.transfers, input)
	return &domain.Transaction{ID: "t-x", Type: domain.TransactionTypeCategoryTransfer, Amount: input.Amount.Neg()}, nil
}

func (s *stubWriter) BulkDeleteTransactions(ctx context.Context, ids []string) usecase.BulkResult {
	s.deleted = append(s.deleted, ids)
	return usecase.BulkResult{Success: true, Count: len(ids)}
}

type budgetFixture struct {
	txRepo       *mocks.MockTransactionRepository
	categoryRepo *mocks.MockCategoryRepository
	snapshotRepo *mocks.MockSnapshotRepository
	planningRepo *mocks.MockPlanningRepository
	accountRepo  *mocks.MockAccountRepository
	balance      *usecase.BalanceUseCase
	writer       *stubWriter
	cache        usecase.Cache
	uc           *usecase.BudgetUseCase
}

func newBudgetFixture(cache usecase.Cache) *budgetFixture {
	f := &budgetFixture{
		txRepo:       mocks.NewMockTransactionRepository(),
		categoryRepo: mocks.NewMockCategoryRepository(),
		snapshotRepo: mocks.NewMockSnapshotRepository(),
		planningRepo: mocks.NewMockPlanningRepository(),
		accountRepo:  mocks.NewMockAccountRepository(),
		writer:       &stubWriter{},
		cache:        cache,
	}

	planning := usecase.NewPlanningUseCase(f.planningRepo, mocks.NewMockIDGenerator(), zerolog.Nop())
	f.balance = usecase.NewBalanceUseCase(f.txRepo, f.accountRepo, f.categoryRepo, f.snapshotRepo, planning, zerolog.Nop())
	f.uc = usecase.NewBudgetUseCase(f.txRepo, f.categoryRepo, f.snapshotRepo, f.balance, planning, f.writer, cache, zerolog.Nop())

	return f
}

func TestGetSingleCategoryMonthlyBudgetData_ExpenseCarriesSaldo(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-groceries", Name: "Groceries", Active: true})

	mar := domain.Month{Year: 2024, Month: time.March}

	prev := domain.NewMonthlyBalance(mar.Prev())
	prev.ProjectedCategoryBalances["cat-groceries"] = decimal.NewFromInt(20)
	prev.LastCalculated = time.Now()
	require.NoError(t, f.snapshotRepo.Set(ctx, prev))

	// Allocation into the envelope.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-alloc", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-groceries", ToCategoryID: "cat-af",
		Amount: decimal.NewFromInt(100),
		Date:   day(2024, time.March, 1), ValueDate: day(2024, time.March, 1),
	})
	// Real spending.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-spend", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		CategoryID: "cat-groceries", Amount: decimal.NewFromInt(-80),
		Date: day(2024, time.March, 12), ValueDate: day(2024, time.March, 12),
	})
	// Upcoming planned spending.
	f.planningRepo.Create(ctx, &domain.PlanningTransaction{
		ID: "p-1", Type: domain.TransactionTypeExpense, CategoryID: "cat-groceries",
		Amount:     decimal.NewFromInt(-25),
		StartDate:  day(2024, time.March, 25),
		Recurrence: domain.RecurrenceOnce,
		Active:     true,
	})

	data, err := f.uc.GetSingleCategoryMonthlyBudgetData(ctx, "cat-groceries", mar)
	require.NoError(t, err)

	assert.True(t, data.Budgeted.Equal(decimal.NewFromInt(100)), "budgeted = %s", data.Budgeted)
	assert.True(t, data.Spent.Equal(decimal.NewFromInt(-80)), "spent = %s", data.Spent)
	assert.True(t, data.Forecast.Equal(decimal.NewFromInt(-25)), "forecast = %s", data.Forecast)

	// saldo = carried 20 + 100 - 80 - 25
	assert.True(t, data.Saldo.Equal(decimal.NewFromInt(15)), "saldo = %s", data.Saldo)
}

func TestGetSingleCategoryMonthlyBudgetData_IncomeResetsMonthly(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-salary", Name: "Salary", IsIncomeCategory: true, Active: true})

	mar := domain.Month{Year: 2024, Month: time.March}

	// A carried balance that must NOT show up in the saldo.
	prev := domain.NewMonthlyBalance(mar.Prev())
	prev.ProjectedCategoryBalances["cat-salary"] = decimal.NewFromInt(5000)
	prev.LastCalculated = time.Now()
	require.NoError(t, f.snapshotRepo.Set(ctx, prev))

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-pay", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		CategoryID: "cat-salary", Amount: decimal.NewFromInt(2500),
		Date: day(2024, time.March, 1), ValueDate: day(2024, time.March, 1),
	})
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-mirror-out", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-salary", ToCategoryID: "cat-af",
		Amount: decimal.NewFromInt(-2500),
		Date:   day(2024, time.March, 1), ValueDate: day(2024, time.March, 1),
	})

	data, err := f.uc.GetSingleCategoryMonthlyBudgetData(ctx, "cat-salary", mar)
	require.NoError(t, err)

	// 2500 income + (-2500) mirror, no carry-over.
	assert.True(t, data.Saldo.IsZero(), "saldo = %s, want 0", data.Saldo)
}

func TestGetAggregatedMonthlyBudgetData_RecursesActiveChildren(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-home", Name: "Home", Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-rent", Name: "Rent", ParentID: "cat-home", Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-old", Name: "Old", ParentID: "cat-home", Active: false})

	mar := domain.Month{Year: 2024, Month: time.March}

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-rent", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		CategoryID: "cat-rent", Amount: decimal.NewFromInt(-900),
		Date: day(2024, time.March, 1), ValueDate: day(2024, time.March, 1),
	})
	// Spending in the inactive child must not aggregate.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-old", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		CategoryID: "cat-old", Amount: decimal.NewFromInt(-111),
		Date: day(2024, time.March, 2), ValueDate: day(2024, time.March, 2),
	})

	data, err := f.uc.GetAggregatedMonthlyBudgetData(ctx, "cat-home", mar)
	require.NoError(t, err)
	assert.True(t, data.Spent.Equal(decimal.NewFromInt(-900)), "spent = %s, want -900", data.Spent)
}

func TestGetAggregatedMonthlyBudgetData_UnknownCategoryIsZero(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()

	data, err := f.uc.GetAggregatedMonthlyBudgetData(context.Background(), "cat-nope", domain.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	assert.True(t, data.Budgeted.IsZero() && data.Spent.IsZero() && data.Forecast.IsZero() && data.Saldo.IsZero())
}

func TestGetMonthlySummary_Memoizes(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewGomockCache(ctrl)

	f := newBudgetFixture(cache)
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-af", Name: "Available Funds", IsAvailableFunds: true, Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-groceries", Name: "Groceries", Active: true})

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-1", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		CategoryID: "cat-groceries", Amount: decimal.NewFromInt(-60),
		Date: day(2024, time.March, 5), ValueDate: day(2024, time.March, 5),
	})
	// Available Funds movement must stay out of the summary.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-af", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-af", ToCategoryID: "cat-groceries", Amount: decimal.NewFromInt(-60),
		Date: day(2024, time.March, 5), ValueDate: day(2024, time.March, 5),
	})

	mar := domain.Month{Year: 2024, Month: time.March}
	key := "budget:summary:2024-03:expense"

	var stored []byte
	cache.EXPECT().Get(gomock.Any(), key).Return(nil, errors.New("miss"))
	cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), usecase.SummaryCacheTTL).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		})

	first, err := f.uc.GetMonthlySummary(ctx, mar, false)
	require.NoError(t, err)
	assert.True(t, first.Spent.Equal(decimal.NewFromInt(-60)), "spent = %s", first.Spent)

	cache.EXPECT().Get(gomock.Any(), key).DoAndReturn(func(_ context.Context, _ string) ([]byte, error) {
		return stored, nil
	})

	second, err := f.uc.GetMonthlySummary(ctx, mar, false)
	require.NoError(t, err)
	assert.True(t, second.Spent.Equal(first.Spent))
	assert.True(t, second.Saldo.Equal(first.Saldo))
}

func TestResetMonthBudget_PreservesIncomeTransfers(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-af", Name: "Available Funds", IsAvailableFunds: true, Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-salary", Name: "Salary", IsIncomeCategory: true, Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-groceries", Name: "Groceries", Active: true})

	mar := day(2024, time.March, 1)

	// Expense allocation pair: must be deleted.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-a1", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-af", ToCategoryID: "cat-groceries", CounterTransactionID: "t-a2",
		Amount: decimal.NewFromInt(-300), Date: mar, ValueDate: mar,
	})
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-a2", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-groceries", ToCategoryID: "cat-af", CounterTransactionID: "t-a1",
		Amount: decimal.NewFromInt(300), Date: mar, ValueDate: mar,
	})
	// Income mirror pair: must survive.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-i1", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-salary", ToCategoryID: "cat-af", CounterTransactionID: "t-i2",
		Amount: decimal.NewFromInt(-2500), Date: mar, ValueDate: mar,
	})
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-i2", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-af", ToCategoryID: "cat-salary", CounterTransactionID: "t-i1",
		Amount: decimal.NewFromInt(2500), Date: mar, ValueDate: mar,
	})

	result, err := f.uc.ResetMonthBudget(ctx, domain.MonthOf(mar))
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, f.writer.deleted, 1)
	assert.ElementsMatch(t, []string{"t-a1", "t-a2"}, f.writer.deleted[0])
}

func TestApplyBudgetTemplate_TwoPassAllocation(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-af", Name: "Available Funds", IsAvailableFunds: true, Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-rent", Name: "Rent", Active: true,
		MonthlyAmount: decimal.NewFromInt(400), SortOrder: 1,
	})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-groceries", Name: "Groceries", Active: true,
		MonthlyAmount: decimal.NewFromInt(300), Priority: 1, SortOrder: 2,
	})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-vacation", Name: "Vacation", Active: true,
		IsSavingsGoal: true, TargetAmount: decimal.NewFromInt(100),
		AllocationPercent: decimal.NewFromInt(50), Priority: 2, SortOrder: 3,
	})

	// Fund the reservoir.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-fund", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-af", ToCategoryID: "cat-salary",
		Amount: decimal.NewFromInt(1000),
		Date:   day(2024, time.March, 1), ValueDate: day(2024, time.March, 1),
	})

	result, err := f.uc.ApplyBudgetTemplate(ctx, domain.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	require.Len(t, f.writer.transfers, 3)

	// Pass one: rent (no priority, fixed amount). Pass two by priority:
	// groceries fixed 300, then vacation 50% of remaining 300 = 150 capped
	// to its 100 remaining-to-target.
	assert.Equal(t, "cat-rent", f.writer.transfers[0].ToCategoryID)
	assert.True(t, f.writer.transfers[0].Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "cat-groceries", f.writer.transfers[1].ToCategoryID)
	assert.True(t, f.writer.transfers[1].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "cat-vacation", f.writer.transfers[2].ToCategoryID)
	assert.True(t, f.writer.transfers[2].Amount.Equal(decimal.NewFromInt(100)), "vacation = %s", f.writer.transfers[2].Amount)

	assert.True(t, result.Allocated.Equal(decimal.NewFromInt(800)), "allocated = %s", result.Allocated)
	assert.Equal(t, 3, result.TransfersCreated)
}

func TestApplyBudgetTemplate_NeverOverAllocates(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-af", Name: "Available Funds", IsAvailableFunds: true, Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-rent", Name: "Rent", Active: true,
		MonthlyAmount: decimal.NewFromInt(400), SortOrder: 1,
	})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-groceries", Name: "Groceries", Active: true,
		MonthlyAmount: decimal.NewFromInt(300), SortOrder: 2,
	})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-fun", Name: "Fun", Active: true,
		MonthlyAmount: decimal.NewFromInt(200), Priority: 1, SortOrder: 3,
	})

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-fund", Type: domain.TransactionTypeCategoryTransfer,
		CategoryID: "cat-af", ToCategoryID: "cat-salary",
		Amount: decimal.NewFromInt(500),
		Date:   day(2024, time.March, 1), ValueDate: day(2024, time.March, 1),
	})

	result, err := f.uc.ApplyBudgetTemplate(ctx, domain.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)

	assert.True(t, result.Allocated.Equal(decimal.NewFromInt(500)), "allocated = %s, want exactly the available funds", result.Allocated)

	// Rent takes 400, groceries the remaining 100, fun nothing.
	require.Len(t, f.writer.transfers, 2)
	assert.True(t, f.writer.transfers[1].Amount.Equal(decimal.NewFromInt(100)))
}

func TestApplyBudgetTemplate_NoFundsShortCircuits(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()
	ctx := context.Background()

	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-af", Name: "Available Funds", IsAvailableFunds: true, Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{
		ID: "cat-rent", Name: "Rent", Active: true, MonthlyAmount: decimal.NewFromInt(400),
	})

	result, err := f.uc.ApplyBudgetTemplate(ctx, domain.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	assert.Empty(t, f.writer.transfers)
	assert.Equal(t, 0, result.TransfersCreated)
}

func TestApplyBudgetTemplate_MissingAvailableFunds(t *testing.T) {
	f := newBudgetFixture(mocks.NewMockCache())
	defer f.balance.Close()

	_, err := f.uc.ApplyBudgetTemplate(context.Background(), domain.Month{Year: 2024, Month: time.March})
	assert.ErrorIs(t, err, domain.ErrAvailableFundsMissing)
}
