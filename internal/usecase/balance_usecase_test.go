package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/usecase"
	"github.com/iho/gobudget/internal/usecase/mocks"
)

type balanceFixture struct {
	txRepo       *mocks.MockTransactionRepository
	accountRepo  *mocks.MockAccountRepository
	categoryRepo *mocks.MockCategoryRepository
	snapshotRepo *mocks.MockSnapshotRepository
	planningRepo *mocks.MockPlanningRepository
	uc           *usecase.BalanceUseCase
}

func newBalanceFixture() *balanceFixture {
	f := &balanceFixture{
		txRepo:       mocks.NewMockTransactionRepository(),
		accountRepo:  mocks.NewMockAccountRepository(),
		categoryRepo: mocks.NewMockCategoryRepository(),
		snapshotRepo: mocks.NewMockSnapshotRepository(),
		planningRepo: mocks.NewMockPlanningRepository(),
	}

	planning := usecase.NewPlanningUseCase(f.planningRepo, mocks.NewMockIDGenerator(), zerolog.Nop())
	f.uc = usecase.NewBalanceUseCase(f.txRepo, f.accountRepo, f.categoryRepo, f.snapshotRepo, planning, zerolog.Nop())

	return f
}

func TestRecalculateRunningBalances_OrderAndExclusions(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of date order on purpose.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-expense", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		Amount: decimal.NewFromInt(-50), Date: day(2024, time.January, 10), ValueDate: day(2024, time.January, 10),
		CreatedAt: base.Add(2 * time.Hour),
	})
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-income", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(200), Date: day(2024, time.January, 5), ValueDate: day(2024, time.January, 5),
		CreatedAt: base.Add(time.Hour),
	})
	// Category transfers never touch account running balances.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-ct", Type: domain.TransactionTypeCategoryTransfer, AccountID: "acc-1",
		CategoryID: "cat-a", ToCategoryID: "cat-b",
		Amount: decimal.NewFromInt(-500), Date: day(2024, time.January, 7), ValueDate: day(2024, time.January, 7),
		CreatedAt: base.Add(90 * time.Minute),
	})

	if err := f.uc.RecalculateRunningBalancesForAccount(ctx, "acc-1", nil); err != nil {
		t.Fatalf("RecalculateRunningBalancesForAccount: %v", err)
	}

	income, _ := f.txRepo.GetByID(ctx, "t-income")
	if !income.RunningBalance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("income running balance = %s, want 200", income.RunningBalance)
	}

	expense, _ := f.txRepo.GetByID(ctx, "t-expense")
	if !expense.RunningBalance.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expense running balance = %s, want 150", expense.RunningBalance)
	}

	ct, _ := f.txRepo.GetByID(ctx, "t-ct")
	if !ct.RunningBalance.IsZero() {
		t.Errorf("category transfer got a running balance: %s", ct.RunningBalance)
	}
}

func TestRecalculateRunningBalances_SeedsFromPriorHistory(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	created := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-old", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(1000), Date: day(2023, time.December, 1), ValueDate: day(2023, time.December, 1),
		CreatedAt: created,
		// A stale cached value that must not be trusted as the seed.
		RunningBalance: decimal.NewFromInt(999999),
	})
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-new", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		Amount: decimal.NewFromInt(-100), Date: day(2024, time.January, 15), ValueDate: day(2024, time.January, 15),
		CreatedAt: created.Add(time.Hour),
	})

	from := day(2024, time.January, 1)
	if err := f.uc.RecalculateRunningBalancesForAccount(ctx, "acc-1", &from); err != nil {
		t.Fatalf("RecalculateRunningBalancesForAccount: %v", err)
	}

	got, _ := f.txRepo.GetByID(ctx, "t-new")
	if !got.RunningBalance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("running balance = %s, want 900 (seeded by summation, not the stale cache)", got.RunningBalance)
	}
}

func TestGetTodayBalance_SnapshotMissFallsBackToSummation(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-1", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(75), Date: day(2024, time.March, 2), ValueDate: day(2024, time.March, 2),
	})

	got, err := f.uc.GetTodayBalance(ctx, usecase.EntityAccount, "acc-1", day(2024, time.March, 31))
	if err != nil {
		t.Fatalf("GetTodayBalance: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(75)) {
		t.Errorf("balance = %s, want 75", got)
	}
}

func TestGetTodayBalance_SnapshotPlusPartialMonth(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	prev := domain.NewMonthlyBalance(domain.Month{Year: 2023, Month: time.December})
	prev.AccountBalances["acc-1"] = decimal.NewFromInt(100)
	prev.LastCalculated = time.Now()
	f.snapshotRepo.Set(ctx, prev)

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-jan", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(50), Date: day(2024, time.January, 5), ValueDate: day(2024, time.January, 5),
	})

	early, err := f.uc.GetTodayBalance(ctx, usecase.EntityAccount, "acc-1", day(2024, time.January, 3))
	if err != nil {
		t.Fatalf("GetTodayBalance: %v", err)
	}
	if !early.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance as of Jan 3 = %s, want 100 (snapshot only)", early)
	}

	later, err := f.uc.GetTodayBalance(ctx, usecase.EntityAccount, "acc-1", day(2024, time.January, 10))
	if err != nil {
		t.Fatalf("GetTodayBalance: %v", err)
	}
	if !later.Equal(decimal.NewFromInt(150)) {
		t.Errorf("balance as of Jan 10 = %s, want 150", later)
	}
}

func TestBalances_AccountsUseDateCategoriesUseValueDate(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	// Booked on the account in January, on the category in February.
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-split", Type: domain.TransactionTypeExpense, AccountID: "acc-1", CategoryID: "cat-1",
		Amount: decimal.NewFromInt(-80),
		Date:   day(2024, time.January, 31), ValueDate: day(2024, time.February, 1),
	})

	acct, err := f.uc.GetTodayBalance(ctx, usecase.EntityAccount, "acc-1", day(2024, time.January, 31))
	if err != nil {
		t.Fatalf("account balance: %v", err)
	}
	if !acct.Equal(decimal.NewFromInt(-80)) {
		t.Errorf("account balance in January = %s, want -80", acct)
	}

	catJan, err := f.uc.GetTodayBalance(ctx, usecase.EntityCategory, "cat-1", day(2024, time.January, 31))
	if err != nil {
		t.Fatalf("category balance: %v", err)
	}
	if !catJan.IsZero() {
		t.Errorf("category balance in January = %s, want 0 (value date is February)", catJan)
	}

	catFeb, err := f.uc.GetTodayBalance(ctx, usecase.EntityCategory, "cat-1", day(2024, time.February, 29))
	if err != nil {
		t.Fatalf("category balance: %v", err)
	}
	if !catFeb.Equal(decimal.NewFromInt(-80)) {
		t.Errorf("category balance in February = %s, want -80", catFeb)
	}
}

func TestCalculateBalanceForMonth_ProjectionRecursion(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	f.accountRepo.Create(ctx, &domain.Account{ID: "acc-1", Name: "Checking", Active: true})

	prev := domain.NewMonthlyBalance(domain.Month{Year: 2023, Month: time.December})
	prev.AccountBalances["acc-1"] = decimal.NewFromInt(100)
	prev.ProjectedAccountBalances["acc-1"] = decimal.NewFromInt(120)
	prev.LastCalculated = time.Now()
	f.snapshotRepo.Set(ctx, prev)

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-jan", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(50), Date: day(2024, time.January, 5), ValueDate: day(2024, time.January, 5),
	})

	f.planningRepo.Create(ctx, &domain.PlanningTransaction{
		ID: "p-1", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		Amount:     decimal.NewFromInt(-30),
		StartDate:  day(2024, time.January, 15),
		Recurrence: domain.RecurrenceMonthly, EndType: domain.RecurrenceEndNever, ExecutionDay: 15,
		Active: true,
	})

	jan := domain.Month{Year: 2024, Month: time.January}
	snap, err := f.uc.CalculateBalanceForMonth(ctx, jan, nil, nil, nil)
	if err != nil {
		t.Fatalf("CalculateBalanceForMonth: %v", err)
	}

	if got := snap.AccountBalances["acc-1"]; !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("actual = %s, want 150", got)
	}

	// projected(N) = projected(N-1) + (actual(N) - actual(N-1)) + planned(N)
	// = 120 + (150 - 100) + (-30) = 140
	if got := snap.ProjectedAccountBalances["acc-1"]; !got.Equal(decimal.NewFromInt(140)) {
		t.Errorf("projected = %s, want 140", got)
	}

	stored, err := f.snapshotRepo.Get(ctx, jan)
	if err != nil {
		t.Fatalf("snapshot not persisted: %v", err)
	}
	if !stored.Valid() {
		t.Error("persisted snapshot invalid")
	}
}

func TestCalculateBalanceForMonth_Idempotent(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	f.accountRepo.Create(ctx, &domain.Account{ID: "acc-1", Name: "Checking", Active: true})
	f.categoryRepo.Create(ctx, &domain.Category{ID: "cat-1", Name: "Groceries", Active: true})

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-1", Type: domain.TransactionTypeExpense, AccountID: "acc-1", CategoryID: "cat-1",
		Amount: decimal.NewFromInt(-40), Date: day(2024, time.June, 10), ValueDate: day(2024, time.June, 10),
	})

	jun := domain.Month{Year: 2024, Month: time.June}

	first, err := f.uc.CalculateBalanceForMonth(ctx, jun, nil, nil, nil)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	f.uc.InvalidateAll()

	second, err := f.uc.CalculateBalanceForMonth(ctx, jun, nil, nil, nil)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	for id, v := range first.AccountBalances {
		if !second.AccountBalances[id].Equal(v) {
			t.Errorf("account %s: %s then %s", id, v, second.AccountBalances[id])
		}
	}
	for id, v := range first.CategoryBalances {
		if !second.CategoryBalances[id].Equal(v) {
			t.Errorf("category %s: %s then %s", id, v, second.CategoryBalances[id])
		}
	}
}

func TestTransactionChanged_FlushRecomputesSnapshotAndRunningBalance(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	f.accountRepo.Create(ctx, &domain.Account{ID: "acc-1", Name: "Checking", Active: true})

	now := time.Now().UTC()
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-1", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(60), Date: now, ValueDate: now, CreatedAt: now,
	})

	f.uc.TransactionChanged("acc-1", now)
	f.uc.FlushQueues()

	snap, err := f.snapshotRepo.Get(ctx, domain.MonthOf(now))
	if err != nil {
		t.Fatalf("snapshot missing after flush: %v", err)
	}
	if got := snap.AccountBalances["acc-1"]; !got.Equal(decimal.NewFromInt(60)) {
		t.Errorf("snapshot actual = %s, want 60", got)
	}

	tx, _ := f.txRepo.GetByID(ctx, "t-1")
	if !tx.RunningBalance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("running balance = %s, want 60", tx.RunningBalance)
	}
}

func TestRecalculations_RecordMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := metrics.New()

	f := newBalanceFixture()
	defer f.uc.Close()
	f.uc.SetMetrics(m)
	ctx := context.Background()

	f.accountRepo.Create(ctx, &domain.Account{ID: "acc-1", Name: "Checking", Active: true})
	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-1", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(10), Date: day(2024, time.May, 2), ValueDate: day(2024, time.May, 2),
	})

	if _, err := f.uc.CalculateBalanceForMonth(ctx, domain.Month{Year: 2024, Month: time.May}, nil, nil, nil); err != nil {
		t.Fatalf("CalculateBalanceForMonth: %v", err)
	}
	if err := f.uc.RecalculateRunningBalancesForAccount(ctx, "acc-1", nil); err != nil {
		t.Fatalf("RecalculateRunningBalancesForAccount: %v", err)
	}

	if got := testutil.ToFloat64(m.SnapshotsWritten); got != 1 {
		t.Errorf("snapshots written = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RecalculationsTotal.WithLabelValues("monthly")); got != 1 {
		t.Errorf("monthly recalculations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RecalculationsTotal.WithLabelValues("running")); got != 1 {
		t.Errorf("running recalculations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.MonthIndexRefreshes); got != 1 {
		t.Errorf("month index refreshes = %v, want 1", got)
	}
}

func TestGetRunningBalances_ProjectionOverlay(t *testing.T) {
	f := newBalanceFixture()
	defer f.uc.Close()
	ctx := context.Background()

	f.txRepo.Create(ctx, &domain.Transaction{
		ID: "t-1", Type: domain.TransactionTypeIncome, AccountID: "acc-1",
		Amount: decimal.NewFromInt(100), Date: day(2024, time.April, 2), ValueDate: day(2024, time.April, 2),
	})

	f.planningRepo.Create(ctx, &domain.PlanningTransaction{
		ID: "p-1", Type: domain.TransactionTypeExpense, AccountID: "acc-1",
		Amount:     decimal.NewFromInt(-25),
		StartDate:  day(2024, time.April, 3),
		Recurrence: domain.RecurrenceOnce,
		Active:     true,
	})

	entries, err := f.uc.GetRunningBalances(ctx, usecase.EntityAccount, "acc-1", day(2024, time.April, 1), day(2024, time.April, 4), true)
	if err != nil {
		t.Fatalf("GetRunningBalances: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	// Real balances: 0, 100, 100, 100. Projection adds -25 from Apr 3 on.
	wantBalance := []int64{0, 100, 100, 100}
	wantProjected := []int64{0, 100, 75, 75}
	for i, e := range entries {
		if !e.Balance.Equal(decimal.NewFromInt(wantBalance[i])) {
			t.Errorf("day %d balance = %s, want %d", i, e.Balance, wantBalance[i])
		}
		if !e.Projected.Equal(decimal.NewFromInt(wantProjected[i])) {
			t.Errorf("day %d projected = %s, want %d", i, e.Projected, wantProjected[i])
		}
	}
}
