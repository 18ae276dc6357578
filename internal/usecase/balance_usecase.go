package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
)

// EntityType selects whether a balance query targets an account or a
// category. Accounts book by Date, categories by ValueDate.
type EntityType string

const (
	EntityAccount  EntityType = "account"
	EntityCategory EntityType = "category"
)

// RunningBalanceEntry is one day in a running-balance series. Projected is
// the real balance plus the cumulative planned amounts up to that day; the
// real accumulator is never mutated by the projection overlay.
type RunningBalanceEntry struct {
	Date      time.Time
	Balance   decimal.Decimal
	Projected decimal.Decimal
}

// monthBucket caches one month of transactions in both booking orders.
type monthBucket struct {
	fetchedAt   time.Time
	byDate      []*domain.Transaction
	byValueDate []*domain.Transaction
}

// BalanceUseCase answers balance queries in three flavors (actual-to-date,
// projected, running series), maintains monthly snapshots, and recomputes
// the cached running balance on transaction records. A short-TTL per-month
// transaction index avoids repeated full scans; two coalescing queues
// absorb write bursts.
type BalanceUseCase struct {
	txRepo       TransactionRepository
	accountRepo  AccountRepository
	categoryRepo CategoryRepository
	snapshotRepo SnapshotRepository
	planning     *PlanningUseCase
	logger       zerolog.Logger
	metrics      *metrics.Metrics

	mu         sync.Mutex
	monthIndex map[string]*monthBucket

	runningQueue *Queue
	monthlyQueue *Queue
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txRepo TransactionRepository,
	accountRepo AccountRepository,
	categoryRepo CategoryRepository,
	snapshotRepo SnapshotRepository,
	planning *PlanningUseCase,
	logger zerolog.Logger,
) *BalanceUseCase {
	uc := &BalanceUseCase{
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		snapshotRepo: snapshotRepo,
		planning:     planning,
		logger:       logger,
		monthIndex:   make(map[string]*monthBucket),
	}

	uc.runningQueue = NewQueue(RunningBalanceDebounce, uc.handleRunningRecalc)
	uc.monthlyQueue = NewQueue(MonthlyBalanceDebounce, uc.handleMonthlyRecalc)

	return uc
}

// SetMetrics attaches Prometheus instruments. Optional; call before serving
// traffic. A nil receiver field leaves recalculations unmetered.
func (uc *BalanceUseCase) SetMetrics(m *metrics.Metrics) {
	uc.metrics = m
}

// Close stops the recompute queues.
func (uc *BalanceUseCase) Close() {
	uc.runningQueue.Stop()
	uc.monthlyQueue.Stop()
}

// GetTodayBalance returns the actual balance of the entity as of asOf:
// previous month's snapshot plus the in-month partial sum from the cached
// bucket. Snapshot misses fall back to full summation. Absent entities and
// empty transaction sets yield zero, never an error.
func (uc *BalanceUseCase) GetTodayBalance(ctx context.Context, entityType EntityType, id string, asOf time.Time) (decimal.Decimal, error) {
	month := domain.MonthOf(asOf)

	prev, err := uc.snapshotRepo.Get(ctx, month.Prev())
	if err == nil && prev.Valid() {
		bucket, err := uc.monthTransactions(ctx, month)
		if err != nil {
			return decimal.Zero, err
		}
		base := zeroFilled(actualMap(prev, entityType), id)
		return base.Add(bucket.sumUpTo(entityType, id, asOf)), nil
	}

	uc.logger.Debug().Str("month", month.Prev().Key()).Msg("snapshot miss, summing from scratch")

	switch entityType {
	case EntityCategory:
		return uc.txRepo.SumCategoryUpTo(ctx, id, asOf)
	default:
		return uc.txRepo.SumAccountUpTo(ctx, id, asOf)
	}
}

// GetProjectedBalance returns the projected balance from the month's
// snapshot, falling back to GetTodayBalance when no projection exists.
func (uc *BalanceUseCase) GetProjectedBalance(ctx context.Context, entityType EntityType, id string, asOf time.Time) (decimal.Decimal, error) {
	snap, err := uc.snapshotRepo.Get(ctx, domain.MonthOf(asOf))
	if err == nil && snap.Valid() {
		if v, ok := projectedMap(snap, entityType)[id]; ok {
			return v, nil
		}
	}

	return uc.GetTodayBalance(ctx, entityType, id, asOf)
}

// GetRunningBalances produces one entry per calendar day in [start, end].
// The starting balance is the entity balance as of the day before start.
// With projection enabled, same-day planned amounts accumulate into a
// parallel projected figure overlaid on the real running total.
func (uc *BalanceUseCase) GetRunningBalances(ctx context.Context, entityType EntityType, id string, start, end time.Time, includeProjection bool) ([]RunningBalanceEntry, error) {
	if err := domain.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	run, err := uc.GetTodayBalance(ctx, entityType, id, start.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	daySums, err := uc.daySumsInRange(ctx, entityType, id, start, end)
	if err != nil {
		return nil, err
	}

	var planned map[string]decimal.Decimal
	if includeProjection {
		planned, err = uc.planning.PlannedAmountsByDay(ctx, entityType, id, start, end)
		if err != nil {
			return nil, err
		}
	}

	var entries []RunningBalanceEntry
	overlay := decimal.Zero

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		run = run.Add(daySums[key])

		entry := RunningBalanceEntry{Date: day, Balance: run}
		if includeProjection {
			overlay = overlay.Add(planned[key])
			entry.Projected = run.Add(overlay)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// CalculateBalanceForMonth recomputes actual and projected balances for the
// month. With id sets given, only those entities are recomputed into the
// existing snapshot; otherwise all accounts and categories are. Projections
// derive from the previous month's snapshot (zero-filled if absent):
//
//	projected(N) = projected(N-1) + (actual(N) - actual(N-1)) + planned(N)
func (uc *BalanceUseCase) CalculateBalanceForMonth(ctx context.Context, month domain.Month, changedAccountIDs, changedCategoryIDs []string, existing *domain.MonthlyBalance) (*domain.MonthlyBalance, error) {
	if err := domain.ValidateMonth(month.Year, month.Month); err != nil {
		return nil, err
	}

	start := time.Now()

	snap := existing
	if !snap.Valid() {
		snap = domain.NewMonthlyBalance(month)
	}
	snap.Month = month

	prev, err := uc.snapshotRepo.Get(ctx, month.Prev())
	if err != nil || !prev.Valid() {
		prev = domain.NewMonthlyBalance(month.Prev())
	}

	bucket, err := uc.monthTransactions(ctx, month)
	if err != nil {
		return nil, err
	}

	accountIDs := changedAccountIDs
	if len(accountIDs) == 0 {
		accounts, err := uc.accountRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			accountIDs = append(accountIDs, a.ID)
		}
	}

	categoryIDs := changedCategoryIDs
	if len(categoryIDs) == 0 {
		categories, err := uc.categoryRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			categoryIDs = append(categoryIDs, c.ID)
		}
	}

	monthStart, monthEnd := month.Start(), month.End()

	for _, id := range accountIDs {
		monthSum := bucket.sumUpTo(EntityAccount, id, monthEnd)
		prevActual := zeroFilled(prev.AccountBalances, id)
		actual := prevActual.Add(monthSum)
		snap.AccountBalances[id] = actual

		planned, err := uc.planning.ForecastForAccount(ctx, id, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		prevProjected := zeroFilled(prev.ProjectedAccountBalances, id)
		snap.ProjectedAccountBalances[id] = prevProjected.Add(actual.Sub(prevActual)).Add(planned)
	}

	for _, id := range categoryIDs {
		monthSum := bucket.sumUpTo(EntityCategory, id, monthEnd)
		prevActual := zeroFilled(prev.CategoryBalances, id)
		actual := prevActual.Add(monthSum)
		snap.CategoryBalances[id] = actual

		planned, err := uc.planning.ForecastForCategory(ctx, id, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		prevProjected := zeroFilled(prev.ProjectedCategoryBalances, id)
		snap.ProjectedCategoryBalances[id] = prevProjected.Add(actual.Sub(prevActual)).Add(planned)
	}

	snap.LastCalculated = time.Now().UTC()

	if err := uc.snapshotRepo.Set(ctx, snap); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecalculationsTotal.WithLabelValues("monthly").Inc()
		uc.metrics.RecalculationDuration.WithLabelValues("monthly").Observe(time.Since(start).Seconds())
		uc.metrics.SnapshotsWritten.Inc()
	}

	return snap, nil
}

// RecalculateRunningBalancesForAccount recomputes the cached runningBalance
// field on every transaction of the account from fromDate (or its earliest
// transaction) forward. The seed is always re-derived by summing all prior
// transactions rather than trusting any stored running balance, then the
// walk proceeds in (date, createdAt) order rounding after every step.
func (uc *BalanceUseCase) RecalculateRunningBalancesForAccount(ctx context.Context, accountID string, fromDate *time.Time) error {
	all, err := uc.txRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	var txs []*domain.Transaction
	for _, t := range all {
		if t.AffectsAccount() {
			txs = append(txs, t)
		}
	}

	if len(txs) == 0 {
		return nil
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})

	from := txs[0].Date
	if fromDate != nil && fromDate.After(from) {
		from = *fromDate
	}

	seed := decimal.Zero
	updates := make([]RunningBalanceUpdate, 0, len(txs))

	for _, t := range txs {
		if t.Date.Before(from) {
			seed = seed.Add(t.Amount)
			continue
		}

		seed = seed.Add(t.Amount).Round(RunningBalanceScale)
		t.RunningBalance = seed
		updates = append(updates, RunningBalanceUpdate{TransactionID: t.ID, RunningBalance: seed})
	}

	if err := uc.BatchUpdateRunningBalances(ctx, updates); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RecalculationsTotal.WithLabelValues("running").Inc()
	}

	return nil
}

// BatchUpdateRunningBalances applies many running-balance writes as one
// logical unit to keep downstream update storms small.
func (uc *BalanceUseCase) BatchUpdateRunningBalances(ctx context.Context, updates []RunningBalanceUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return uc.txRepo.BatchUpdateRunningBalances(ctx, updates)
}

// TransactionChanged invalidates cached months in [change month, current
// month] and enqueues the debounced recompute queues.
func (uc *BalanceUseCase) TransactionChanged(accountID string, date time.Time) {
	now := time.Now().UTC()

	first := domain.MonthOf(date)
	last := domain.MonthOf(now)
	if last.Before(first) {
		last = first
	}

	const maxSpan = 120
	for m, i := first, 0; !last.Before(m) && i < maxSpan; m, i = m.Next(), i+1 {
		uc.InvalidateMonth(m)
		uc.monthlyQueue.Enqueue(m.Key())
	}

	if accountID != "" {
		uc.runningQueue.Enqueue(accountID)
	}
}

// FlushQueues synchronously drains both recompute queues, bypassing the
// debounce. Running balances are processed before monthly snapshots.
func (uc *BalanceUseCase) FlushQueues() {
	uc.runningQueue.FlushAll()
	uc.monthlyQueue.FlushAll()
}

// InvalidateMonth drops the cached transaction bucket for a month.
func (uc *BalanceUseCase) InvalidateMonth(month domain.Month) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.monthIndex, month.Key())
}

// InvalidateAll drops the whole month index.
func (uc *BalanceUseCase) InvalidateAll() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.monthIndex = make(map[string]*monthBucket)
}

func (uc *BalanceUseCase) handleRunningRecalc(accountID string) {
	if err := uc.RecalculateRunningBalancesForAccount(context.Background(), accountID, nil); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("running balance recalculation failed")
	}
}

func (uc *BalanceUseCase) handleMonthlyRecalc(key string) {
	var year, monthNum int
	if _, err := fmt.Sscanf(key, "%d-%d", &year, &monthNum); err != nil {
		uc.logger.Warn().Str("key", key).Msg("invalid month key in queue")
		return
	}

	month := domain.Month{Year: year, Month: time.Month(monthNum)}
	if _, err := uc.CalculateBalanceForMonth(context.Background(), month, nil, nil, nil); err != nil {
		uc.logger.Warn().Err(err).Str("month", key).Msg("monthly snapshot recalculation failed")
	}
}

func (uc *BalanceUseCase) monthTransactions(ctx context.Context, month domain.Month) (*monthBucket, error) {
	key := month.Key()

	uc.mu.Lock()
	if b, ok := uc.monthIndex[key]; ok && time.Since(b.fetchedAt) < MonthIndexTTL {
		uc.mu.Unlock()
		return b, nil
	}
	uc.mu.Unlock()

	byDate, err := uc.txRepo.ListByDateRange(ctx, month.Start(), month.End())
	if err != nil {
		return nil, err
	}

	byValueDate, err := uc.txRepo.ListByValueDateRange(ctx, month.Start(), month.End())
	if err != nil {
		return nil, err
	}

	b := &monthBucket{fetchedAt: time.Now(), byDate: byDate, byValueDate: byValueDate}

	if uc.metrics != nil {
		uc.metrics.MonthIndexRefreshes.Inc()
	}

	uc.mu.Lock()
	uc.monthIndex[key] = b
	uc.mu.Unlock()

	return b, nil
}

func (uc *BalanceUseCase) daySumsInRange(ctx context.Context, entityType EntityType, id string, start, end time.Time) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)

	for m := domain.MonthOf(start); !domain.MonthOf(end).Before(m); m = m.Next() {
		bucket, err := uc.monthTransactions(ctx, m)
		if err != nil {
			return nil, err
		}

		for _, t := range bucket.entityTransactions(entityType, id) {
			day := bookingDate(t, entityType)
			if day.Before(start) || day.After(end) {
				continue
			}
			key := day.Format("2006-01-02")
			sums[key] = sums[key].Add(t.Amount)
		}
	}

	return sums, nil
}

// sumUpTo sums bucket transactions for the entity with booking date <= asOf.
func (b *monthBucket) sumUpTo(entityType EntityType, id string, asOf time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range b.entityTransactions(entityType, id) {
		if !bookingDate(t, entityType).After(asOf) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

func (b *monthBucket) entityTransactions(entityType EntityType, id string) []*domain.Transaction {
	var out []*domain.Transaction

	switch entityType {
	case EntityCategory:
		for _, t := range b.byValueDate {
			if t.CategoryID == id && t.AffectsCategory() {
				out = append(out, t)
			}
		}
	default:
		for _, t := range b.byDate {
			if t.AccountID == id && t.AffectsAccount() {
				out = append(out, t)
			}
		}
	}

	return out
}

// bookingDate returns the date a transaction books under for the entity
// type: accounts use Date, categories use ValueDate.
func bookingDate(t *domain.Transaction, entityType EntityType) time.Time {
	if entityType == EntityCategory {
		return t.ValueDate
	}
	return t.Date
}

func actualMap(s *domain.MonthlyBalance, entityType EntityType) map[string]decimal.Decimal {
	if entityType == EntityCategory {
		return s.CategoryBalances
	}
	return s.AccountBalances
}

func projectedMap(s *domain.MonthlyBalance, entityType EntityType) map[string]decimal.Decimal {
	if entityType == EntityCategory {
		return s.ProjectedCategoryBalances
	}
	return s.ProjectedAccountBalances
}

func zeroFilled(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}
