package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

var errCacheMiss = errors.New("cache miss")

// MockTransactionRepository is a map-backed mock of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc                     func(ctx context.Context, t *domain.Transaction) error
	CreateTxFunc                   func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	GetByIDFunc                    func(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateFunc                     func(ctx context.Context, t *domain.Transaction) error
	DeleteFunc                     func(ctx context.Context, id string) error
	DeleteManyFunc                 func(ctx context.Context, ids []string) error
	ListByDateRangeFunc            func(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
	ListByValueDateRangeFunc       func(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
	SumAccountUpToFunc             func(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)
	SumCategoryUpToFunc            func(ctx context.Context, categoryID string, valueDate time.Time) (decimal.Decimal, error)
	BatchUpdateRunningBalancesFunc func(ctx context.Context, updates []usecase.RunningBalanceUpdate) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, t)
	}
	return m.Create(ctx, t)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	return m.Update(ctx, t)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockTransactionRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string) error {
	return m.Delete(ctx, id)
}

func (m *MockTransactionRepository) DeleteMany(ctx context.Context, ids []string) error {
	if m.DeleteManyFunc != nil {
		return m.DeleteManyFunc(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.transactions, id)
	}
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	if m.ListByDateRangeFunc != nil {
		return m.ListByDateRangeFunc(ctx, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.transactions {
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, t)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) ListByValueDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	if m.ListByValueDateRangeFunc != nil {
		return m.ListByValueDateRangeFunc(ctx, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.transactions {
		if !t.ValueDate.Before(start) && !t.ValueDate.After(end) {
			out = append(out, t)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) SumAccountUpTo(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	if m.SumAccountUpToFunc != nil {
		return m.SumAccountUpToFunc(ctx, accountID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.AccountID == accountID && t.AffectsAccount() && !t.Date.After(date) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) SumCategoryUpTo(ctx context.Context, categoryID string, valueDate time.Time) (decimal.Decimal, error) {
	if m.SumCategoryUpToFunc != nil {
		return m.SumCategoryUpToFunc(ctx, categoryID, valueDate)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.CategoryID == categoryID && !t.ValueDate.After(valueDate) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, accountID string, upTo time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transactions {
		if t.AccountID == accountID && !t.Date.After(upTo) {
			t.Reconciled = true
		}
	}
	return nil
}

func (m *MockTransactionRepository) BatchUpdateRunningBalances(ctx context.Context, updates []usecase.RunningBalanceUpdate) error {
	if m.BatchUpdateRunningBalancesFunc != nil {
		return m.BatchUpdateRunningBalancesFunc(ctx, updates)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if t, ok := m.transactions[u.TransactionID]; ok {
			t.RunningBalance = u.RunningBalance
		}
	}
	return nil
}

// All returns every stored transaction, sorted by date.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, t)
	}
	sortByDate(out)
	return out
}

func sortByDate(ts []*domain.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.Before(ts[j].Date)
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}

// MockAccountRepository is a map-backed mock of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetByIDFunc func(ctx context.Context, id string) (*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *MockAccountRepository) ListActive(ctx context.Context) ([]*domain.Account, error) {
	all, _ := m.List(ctx)
	var out []*domain.Account
	for _, a := range all {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

// MockCategoryRepository is a map-backed mock of CategoryRepository.
type MockCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
	groups     []*domain.CategoryGroup

	ListFunc func(ctx context.Context) ([]*domain.Category, error)
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]*domain.Category),
	}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *MockCategoryRepository) ListGroups(ctx context.Context) ([]*domain.CategoryGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups, nil
}

// AddGroup registers a category group.
func (m *MockCategoryRepository) AddGroup(g *domain.CategoryGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, g)
}

// MockPlanningRepository is a map-backed mock of PlanningRepository.
type MockPlanningRepository struct {
	mu    sync.RWMutex
	plans map[string]*domain.PlanningTransaction

	ListActiveFunc func(ctx context.Context) ([]*domain.PlanningTransaction, error)
}

func NewMockPlanningRepository() *MockPlanningRepository {
	return &MockPlanningRepository{
		plans: make(map[string]*domain.PlanningTransaction),
	}
}

func (m *MockPlanningRepository) Create(ctx context.Context, p *domain.PlanningTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = p
	return nil
}

func (m *MockPlanningRepository) GetByID(ctx context.Context, id string) (*domain.PlanningTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPlanningNotFound
}

func (m *MockPlanningRepository) Update(ctx context.Context, p *domain.PlanningTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		return domain.ErrPlanningNotFound
	}
	m.plans[p.ID] = p
	return nil
}

func (m *MockPlanningRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return domain.ErrPlanningNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *MockPlanningRepository) List(ctx context.Context) ([]*domain.PlanningTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.PlanningTransaction, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockPlanningRepository) ListActive(ctx context.Context) ([]*domain.PlanningTransaction, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	all, _ := m.List(ctx)
	var out []*domain.PlanningTransaction
	for _, p := range all {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockSnapshotRepository is a map-backed mock of SnapshotRepository.
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.MonthlyBalance

	GetFunc func(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error)
	SetFunc func(ctx context.Context, snapshot *domain.MonthlyBalance) error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make(map[string]*domain.MonthlyBalance),
	}
}

func (m *MockSnapshotRepository) Get(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.snapshots[month.Key()]; ok {
		return s, nil
	}
	return nil, domain.ErrSnapshotNotFound
}

func (m *MockSnapshotRepository) Set(ctx context.Context, snapshot *domain.MonthlyBalance) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Month.Key()] = snapshot
	return nil
}

func (m *MockSnapshotRepository) All(ctx context.Context) ([]*domain.MonthlyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.MonthlyBalance, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, month domain.Month) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, month.Key())
	return nil
}

// MockSyncRepository records queued sync events in memory.
type MockSyncRepository struct {
	mu     sync.RWMutex
	Events []*domain.SyncEvent

	CreateFunc func(ctx context.Context, event *domain.SyncEvent) error
}

func NewMockSyncRepository() *MockSyncRepository {
	return &MockSyncRepository{}
}

func (m *MockSyncRepository) Create(ctx context.Context, event *domain.SyncEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockSyncRepository) CreateTx(ctx context.Context, tx usecase.Transaction, event *domain.SyncEvent) error {
	return m.Create(ctx, event)
}

func (m *MockSyncRepository) GetUnsynced(ctx context.Context, limit int) ([]*domain.SyncEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SyncEvent
	for _, e := range m.Events {
		if !e.Synced {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockSyncRepository) MarkSynced(ctx context.Context, id string, syncedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Synced = true
			e.SyncedAt = &syncedAt
			return nil
		}
	}
	return nil
}

func (m *MockSyncRepository) DeleteSynced(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if e.Synced && e.SyncedAt != nil && e.SyncedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.Events = kept
	return nil
}

// MockTransaction is a no-op database transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions and keeps them for
// later inspection.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator returns deterministic sequential IDs.
type MockIDGenerator struct {
	mu sync.Mutex
	n  int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("id-%04d", m.n)
}

// MockCache is a map-backed mock of Cache. TTLs are ignored.
type MockCache struct {
	mu     sync.RWMutex
	values map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		values: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
