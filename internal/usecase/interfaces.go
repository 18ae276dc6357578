package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// RunningBalanceUpdate is a single cached running-balance write.
type RunningBalanceUpdate struct {
	TransactionID  string
	RunningBalance decimal.Decimal
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	CreateTx(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error
	UpdateTx(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Delete(ctx context.Context, id string) error
	DeleteTx(ctx context.Context, tx Transaction, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	// ListByDateRange returns transactions booked by account date within [start, end].
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
	// ListByValueDateRange returns transactions booked by category value date within [start, end].
	ListByValueDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
	SumAccountUpTo(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)
	SumCategoryUpTo(ctx context.Context, categoryID string, valueDate time.Time) (decimal.Decimal, error)
	MarkReconciled(ctx context.Context, tx Transaction, accountID string, upTo time.Time) error
	BatchUpdateRunningBalances(ctx context.Context, updates []RunningBalanceUpdate) error
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Account, error)
	ListActive(ctx context.Context) ([]*domain.Account, error)
}

// CategoryRepository defines data access for the category tree.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Category, error)
	ListGroups(ctx context.Context) ([]*domain.CategoryGroup, error)
}

// PlanningRepository defines data access for planning transactions.
type PlanningRepository interface {
	Create(ctx context.Context, p *domain.PlanningTransaction) error
	GetByID(ctx context.Context, id string) (*domain.PlanningTransaction, error)
	Update(ctx context.Context, p *domain.PlanningTransaction) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.PlanningTransaction, error)
	ListActive(ctx context.Context) ([]*domain.PlanningTransaction, error)
}

// SnapshotRepository persists monthly balance snapshots.
type SnapshotRepository interface {
	Get(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error)
	Set(ctx context.Context, snapshot *domain.MonthlyBalance) error
	All(ctx context.Context) ([]*domain.MonthlyBalance, error)
	Delete(ctx context.Context, month domain.Month) error
}

// SyncRepository queues mutations for best-effort backend synchronization.
type SyncRepository interface {
	Create(ctx context.Context, event *domain.SyncEvent) error
	CreateTx(ctx context.Context, tx Transaction, event *domain.SyncEvent) error
	GetUnsynced(ctx context.Context, limit int) ([]*domain.SyncEvent, error)
	MarkSynced(ctx context.Context, id string, syncedAt time.Time) error
	DeleteSynced(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles database transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for serializable values.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
