package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgxFrom(tx usecase.Transaction) dbtx {
	return tx.(*Tx).PgxTx()
}

const transactionColumns = `
	id, type, account_id, category_id, to_category_id, transfer_to_account_id,
	counter_transaction_id, amount, date, value_date, note, running_balance,
	reconciled, created_at, updated_at
`

// TransactionRepository implements transaction persistence on PostgreSQL.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool, retrier *Retrier) *TransactionRepository {
	return &TransactionRepository{pool: pool, retrier: retrier}
}

// Create inserts a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.create(ctx, r.pool, t)
}

// CreateTx inserts a new transaction within a database transaction.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	return r.create(ctx, pgxFrom(tx), t)
}

func (r *TransactionRepository) create(ctx context.Context, db dbtx, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := db.Exec(ctx, query,
		t.ID,
		t.Type,
		t.AccountID,
		t.CategoryID,
		t.ToCategoryID,
		t.TransferToAccountID,
		t.CounterTransactionID,
		t.Amount,
		t.Date,
		t.ValueDate,
		t.Note,
		t.RunningBalance,
		t.Reconciled,
		t.CreatedAt,
		t.UpdatedAt,
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}

	return t, err
}

// Update rewrites the mutable fields of a transaction.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	return r.update(ctx, r.pool, t)
}

// UpdateTx rewrites a transaction within a database transaction.
func (r *TransactionRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	return r.update(ctx, pgxFrom(tx), t)
}

func (r *TransactionRepository) update(ctx context.Context, db dbtx, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $2, account_id = $3, category_id = $4, to_category_id = $5,
		    transfer_to_account_id = $6, counter_transaction_id = $7, amount = $8,
		    date = $9, value_date = $10, note = $11, running_balance = $12,
		    reconciled = $13, updated_at = $14
		WHERE id = $1
	`

	tag, err := db.Exec(ctx, query,
		t.ID,
		t.Type,
		t.AccountID,
		t.CategoryID,
		t.ToCategoryID,
		t.TransferToAccountID,
		t.CounterTransactionID,
		t.Amount,
		t.Date,
		t.ValueDate,
		t.Note,
		t.RunningBalance,
		t.Reconciled,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, r.pool, id)
}

// DeleteTx removes a transaction within a database transaction.
func (r *TransactionRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string) error {
	return r.delete(ctx, pgxFrom(tx), id)
}

func (r *TransactionRepository) delete(ctx context.Context, db dbtx, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// DeleteMany removes a set of transactions in one statement.
func (r *TransactionRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, ids)
	return err
}

// ListByAccount retrieves all transactions of an account in booking order.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY date, created_at
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListByDateRange retrieves transactions with account booking date in [start, end].
func (r *TransactionRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE date >= $1 AND date <= $2
		ORDER BY date, created_at
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListByValueDateRange retrieves transactions with category booking date in [start, end].
func (r *TransactionRepository) ListByValueDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE value_date >= $1 AND value_date <= $2
		ORDER BY value_date, created_at
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumAccountUpTo sums all account-affecting amounts with date <= the given
// date. Category transfers never touch accounts.
func (r *TransactionRepository) SumAccountUpTo(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND date <= $2 AND type <> 'CATEGORYTRANSFER'
	`

	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, query, accountID, date).Scan(&sum)
	return sum, err
}

// SumCategoryUpTo sums all category amounts with value_date <= the given date.
func (r *TransactionRepository) SumCategoryUpTo(ctx context.Context, categoryID string, valueDate time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE category_id = $1 AND value_date <= $2
	`

	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, query, categoryID, valueDate).Scan(&sum)
	return sum, err
}

// MarkReconciled flags every transaction of the account up to the date.
func (r *TransactionRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, accountID string, upTo time.Time) error {
	query := `
		UPDATE transactions
		SET reconciled = TRUE
		WHERE account_id = $1 AND date <= $2 AND NOT reconciled
	`

	_, err := pgxFrom(tx).Exec(ctx, query, accountID, upTo)
	return err
}

// BatchUpdateRunningBalances writes cached running balances in one batched
// round trip, retried on transient failures.
func (r *TransactionRepository) BatchUpdateRunningBalances(ctx context.Context, updates []usecase.RunningBalanceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return r.retrier.Retry(ctx, func() error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(`UPDATE transactions SET running_balance = $2 WHERE id = $1`, u.TransactionID, u.RunningBalance)
		}

		results := r.pool.SendBatch(ctx, batch)
		defer results.Close() //nolint:errcheck

		for range updates {
			if _, err := results.Exec(); err != nil {
				return err
			}
		}

		return results.Close()
	})
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.Type,
		&t.AccountID,
		&t.CategoryID,
		&t.ToCategoryID,
		&t.TransferToAccountID,
		&t.CounterTransactionID,
		&t.Amount,
		&t.Date,
		&t.ValueDate,
		&t.Note,
		&t.RunningBalance,
		&t.Reconciled,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
