package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// SnapshotRepository stores monthly balance snapshots keyed by "YYYY-MM",
// with the four balance maps serialized as JSONB.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Get retrieves the snapshot for a month.
func (r *SnapshotRepository) Get(ctx context.Context, month domain.Month) (*domain.MonthlyBalance, error) {
	query := `
		SELECT month_key, account_balances, category_balances,
		       projected_account_balances, projected_category_balances, last_calculated
		FROM monthly_snapshots
		WHERE month_key = $1
	`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, month.Key()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}

	return s, err
}

// Set upserts the snapshot for its month.
func (r *SnapshotRepository) Set(ctx context.Context, snapshot *domain.MonthlyBalance) error {
	query := `
		INSERT INTO monthly_snapshots (
			month_key, account_balances, category_balances,
			projected_account_balances, projected_category_balances, last_calculated
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (month_key) DO UPDATE SET
			account_balances = EXCLUDED.account_balances,
			category_balances = EXCLUDED.category_balances,
			projected_account_balances = EXCLUDED.projected_account_balances,
			projected_category_balances = EXCLUDED.projected_category_balances,
			last_calculated = EXCLUDED.last_calculated
	`

	accounts, err := json.Marshal(snapshot.AccountBalances)
	if err != nil {
		return err
	}
	categories, err := json.Marshal(snapshot.CategoryBalances)
	if err != nil {
		return err
	}
	projAccounts, err := json.Marshal(snapshot.ProjectedAccountBalances)
	if err != nil {
		return err
	}
	projCategories, err := json.Marshal(snapshot.ProjectedCategoryBalances)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		snapshot.Month.Key(),
		accounts,
		categories,
		projAccounts,
		projCategories,
		snapshot.LastCalculated,
	)

	return err
}

// All retrieves every snapshot in chronological order.
func (r *SnapshotRepository) All(ctx context.Context) ([]*domain.MonthlyBalance, error) {
	query := `
		SELECT month_key, account_balances, category_balances,
		       projected_account_balances, projected_category_balances, last_calculated
		FROM monthly_snapshots
		ORDER BY month_key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.MonthlyBalance
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// Delete removes the snapshot for a month. Missing snapshots are not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, month domain.Month) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM monthly_snapshots WHERE month_key = $1`, month.Key())
	return err
}

func scanSnapshot(row pgx.Row) (*domain.MonthlyBalance, error) {
	var (
		key            string
		accounts       []byte
		categories     []byte
		projAccounts   []byte
		projCategories []byte
		lastCalculated time.Time
	)

	if err := row.Scan(&key, &accounts, &categories, &projAccounts, &projCategories, &lastCalculated); err != nil {
		return nil, err
	}

	month, err := parseMonthKey(key)
	if err != nil {
		return nil, err
	}

	s := &domain.MonthlyBalance{Month: month, LastCalculated: lastCalculated}
	for _, col := range []struct {
		raw []byte
		dst *map[string]decimal.Decimal
	}{
		{accounts, &s.AccountBalances},
		{categories, &s.CategoryBalances},
		{projAccounts, &s.ProjectedAccountBalances},
		{projCategories, &s.ProjectedCategoryBalances},
	} {
		*col.dst = make(map[string]decimal.Decimal)
		if len(col.raw) > 0 {
			if err := json.Unmarshal(col.raw, col.dst); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func parseMonthKey(key string) (domain.Month, error) {
	var year, month int
	if _, err := fmt.Sscanf(key, "%d-%d", &year, &month); err != nil {
		return domain.Month{}, fmt.Errorf("malformed month key %q: %w", key, err)
	}
	return domain.Month{Year: year, Month: time.Month(month)}, nil
}
