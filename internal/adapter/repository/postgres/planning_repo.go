package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobudget/internal/domain"
)

const planningColumns = `
	id, name, type, account_id, category_id, to_category_id, transfer_to_account_id,
	counter_planning_id, amount, recurrence, end_type, weekend_handling, start_date,
	end_date, max_occurrences, execution_day, active, created_at, updated_at
`

// PlanningRepository implements planning template persistence on PostgreSQL.
type PlanningRepository struct {
	pool *pgxpool.Pool
}

// NewPlanningRepository creates a new PlanningRepository.
func NewPlanningRepository(pool *pgxpool.Pool) *PlanningRepository {
	return &PlanningRepository{pool: pool}
}

// Create inserts a new planning transaction.
func (r *PlanningRepository) Create(ctx context.Context, p *domain.PlanningTransaction) error {
	query := `
		INSERT INTO planning_transactions (` + planningColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		p.AccountID,
		p.CategoryID,
		p.ToCategoryID,
		p.TransferToAccountID,
		p.CounterPlanningID,
		p.Amount,
		p.Recurrence,
		p.EndType,
		p.WeekendHandling,
		p.StartDate,
		p.EndDate,
		p.MaxOccurrences,
		p.ExecutionDay,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return err
}

// GetByID retrieves a planning transaction by ID.
func (r *PlanningRepository) GetByID(ctx context.Context, id string) (*domain.PlanningTransaction, error) {
	query := `SELECT ` + planningColumns + ` FROM planning_transactions WHERE id = $1`

	p, err := scanPlanning(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlanningNotFound
	}

	return p, err
}

// Update rewrites the mutable fields of a planning transaction.
func (r *PlanningRepository) Update(ctx context.Context, p *domain.PlanningTransaction) error {
	query := `
		UPDATE planning_transactions
		SET name = $2, type = $3, account_id = $4, category_id = $5, to_category_id = $6,
		    transfer_to_account_id = $7, counter_planning_id = $8, amount = $9,
		    recurrence = $10, end_type = $11, weekend_handling = $12, start_date = $13,
		    end_date = $14, max_occurrences = $15, execution_day = $16, active = $17,
		    updated_at = $18
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		p.AccountID,
		p.CategoryID,
		p.ToCategoryID,
		p.TransferToAccountID,
		p.CounterPlanningID,
		p.Amount,
		p.Recurrence,
		p.EndType,
		p.WeekendHandling,
		p.StartDate,
		p.EndDate,
		p.MaxOccurrences,
		p.ExecutionDay,
		p.Active,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlanningNotFound
	}

	return nil
}

// Delete removes a planning transaction.
func (r *PlanningRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM planning_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlanningNotFound
	}

	return nil
}

// List retrieves all planning transactions.
func (r *PlanningRepository) List(ctx context.Context) ([]*domain.PlanningTransaction, error) {
	query := `SELECT ` + planningColumns + ` FROM planning_transactions ORDER BY start_date, name`
	return r.list(ctx, query)
}

// ListActive retrieves all active planning transactions.
func (r *PlanningRepository) ListActive(ctx context.Context) ([]*domain.PlanningTransaction, error) {
	query := `SELECT ` + planningColumns + ` FROM planning_transactions WHERE active ORDER BY start_date, name`
	return r.list(ctx, query)
}

func (r *PlanningRepository) list(ctx context.Context, query string) ([]*domain.PlanningTransaction, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PlanningTransaction
	for rows.Next() {
		p, err := scanPlanning(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func scanPlanning(row pgx.Row) (*domain.PlanningTransaction, error) {
	var p domain.PlanningTransaction
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.AccountID,
		&p.CategoryID,
		&p.ToCategoryID,
		&p.TransferToAccountID,
		&p.CounterPlanningID,
		&p.Amount,
		&p.Recurrence,
		&p.EndType,
		&p.WeekendHandling,
		&p.StartDate,
		&p.EndDate,
		&p.MaxOccurrences,
		&p.ExecutionDay,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
