package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobudget/internal/domain"
)

const categoryColumns = `
	id, name, parent_id, group_id, sort_order, priority, monthly_amount,
	allocation_percent, target_amount, is_income_category, is_available_funds,
	is_savings_goal, active, created_at, updated_at
`

// CategoryRepository implements category persistence on PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.ParentID,
		category.GroupID,
		category.SortOrder,
		category.Priority,
		category.MonthlyAmount,
		category.AllocationPercent,
		category.TargetAmount,
		category.IsIncomeCategory,
		category.IsAvailableFunds,
		category.IsSavingsGoal,
		category.Active,
		category.CreatedAt,
		category.UpdatedAt,
	)

	return err
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}

	return c, err
}

// Update rewrites the mutable fields of a category.
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, parent_id = $3, group_id = $4, sort_order = $5, priority = $6,
		    monthly_amount = $7, allocation_percent = $8, target_amount = $9,
		    is_income_category = $10, is_available_funds = $11, is_savings_goal = $12,
		    active = $13, updated_at = $14
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.ParentID,
		category.GroupID,
		category.SortOrder,
		category.Priority,
		category.MonthlyAmount,
		category.AllocationPercent,
		category.TargetAmount,
		category.IsIncomeCategory,
		category.IsAvailableFunds,
		category.IsSavingsGoal,
		category.Active,
		category.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}

	return nil
}

// List retrieves all categories in display order.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// ListGroups retrieves all category groups in display order.
func (r *CategoryRepository) ListGroups(ctx context.Context) ([]*domain.CategoryGroup, error) {
	query := `SELECT id, name, sort_order FROM category_groups ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CategoryGroup
	for rows.Next() {
		var g domain.CategoryGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}

	return out, rows.Err()
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ParentID,
		&c.GroupID,
		&c.SortOrder,
		&c.Priority,
		&c.MonthlyAmount,
		&c.AllocationPercent,
		&c.TargetAmount,
		&c.IsIncomeCategory,
		&c.IsAvailableFunds,
		&c.IsSavingsGoal,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
