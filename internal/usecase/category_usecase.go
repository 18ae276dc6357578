package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// CategoryInput carries the mutable fields of a category.
type CategoryInput struct {
	Name              string
	ParentID          string
	GroupID           string
	SortOrder         int
	Priority          int
	MonthlyAmount     decimal.Decimal
	AllocationPercent decimal.Decimal
	TargetAmount      decimal.Decimal
	IsIncomeCategory  bool
	IsAvailableFunds  bool
	IsSavingsGoal     bool
}

// CategoryUseCase handles category tree lifecycle.
type CategoryUseCase struct {
	categoryRepo CategoryRepository
	syncRepo     SyncRepository
	idGen        IDGenerator
	logger       zerolog.Logger
}

// NewCategoryUseCase creates a new CategoryUseCase.
func NewCategoryUseCase(categoryRepo CategoryRepository, syncRepo SyncRepository, idGen IDGenerator, logger zerolog.Logger) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: categoryRepo,
		syncRepo:     syncRepo,
		idGen:        idGen,
		logger:       logger,
	}
}

// CreateCategory creates a new active category.
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:                uc.idGen.Generate(),
		Name:              input.Name,
		ParentID:          input.ParentID,
		GroupID:           input.GroupID,
		SortOrder:         input.SortOrder,
		Priority:          input.Priority,
		MonthlyAmount:     input.MonthlyAmount,
		AllocationPercent: input.AllocationPercent,
		TargetAmount:      input.TargetAmount,
		IsIncomeCategory:  input.IsIncomeCategory,
		IsAvailableFunds:  input.IsAvailableFunds,
		IsSavingsGoal:     input.IsSavingsGoal,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, domain.EventTypeCategoryCreated, category)

	return category, nil
}

// GetCategory returns a category by ID.
func (uc *CategoryUseCase) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return uc.categoryRepo.GetByID(ctx, id)
}

// ListCategories returns all categories.
func (uc *CategoryUseCase) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return uc.categoryRepo.List(ctx)
}

// Index loads the full tree into an adjacency index.
func (uc *CategoryUseCase) Index(ctx context.Context) (*domain.CategoryIndex, error) {
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

// UpdateCategory applies the input to an existing category.
func (uc *CategoryUseCase) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.ParentID = input.ParentID
	category.GroupID = input.GroupID
	category.SortOrder = input.SortOrder
	category.Priority = input.Priority
	category.MonthlyAmount = input.MonthlyAmount
	category.AllocationPercent = input.AllocationPercent
	category.TargetAmount = input.TargetAmount
	category.IsIncomeCategory = input.IsIncomeCategory
	category.IsSavingsGoal = input.IsSavingsGoal
	category.UpdatedAt = time.Now().UTC()

	if err := uc.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, domain.EventTypeCategoryUpdated, category)

	return category, nil
}

// ArchiveCategory deactivates a category, hiding it from budgeting passes
// while keeping its booked history.
func (uc *CategoryUseCase) ArchiveCategory(ctx context.Context, id string) error {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	category.Active = false
	category.UpdatedAt = time.Now().UTC()

	if err := uc.categoryRepo.Update(ctx, category); err != nil {
		return err
	}

	uc.recordEvent(ctx, domain.EventTypeCategoryUpdated, category)

	return nil
}

// DeleteCategory removes a category entirely.
func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.recordEvent(ctx, domain.EventTypeCategoryDeleted, category)

	return nil
}

func (uc *CategoryUseCase) recordEvent(ctx context.Context, eventType string, category *domain.Category) {
	event := &domain.SyncEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   category.ID,
		AggregateType: domain.AggregateTypeCategory,
		EventType:     eventType,
		Payload: map[string]any{
			"id":   category.ID,
			"name": category.Name,
		},
		EntityUpdatedAt: category.UpdatedAt,
		CreatedAt:       time.Now().UTC(),
	}

	if err := uc.syncRepo.Create(ctx, event); err != nil {
		uc.logger.Debug().Err(err).Str("category_id", category.ID).Msg("sync event write failed")
	}
}
