package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// TransactionCreator materializes a planning occurrence into real
// transactions. Implemented by TransactionUseCase.
type TransactionCreator interface {
	CreateFromPlanning(ctx context.Context, p *domain.PlanningTransaction, date time.Time) (*domain.Transaction, error)
}

// PlanningUseCase expands recurring-transaction templates into concrete
// occurrence dates and manages the template lifecycle.
type PlanningUseCase struct {
	planningRepo PlanningRepository
	creator      TransactionCreator
	idGen        IDGenerator
	logger       zerolog.Logger
}

// NewPlanningUseCase creates a new PlanningUseCase.
func NewPlanningUseCase(planningRepo PlanningRepository, idGen IDGenerator, logger zerolog.Logger) *PlanningUseCase {
	return &PlanningUseCase{
		planningRepo: planningRepo,
		idGen:        idGen,
		logger:       logger,
	}
}

// SetTransactionCreator wires the transaction service; set once at startup.
func (uc *PlanningUseCase) SetTransactionCreator(creator TransactionCreator) {
	uc.creator = creator
}

// ExpandOccurrences produces every occurrence date of the template within
// [start, end]. Weekend handling is applied to each candidate before range
// membership is tested. Expansion terminates on whichever comes first: the
// template's end date, its maximum occurrence count, a NEVER window
// truncated to NeverWindowMonths, or the iteration safety cap.
func (uc *PlanningUseCase) ExpandOccurrences(p *domain.PlanningTransaction, start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}

	if p.Recurrence == domain.RecurrenceOnce {
		d := domain.AdjustForWeekend(p.StartDate, p.WeekendHandling)
		if !d.Before(start) && !d.After(end) {
			return []time.Time{d}
		}
		return nil
	}

	windowEnd := end
	if p.EndType == domain.RecurrenceEndNever {
		if capEnd := start.AddDate(0, NeverWindowMonths, 0); capEnd.Before(windowEnd) {
			windowEnd = capEnd
		}
	}

	// Weekend handling can move a date up to two days past the window.
	hardStop := windowEnd.AddDate(0, 0, 2)

	var occurrences []time.Time
	d := p.StartDate
	count := 0

	for iter := 0; iter < MaxPlanningIterations; iter++ {
		adjusted := domain.AdjustForWeekend(d, p.WeekendHandling)

		if p.EndType == domain.RecurrenceEndDate && p.EndDate != nil && adjusted.After(*p.EndDate) {
			break
		}

		count++
		if p.EndType == domain.RecurrenceEndCount && p.MaxOccurrences > 0 && count > p.MaxOccurrences {
			break
		}

		if !adjusted.Before(start) && !adjusted.After(windowEnd) {
			occurrences = append(occurrences, adjusted)
		}

		d = p.NextOccurrence(d)
		if d.After(hardStop) {
			break
		}
	}

	return occurrences
}

// ForecastForCategory sums amount x occurrence-count of active templates
// targeting the category within [start, end].
func (uc *PlanningUseCase) ForecastForCategory(ctx context.Context, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	templates, err := uc.planningRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range templates {
		if p.CategoryID != categoryID {
			continue
		}
		n := len(uc.ExpandOccurrences(p, start, end))
		if n > 0 {
			total = total.Add(p.Amount.Mul(decimal.NewFromInt(int64(n))))
		}
	}

	return total, nil
}

// ForecastForAccount sums planned amounts touching the account in [start, end].
func (uc *PlanningUseCase) ForecastForAccount(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error) {
	templates, err := uc.planningRepo.ListActive(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range templates {
		if p.AccountID != accountID || p.Type == domain.TransactionTypeCategoryTransfer {
			continue
		}
		n := len(uc.ExpandOccurrences(p, start, end))
		if n > 0 {
			total = total.Add(p.Amount.Mul(decimal.NewFromInt(int64(n))))
		}
	}

	return total, nil
}

// PlannedAmountsByDay maps occurrence dates (day precision) to summed planned
// amounts for one entity; used as the projection overlay of running balances.
func (uc *PlanningUseCase) PlannedAmountsByDay(ctx context.Context, entityType EntityType, id string, start, end time.Time) (map[string]decimal.Decimal, error) {
	templates, err := uc.planningRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal)
	for _, p := range templates {
		switch entityType {
		case EntityAccount:
			if p.AccountID != id || p.Type == domain.TransactionTypeCategoryTransfer {
				continue
			}
		case EntityCategory:
			if p.CategoryID != id {
				continue
			}
		}

		for _, occ := range uc.ExpandOccurrences(p, start, end) {
			key := occ.Format("2006-01-02")
			byDay[key] = byDay[key].Add(p.Amount)
		}
	}

	return byDay, nil
}

// CreatePlanningInput represents input for creating a planning transaction.
type CreatePlanningInput struct {
	StartDate           time.Time
	EndDate             *time.Time
	Name                string
	Type                domain.TransactionType
	AccountID           string
	CategoryID          string
	ToCategoryID        string
	TransferToAccountID string
	Recurrence          domain.RecurrencePattern
	EndType             domain.RecurrenceEnd
	WeekendHandling     domain.WeekendHandling
	Amount              decimal.Decimal
	MaxOccurrences      int
	ExecutionDay        int
}

// CreatePlanning creates a planning transaction. Transfer templates get a
// linked counter template with negated amount and swapped endpoints.
func (uc *PlanningUseCase) CreatePlanning(ctx context.Context, input CreatePlanningInput) (*domain.PlanningTransaction, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	p := &domain.PlanningTransaction{
		ID:                  uc.idGen.Generate(),
		Name:                input.Name,
		Type:                input.Type,
		AccountID:           input.AccountID,
		CategoryID:          input.CategoryID,
		ToCategoryID:        input.ToCategoryID,
		TransferToAccountID: input.TransferToAccountID,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		Recurrence:          input.Recurrence,
		EndType:             input.EndType,
		WeekendHandling:     input.WeekendHandling,
		Amount:              input.Amount,
		MaxOccurrences:      input.MaxOccurrences,
		ExecutionDay:        input.ExecutionDay,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.planningRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	if input.Type == domain.TransactionTypeAccountTransfer || input.Type == domain.TransactionTypeCategoryTransfer {
		counter := *p
		counter.ID = uc.idGen.Generate()
		counter.Amount = p.Amount.Neg()
		counter.AccountID, counter.TransferToAccountID = p.TransferToAccountID, p.AccountID
		counter.CategoryID, counter.ToCategoryID = p.ToCategoryID, p.CategoryID
		counter.CounterPlanningID = p.ID

		if err := uc.planningRepo.Create(ctx, &counter); err != nil {
			return nil, err
		}

		p.CounterPlanningID = counter.ID
		if err := uc.planningRepo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// UpdatePlanning applies the input to an existing template. The linked
// counter template, when present, is rewritten to mirror the new values.
func (uc *PlanningUseCase) UpdatePlanning(ctx context.Context, id string, input CreatePlanningInput) (*domain.PlanningTransaction, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	p, err := uc.planningRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = input.Name
	p.AccountID = input.AccountID
	p.CategoryID = input.CategoryID
	p.ToCategoryID = input.ToCategoryID
	p.TransferToAccountID = input.TransferToAccountID
	p.StartDate = input.StartDate
	p.EndDate = input.EndDate
	p.Recurrence = input.Recurrence
	p.EndType = input.EndType
	p.WeekendHandling = input.WeekendHandling
	p.Amount = input.Amount
	p.MaxOccurrences = input.MaxOccurrences
	p.ExecutionDay = input.ExecutionDay
	p.UpdatedAt = time.Now().UTC()

	if err := uc.planningRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	if p.CounterPlanningID != "" {
		counter, err := uc.planningRepo.GetByID(ctx, p.CounterPlanningID)
		if err == nil {
			counter.Name = p.Name
			counter.Amount = p.Amount.Neg()
			counter.AccountID, counter.TransferToAccountID = p.TransferToAccountID, p.AccountID
			counter.CategoryID, counter.ToCategoryID = p.ToCategoryID, p.CategoryID
			counter.StartDate = p.StartDate
			counter.EndDate = p.EndDate
			counter.Recurrence = p.Recurrence
			counter.EndType = p.EndType
			counter.WeekendHandling = p.WeekendHandling
			counter.MaxOccurrences = p.MaxOccurrences
			counter.ExecutionDay = p.ExecutionDay
			counter.UpdatedAt = p.UpdatedAt
			if err := uc.planningRepo.Update(ctx, counter); err != nil {
				uc.logger.Warn().Err(err).Str("planning_id", counter.ID).Msg("counter planning update failed")
			}
		}
	}

	return p, nil
}

// GetPlanning retrieves a template by ID.
func (uc *PlanningUseCase) GetPlanning(ctx context.Context, id string) (*domain.PlanningTransaction, error) {
	return uc.planningRepo.GetByID(ctx, id)
}

// ListPlanning lists all templates.
func (uc *PlanningUseCase) ListPlanning(ctx context.Context) ([]*domain.PlanningTransaction, error) {
	return uc.planningRepo.List(ctx)
}

// DeletePlanning deletes a template and its linked counter template.
func (uc *PlanningUseCase) DeletePlanning(ctx context.Context, id string) error {
	p, err := uc.planningRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if p.CounterPlanningID != "" {
		if err := uc.planningRepo.Delete(ctx, p.CounterPlanningID); err != nil {
			uc.logger.Debug().Err(err).Str("planning_id", p.CounterPlanningID).Msg("counter planning already gone")
		}
	}

	return uc.planningRepo.Delete(ctx, id)
}

// Execute materializes the occurrence at date into real transactions, then
// retires the template when it has no future occurrences left: ONCE plans
// immediately, COUNT plans once the executed occurrence was the last, DATE
// plans once nothing remains before the end date.
func (uc *PlanningUseCase) Execute(ctx context.Context, id string, date time.Time) (*domain.Transaction, error) {
	p, err := uc.planningRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := uc.creator.CreateFromPlanning(ctx, p, date)
	if err != nil {
		return nil, err
	}

	if uc.exhaustedAfter(p, date) {
		if err := uc.DeletePlanning(ctx, id); err != nil {
			uc.logger.Warn().Err(err).Str("planning_id", id).Msg("failed to retire exhausted planning")
		}
	}

	return t, nil
}

func (uc *PlanningUseCase) exhaustedAfter(p *domain.PlanningTransaction, executed time.Time) bool {
	if p.Recurrence == domain.RecurrenceOnce {
		return true
	}

	switch p.EndType {
	case domain.RecurrenceEndCount:
		if p.MaxOccurrences <= 0 {
			return false
		}
		fired := len(uc.ExpandOccurrences(p, p.StartDate, executed))
		return fired >= p.MaxOccurrences
	case domain.RecurrenceEndDate:
		if p.EndDate == nil {
			return false
		}
		remaining := uc.ExpandOccurrences(p, executed.AddDate(0, 0, 1), *p.EndDate)
		return len(remaining) == 0
	}

	return false
}
