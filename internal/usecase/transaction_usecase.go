package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// TransactionInput carries the fields for a plain income or expense booking.
// ValueDate defaults to Date when nil.
type TransactionInput struct {
	Type       domain.TransactionType
	AccountID  string
	CategoryID string
	Amount     decimal.Decimal
	Date       time.Time
	ValueDate  *time.Time
	Note       string
}

// AccountTransferInput describes a transfer between two accounts.
type AccountTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Date          time.Time
	ValueDate     *time.Time
	Note          string
}

// CategoryTransferInput describes a transfer between two categories.
type CategoryTransferInput struct {
	FromCategoryID string
	ToCategoryID   string
	Amount         decimal.Decimal
	Date           time.Time
	Note           string
}

// BulkResult reports the outcome of a bulk mutation. Errors holds one entry
// per item that failed during the per-item fallback.
type BulkResult struct {
	Success bool
	Count   int
	Errors  []string
}

// TransactionUseCase owns all transaction mutations: single bookings,
// linked transfer pairs, the income mirror to Available Funds, and
// reconciliation. Every write goes through a database transaction and
// queues a sync event.
type TransactionUseCase struct {
	txManager    TransactionManager
	txRepo       TransactionRepository
	accountRepo  AccountRepository
	categoryRepo CategoryRepository
	syncRepo     SyncRepository
	notifier     BalanceNotifier
	idGen        IDGenerator
	logger       zerolog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	txRepo TransactionRepository,
	accountRepo AccountRepository,
	categoryRepo CategoryRepository,
	syncRepo SyncRepository,
	notifier BalanceNotifier,
	idGen IDGenerator,
	logger zerolog.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:    txManager,
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		syncRepo:     syncRepo,
		notifier:     notifier,
		idGen:        idGen,
		logger:       logger,
	}
}

// AddTransaction books a single income or expense. Income transactions get
// an automatic category-transfer pair moving the amount from the income
// category to Available Funds, created in the same database transaction.
func (uc *TransactionUseCase) AddTransaction(ctx context.Context, input TransactionInput) (*domain.Transaction, error) {
	created, err := uc.createTransaction(ctx, uc.notifier, input)
	if err != nil {
		return nil, err
	}
	uc.notifier.FlushQueues()
	return created, nil
}

func (uc *TransactionUseCase) createTransaction(ctx context.Context, notifier BalanceNotifier, input TransactionInput) (*domain.Transaction, error) {
	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.Transaction{
		ID:         uc.idGen.Generate(),
		Type:       input.Type,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Date:       input.Date,
		ValueDate:  valueDateOr(input.ValueDate, input.Date),
		Note:       input.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var mirror []*domain.Transaction
	if input.Type == domain.TransactionTypeIncome && input.CategoryID != "" {
		legs, err := uc.incomeMirrorLegs(ctx, t, now)
		if err != nil {
			return nil, err
		}
		mirror = legs
		t.CounterTransactionID = legs[0].ID
	}

	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := uc.txRepo.CreateTx(ctx, dbTx, t); err != nil {
		return nil, err
	}
	for _, leg := range mirror {
		if err := uc.txRepo.CreateTx(ctx, dbTx, leg); err != nil {
			return nil, err
		}
	}

	if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionCreated, t); err != nil {
		return nil, err
	}
	for _, leg := range mirror {
		if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionCreated, leg); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	notifyChanged(notifier, t.AccountID, t.Date, t.ValueDate)
	for _, leg := range mirror {
		notifier.TransactionChanged("", leg.ValueDate)
	}

	return t, nil
}

// incomeMirrorLegs builds the category-transfer pair that moves income into
// Available Funds. The first leg sits in the income category so the income
// transaction can link to it as its counter.
func (uc *TransactionUseCase) incomeMirrorLegs(ctx context.Context, income *domain.Transaction, now time.Time) ([]*domain.Transaction, error) {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := uc.categoryRepo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	af, err := domain.NewCategoryIndex(categories, groups).AvailableFunds()
	if err != nil {
		return nil, err
	}

	out := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		Type:         domain.TransactionTypeCategoryTransfer,
		CategoryID:   income.CategoryID,
		ToCategoryID: af.ID,
		Amount:       income.Amount.Neg(),
		Date:         income.Date,
		ValueDate:    income.ValueDate,
		Note:         income.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	in := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		Type:         domain.TransactionTypeCategoryTransfer,
		CategoryID:   af.ID,
		ToCategoryID: income.CategoryID,
		Amount:       income.Amount,
		Date:         income.Date,
		ValueDate:    income.ValueDate,
		Note:         income.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	out.CounterTransactionID = in.ID
	in.CounterTransactionID = out.ID

	if err := domain.ValidateTransferPair(out, in); err != nil {
		return nil, err
	}

	return []*domain.Transaction{out, in}, nil
}

// UpdateTransaction applies changed fields to an existing transaction and
// keeps any linked legs consistent: transfer counters mirror the negated
// amount and swapped endpoints, income mirrors follow amount, dates and the
// income category.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, id string, input TransactionInput) (*domain.Transaction, error) {
	existing, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	oldAccountID := existing.AccountID
	oldDate := existing.Date
	oldValueDate := existing.ValueDate

	now := time.Now().UTC()
	existing.Amount = input.Amount
	existing.Date = input.Date
	existing.ValueDate = valueDateOr(input.ValueDate, input.Date)
	existing.Note = input.Note
	if input.CategoryID != "" {
		existing.CategoryID = input.CategoryID
	}
	existing.UpdatedAt = now

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	linked, err := uc.linkedUpdates(ctx, existing, now)
	if err != nil {
		return nil, err
	}

	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := uc.txRepo.UpdateTx(ctx, dbTx, existing); err != nil {
		return nil, err
	}
	for _, leg := range linked {
		if err := uc.txRepo.UpdateTx(ctx, dbTx, leg); err != nil {
			return nil, err
		}
	}

	if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionUpdated, existing); err != nil {
		return nil, err
	}
	for _, leg := range linked {
		if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionUpdated, leg); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	notifyChanged(uc.notifier, oldAccountID, oldDate, oldValueDate)
	notifyChanged(uc.notifier, existing.AccountID, existing.Date, existing.ValueDate)
	for _, leg := range linked {
		notifyChanged(uc.notifier, leg.AccountID, leg.Date, leg.ValueDate)
	}
	uc.notifier.FlushQueues()

	return existing, nil
}

// linkedUpdates loads and rewrites the legs tied to a transaction so a
// direct edit cannot leave pairs unbalanced.
func (uc *TransactionUseCase) linkedUpdates(ctx context.Context, t *domain.Transaction, now time.Time) ([]*domain.Transaction, error) {
	if t.CounterTransactionID == "" {
		return nil, nil
	}

	counter, err := uc.txRepo.GetByID(ctx, t.CounterTransactionID)
	if err != nil {
		return nil, err
	}

	switch t.Type {
	case domain.TransactionTypeAccountTransfer:
		counter.Amount = t.Amount.Neg()
		counter.Date = t.Date
		counter.ValueDate = t.ValueDate
		counter.Note = t.Note
		counter.AccountID = t.TransferToAccountID
		counter.TransferToAccountID = t.AccountID
		counter.UpdatedAt = now
		return []*domain.Transaction{counter}, nil

	case domain.TransactionTypeCategoryTransfer:
		counter.Amount = t.Amount.Neg()
		counter.Date = t.Date
		counter.ValueDate = t.ValueDate
		counter.Note = t.Note
		counter.CategoryID = t.ToCategoryID
		counter.ToCategoryID = t.CategoryID
		counter.UpdatedAt = now
		return []*domain.Transaction{counter}, nil

	case domain.TransactionTypeIncome:
		// The counter is the mirror leg in the income category; its own
		// counter is the Available Funds leg.
		counter.Amount = t.Amount.Neg()
		counter.Date = t.Date
		counter.ValueDate = t.ValueDate
		counter.CategoryID = t.CategoryID
		counter.UpdatedAt = now

		legs := []*domain.Transaction{counter}
		if counter.CounterTransactionID != "" && counter.CounterTransactionID != t.ID {
			afLeg, err := uc.txRepo.GetByID(ctx, counter.CounterTransactionID)
			if err != nil {
				return nil, err
			}
			afLeg.Amount = t.Amount
			afLeg.Date = t.Date
			afLeg.ValueDate = t.ValueDate
			afLeg.ToCategoryID = t.CategoryID
			afLeg.UpdatedAt = now
			legs = append(legs, afLeg)
		}
		return legs, nil
	}

	return nil, nil
}

// DeleteTransaction removes a single transaction and leaves any counter leg
// in place. Use DeleteTransactionWithCounter to unwind a whole pair.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id string) error {
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := uc.txRepo.DeleteTx(ctx, dbTx, id); err != nil {
		return err
	}
	if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionDeleted, t); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return err
	}

	notifyChanged(uc.notifier, t.AccountID, t.Date, t.ValueDate)
	uc.notifier.FlushQueues()

	return nil
}

// DeleteTransactionWithCounter removes a transaction together with its
// counter leg and, for income, the second mirror leg behind it.
func (uc *TransactionUseCase) DeleteTransactionWithCounter(ctx context.Context, id string) error {
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	victims := []*domain.Transaction{t}
	if t.CounterTransactionID != "" {
		counter, err := uc.txRepo.GetByID(ctx, t.CounterTransactionID)
		if err == nil {
			victims = append(victims, counter)
			if counter.CounterTransactionID != "" && counter.CounterTransactionID != t.ID {
				if third, err := uc.txRepo.GetByID(ctx, counter.CounterTransactionID); err == nil {
					victims = append(victims, third)
				}
			}
		}
	}

	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	for _, v := range victims {
		if err := uc.txRepo.DeleteTx(ctx, dbTx, v.ID); err != nil {
			return err
		}
		if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionDeleted, v); err != nil {
			return err
		}
	}
	if err := dbTx.Commit(ctx); err != nil {
		return err
	}

	for _, v := range victims {
		notifyChanged(uc.notifier, v.AccountID, v.Date, v.ValueDate)
	}
	uc.notifier.FlushQueues()

	return nil
}

// AddAccountTransfer creates the two linked legs of an account transfer in
// one database transaction. Amount is taken from the sending side, so the
// first leg is booked negative.
func (uc *TransactionUseCase) AddAccountTransfer(ctx context.Context, input AccountTransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if _, err := uc.accountRepo.GetByID(ctx, input.FromAccountID); err != nil {
		return nil, err
	}
	if _, err := uc.accountRepo.GetByID(ctx, input.ToAccountID); err != nil {
		return nil, err
	}

	amount := input.Amount.Abs()
	now := time.Now().UTC()
	valueDate := valueDateOr(input.ValueDate, input.Date)

	from := &domain.Transaction{
		ID:                  uc.idGen.Generate(),
		Type:                domain.TransactionTypeAccountTransfer,
		AccountID:           input.FromAccountID,
		TransferToAccountID: input.ToAccountID,
		Amount:              amount.Neg(),
		Date:                input.Date,
		ValueDate:           valueDate,
		Note:                input.Note,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	to := &domain.Transaction{
		ID:                  uc.idGen.Generate(),
		Type:                domain.TransactionTypeAccountTransfer,
		AccountID:           input.ToAccountID,
		TransferToAccountID: input.FromAccountID,
		Amount:              amount,
		Date:                input.Date,
		ValueDate:           valueDate,
		Note:                input.Note,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	from.CounterTransactionID = to.ID
	to.CounterTransactionID = from.ID

	if err := domain.ValidateTransferPair(from, to); err != nil {
		return nil, err
	}

	if err := uc.createPair(ctx, from, to); err != nil {
		return nil, err
	}

	notifyChanged(uc.notifier, from.AccountID, from.Date, from.ValueDate)
	notifyChanged(uc.notifier, to.AccountID, to.Date, to.ValueDate)
	uc.notifier.FlushQueues()

	return from, nil
}

// AddCategoryTransfer creates the two linked legs of a category transfer.
// Category transfers never touch account balances.
func (uc *TransactionUseCase) AddCategoryTransfer(ctx context.Context, input CategoryTransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.FromCategoryID == input.ToCategoryID {
		return nil, domain.ErrSameCategory
	}

	if _, err := uc.categoryRepo.GetByID(ctx, input.FromCategoryID); err != nil {
		return nil, err
	}
	if _, err := uc.categoryRepo.GetByID(ctx, input.ToCategoryID); err != nil {
		return nil, err
	}

	amount := input.Amount.Abs()
	now := time.Now().UTC()

	from := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		Type:         domain.TransactionTypeCategoryTransfer,
		CategoryID:   input.FromCategoryID,
		ToCategoryID: input.ToCategoryID,
		Amount:       amount.Neg(),
		Date:         input.Date,
		ValueDate:    input.Date,
		Note:         input.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	to := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		Type:         domain.TransactionTypeCategoryTransfer,
		CategoryID:   input.ToCategoryID,
		ToCategoryID: input.FromCategoryID,
		Amount:       amount,
		Date:         input.Date,
		ValueDate:    input.Date,
		Note:         input.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	from.CounterTransactionID = to.ID
	to.CounterTransactionID = from.ID

	if err := domain.ValidateTransferPair(from, to); err != nil {
		return nil, err
	}

	if err := uc.createPair(ctx, from, to); err != nil {
		return nil, err
	}

	uc.notifier.TransactionChanged("", from.ValueDate)
	uc.notifier.FlushQueues()

	return from, nil
}

func (uc *TransactionUseCase) createPair(ctx context.Context, a, b *domain.Transaction) error {
	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := uc.txRepo.CreateTx(ctx, dbTx, a); err != nil {
		return err
	}
	if err := uc.txRepo.CreateTx(ctx, dbTx, b); err != nil {
		return err
	}
	if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionCreated, a); err != nil {
		return err
	}
	if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionCreated, b); err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

// CreateFromPlanning materializes a planning occurrence as a real
// transaction on the given date.
func (uc *TransactionUseCase) CreateFromPlanning(ctx context.Context, p *domain.PlanningTransaction, date time.Time) (*domain.Transaction, error) {
	switch p.Type {
	case domain.TransactionTypeAccountTransfer:
		return uc.AddAccountTransfer(ctx, AccountTransferInput{
			FromAccountID: p.AccountID,
			ToAccountID:   p.TransferToAccountID,
			Amount:        p.Amount,
			Date:          date,
			Note:          p.Name,
		})
	case domain.TransactionTypeCategoryTransfer:
		return uc.AddCategoryTransfer(ctx, CategoryTransferInput{
			FromCategoryID: p.CategoryID,
			ToCategoryID:   p.ToCategoryID,
			Amount:         p.Amount,
			Date:           date,
			Note:           p.Name,
		})
	default:
		return uc.AddTransaction(ctx, TransactionInput{
			Type:       p.Type,
			AccountID:  p.AccountID,
			CategoryID: p.CategoryID,
			Amount:     p.Amount,
			Date:       date,
			Note:       p.Name,
		})
	}
}

// Reconcile compares an account's booked balance as of date against the
// stated statement balance. A non-zero difference is booked as a RECONCILE
// transaction, then every transaction up to the date is marked reconciled.
func (uc *TransactionUseCase) Reconcile(ctx context.Context, accountID string, statedBalance decimal.Decimal, date time.Time) (*domain.Transaction, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	booked, err := uc.txRepo.SumAccountUpTo(ctx, accountID, date)
	if err != nil {
		return nil, err
	}

	diff := statedBalance.Sub(booked)

	now := time.Now().UTC()
	var created *domain.Transaction
	if !diff.IsZero() {
		created = &domain.Transaction{
			ID:         uc.idGen.Generate(),
			Type:       domain.TransactionTypeReconcile,
			AccountID:  accountID,
			Amount:     diff,
			Date:       date,
			ValueDate:  date,
			Note:       "reconciliation adjustment",
			Reconciled: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if created != nil {
		if err := uc.txRepo.CreateTx(ctx, dbTx, created); err != nil {
			return nil, err
		}
		if err := uc.queueEvent(ctx, dbTx, domain.EventTypeTransactionCreated, created); err != nil {
			return nil, err
		}
	}
	if err := uc.txRepo.MarkReconciled(ctx, dbTx, accountID, date); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account_id", accountID).
		Str("difference", diff.String()).
		Time("up_to", date).
		Msg("account reconciled")

	uc.notifier.TransactionChanged(accountID, date)
	uc.notifier.FlushQueues()

	return created, nil
}

// BulkDeleteTransactions removes the given transactions, first as one
// batched delete and, if that fails, one by one collecting per-item errors.
// Balance notifications are buffered and replayed once at the end.
func (uc *TransactionUseCase) BulkDeleteTransactions(ctx context.Context, ids []string) BulkResult {
	batch := NewBatchScope(uc.notifier)
	defer batch.Rollback()

	victims := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := uc.txRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		victims = append(victims, t)
	}

	result := BulkResult{Success: true}

	if err := uc.txRepo.DeleteMany(ctx, ids); err != nil {
		uc.logger.Warn().Err(err).Int("count", len(ids)).Msg("batched delete failed, retrying per item")

		for _, id := range ids {
			if err := uc.txRepo.Delete(ctx, id); err != nil {
				result.Success = false
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			result.Count++
		}
	} else {
		result.Count = len(ids)
	}

	for _, v := range victims {
		if err := uc.syncRepo.Create(ctx, uc.buildEvent(domain.EventTypeTransactionDeleted, v)); err != nil {
			uc.logger.Debug().Err(err).Str("transaction_id", v.ID).Msg("sync event write failed")
		}
		notifyChanged(batch, v.AccountID, v.Date, v.ValueDate)
	}

	batch.Commit()

	return result
}

// ImportTransactions creates many transactions, buffering balance work so
// recalculation runs once after the whole import instead of per row.
func (uc *TransactionUseCase) ImportTransactions(ctx context.Context, inputs []TransactionInput) BulkResult {
	batch := NewBatchScope(uc.notifier)
	defer batch.Rollback()

	result := BulkResult{Success: true}
	for i, input := range inputs {
		if _, err := uc.createTransaction(ctx, batch, input); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		result.Count++
	}

	batch.Commit()

	return result
}

// GetTransaction returns a single transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// ListByAccount returns an account's transactions.
func (uc *TransactionUseCase) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	return uc.txRepo.ListByAccount(ctx, accountID)
}

// ListByDateRange returns transactions booked within [start, end].
func (uc *TransactionUseCase) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	if err := domain.ValidateDateRange(start, end); err != nil {
		return nil, err
	}
	return uc.txRepo.ListByDateRange(ctx, start, end)
}

func (uc *TransactionUseCase) queueEvent(ctx context.Context, dbTx Transaction, eventType string, t *domain.Transaction) error {
	return uc.syncRepo.CreateTx(ctx, dbTx, uc.buildEvent(eventType, t))
}

func (uc *TransactionUseCase) buildEvent(eventType string, t *domain.Transaction) *domain.SyncEvent {
	return &domain.SyncEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   t.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload: map[string]any{
			"id":         t.ID,
			"type":       string(t.Type),
			"account_id": t.AccountID,
			"amount":     t.Amount.String(),
			"date":       t.Date.Format(time.RFC3339),
		},
		EntityUpdatedAt: t.UpdatedAt,
		CreatedAt:       time.Now().UTC(),
	}
}

// notifyChanged reports a write under both booking dates. Accounts book by
// Date and categories by ValueDate, so a transaction whose ValueDate falls in
// a different month needs that month invalidated as well.
func notifyChanged(n BalanceNotifier, accountID string, date, valueDate time.Time) {
	n.TransactionChanged(accountID, date)
	if domain.MonthOf(valueDate) != domain.MonthOf(date) {
		n.TransactionChanged("", valueDate)
	}
}

func valueDateOr(explicit *time.Time, fallback time.Time) time.Time {
	if explicit != nil {
		return *explicit
	}
	return fallback
}
