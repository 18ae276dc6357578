package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobudget/internal/domain"
)

// AccountInput carries the mutable fields of an account.
type AccountInput struct {
	Name      string
	GroupID   string
	SortOrder int
	Offline   bool
}

// AccountUseCase handles account lifecycle.
type AccountUseCase struct {
	accountRepo AccountRepository
	syncRepo    SyncRepository
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, syncRepo SyncRepository, idGen IDGenerator, logger zerolog.Logger) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		syncRepo:    syncRepo,
		idGen:       idGen,
		logger:      logger,
	}
}

// CreateAccount creates a new active account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input AccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		GroupID:   input.GroupID,
		SortOrder: input.SortOrder,
		Offline:   input.Offline,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, domain.EventTypeAccountCreated, account)

	return account, nil
}

// GetAccount returns an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts returns all accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return uc.accountRepo.List(ctx)
}

// ListActiveAccounts returns accounts that have not been closed.
func (uc *AccountUseCase) ListActiveAccounts(ctx context.Context) ([]*domain.Account, error) {
	return uc.accountRepo.ListActive(ctx)
}

// UpdateAccount applies the input to an existing account.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, input AccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Name = input.Name
	account.GroupID = input.GroupID
	account.SortOrder = input.SortOrder
	account.Offline = input.Offline
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, domain.EventTypeAccountUpdated, account)

	return account, nil
}

// CloseAccount deactivates an account. Its transactions stay in place.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	account.Active = false
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	uc.recordEvent(ctx, domain.EventTypeAccountUpdated, account)

	return nil
}

// DeleteAccount removes an account entirely.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.accountRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.recordEvent(ctx, domain.EventTypeAccountDeleted, account)

	return nil
}

func (uc *AccountUseCase) recordEvent(ctx context.Context, eventType string, account *domain.Account) {
	event := &domain.SyncEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload: map[string]any{
			"id":   account.ID,
			"name": account.Name,
		},
		EntityUpdatedAt: account.UpdatedAt,
		CreatedAt:       time.Now().UTC(),
	}

	if err := uc.syncRepo.Create(ctx, event); err != nil {
		uc.logger.Debug().Err(err).Str("account_id", account.ID).Msg("sync event write failed")
	}
}
