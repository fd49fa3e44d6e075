package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

// AccountConfig wires the account store.
type AccountConfig struct {
	TxManager    TransactionManager
	AccountRepo  AccountRepository
	MovementRepo MovementRepository
	AuditRepo    AuditRepository
	OutboxRepo   OutboxRepository
	IDGen        IDGenerator
	Clock        Clock
	Logger       *zerolog.Logger
}

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	auditRepo    AuditRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	clock        Clock
	logger       zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(cfg AccountConfig) *AccountUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &AccountUseCase{
		txManager:    cfg.TxManager,
		accountRepo:  cfg.AccountRepo,
		movementRepo: cfg.MovementRepo,
		auditRepo:    cfg.AuditRepo,
		outboxRepo:   cfg.OutboxRepo,
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		logger:       logger.With().Str("component", "accounts").Logger(),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID        string
	Name           string
	Description    string
	Type           string
	Currency       string
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new account. The name must be unique for the
// owner, ignoring case and surrounding spaces, across active and inactive
// accounts.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateText("description", input.Description, domain.MaxAccountDescriptionLength); err != nil {
		return nil, err
	}
	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}
	currency, err := domain.NormalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		OwnerID:        input.OwnerID,
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Type:           accountType,
		Currency:       currency,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	if err := uc.checkNameFree(ctx, tx, account.OwnerID, account.Name, ""); err != nil {
		return nil, err
	}
	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := uc.trail(ctx, tx, domain.AuditActionAccountCreate, domain.EventTypeAccountCreated, nil, account); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	uc.logger.Debug().Str("account_id", account.ID).Str("owner_id", account.OwnerID).Msg("account created")

	return account, nil
}

// GetAccount retrieves an account owned by ownerID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.CheckOwner(ownerID); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts lists the owner's accounts ordered by name.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return accounts, nil
	}

	active := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Active {
			active = append(active, a)
		}
	}
	return active, nil
}

// UpdateAccountInput carries the editable attributes of an account. Nil
// fields are left unchanged; the balance is never editable.
type UpdateAccountInput struct {
	OwnerID     string
	AccountID   string
	Name        *string
	Description *string
	Type        *string
	Currency    *string
	Active      *bool
}

// UpdateAccount changes name, description, type, currency or active flag.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	if input.Name != nil {
		if err := domain.ValidateAccountName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		if err := domain.ValidateText("description", *input.Description, domain.MaxAccountDescriptionLength); err != nil {
			return nil, err
		}
	}

	var accountType domain.AccountType
	if input.Type != nil {
		t, err := domain.ParseAccountType(*input.Type)
		if err != nil {
			return nil, err
		}
		accountType = t
	}

	var currency string
	if input.Currency != nil {
		c, err := domain.NormalizeCurrency(*input.Currency)
		if err != nil {
			return nil, err
		}
		currency = c
	}

	return uc.mutate(ctx, input.OwnerID, input.AccountID, domain.AuditActionAccountUpdate, func(tx Transaction, a *domain.Account) error {
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if err := uc.checkNameFree(ctx, tx, a.OwnerID, name, a.ID); err != nil {
				return err
			}
			a.Name = name
		}
		if input.Description != nil {
			a.Description = strings.TrimSpace(*input.Description)
		}
		if input.Type != nil {
			a.Type = accountType
		}
		if input.Currency != nil {
			a.Currency = currency
		}
		if input.Active != nil {
			a.Active = *input.Active
		}
		return nil
	})
}

// DeactivateAccount hides an account from new movements. Balance and
// history are untouched.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	return uc.mutate(ctx, ownerID, id, domain.AuditActionAccountDeactivate, func(_ Transaction, a *domain.Account) error {
		a.Active = false
		return nil
	})
}

// ReactivateAccount makes an inactive account usable again.
func (uc *AccountUseCase) ReactivateAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	return uc.mutate(ctx, ownerID, id, domain.AuditActionAccountReactivate, func(_ Transaction, a *domain.Account) error {
		a.Active = true
		return nil
	})
}

func (uc *AccountUseCase) mutate(
	ctx context.Context,
	ownerID, id string,
	action domain.AuditAction,
	change func(tx Transaction, a *domain.Account) error,
) (*domain.Account, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := account.CheckOwner(ownerID); err != nil {
		return nil, err
	}

	before := domain.AccountState(account)
	if err := change(tx, account); err != nil {
		return nil, err
	}
	account.UpdatedAt = uc.clock.Now()

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := uc.trail(ctx, tx, action, domain.EventTypeAccountUpdated, before, account); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	uc.logger.Debug().Str("account_id", account.ID).Str("action", string(action)).Msg("account updated")

	return account, nil
}

// DeleteAccount hard-deletes a pristine account. Any movement referencing
// the account, tombstones included, blocks deletion with ErrHasHistory.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, ownerID, id string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := account.CheckOwner(ownerID); err != nil {
		return err
	}

	count, err := uc.movementRepo.CountReferences(ctx, tx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		uc.logger.Warn().Str("account_id", id).Int("movements", count).Msg("account delete rejected")
		return domain.ErrHasHistory
	}

	if err := uc.accountRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := uc.trail(ctx, tx, domain.AuditActionAccountDelete, domain.EventTypeAccountDeleted, domain.AccountState(account), account); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.StorageError(err)
	}

	uc.logger.Debug().Str("account_id", id).Msg("account deleted")

	return nil
}

// AccountStats summarizes the non-deleted movements booked on an account.
type AccountStats struct {
	AccountID       string
	TotalIncome     decimal.Decimal
	TotalExpenses   decimal.Decimal
	TransfersIn     decimal.Decimal
	TransfersOut    decimal.Decimal
	FeesPaid        decimal.Decimal
	MovementCount   int
	FirstMovementAt *time.Time
	LastMovementAt  *time.Time
}

// GetAccountStats computes per-account totals from its history.
func (uc *AccountUseCase) GetAccountStats(ctx context.Context, ownerID, id string) (*AccountStats, error) {
	account, err := uc.GetAccount(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	movements, err := uc.movementRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	stats := &AccountStats{
		AccountID:     account.ID,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		TransfersIn:   decimal.Zero,
		TransfersOut:  decimal.Zero,
		FeesPaid:      decimal.Zero,
	}

	for _, m := range movements {
		if m.IsDeleted() {
			continue
		}

		switch d := m.Detail.(type) {
		case domain.Credit:
			stats.TotalIncome = stats.TotalIncome.Add(m.Amount)
		case domain.Debit:
			stats.TotalExpenses = stats.TotalExpenses.Add(m.Amount)
		case domain.Transfer:
			if d.Direction == domain.DirectionOutgoing {
				stats.TransfersOut = stats.TransfersOut.Add(m.Amount)
				stats.FeesPaid = stats.FeesPaid.Add(d.Fee)
			} else {
				stats.TransfersIn = stats.TransfersIn.Add(m.Amount)
			}
		}

		stats.MovementCount++
		at := m.OccurredAt
		if stats.FirstMovementAt == nil || at.Before(*stats.FirstMovementAt) {
			stats.FirstMovementAt = &at
		}
		if stats.LastMovementAt == nil || at.After(*stats.LastMovementAt) {
			stats.LastMovementAt = &at
		}
	}

	return stats, nil
}

// Audit trail page bounds.
const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// ListAuditLogs returns the owner's audit trail, newest first. A resource
// filter needs both the type and the id.
func (uc *AccountUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if uc.auditRepo == nil {
		return []*domain.AuditLog{}, nil
	}
	if filter.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrValidation)
	}
	if filter.ResourceID != "" && filter.ResourceType == "" {
		return nil, fmt.Errorf("%w: resource_type is required with resource_id", domain.ErrValidation)
	}
	switch filter.ResourceType {
	case "", domain.ResourceAccount, domain.ResourceMovement:
	default:
		return nil, fmt.Errorf("%w: unknown resource type %q", domain.ErrValidation, filter.ResourceType)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: from is after to", domain.ErrValidation)
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	filter.Limit = min(filter.Limit, maxAuditLimit)
	filter.Offset = max(filter.Offset, 0)

	logs, err := uc.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	return logs, nil
}

func (uc *AccountUseCase) checkNameFree(ctx context.Context, tx Transaction, ownerID, name, excludeID string) error {
	exists, err := uc.accountRepo.ExistsByName(ctx, tx, ownerID, domain.NormalizeAccountName(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateName
	}
	return nil
}

func (uc *AccountUseCase) trail(
	ctx context.Context,
	tx Transaction,
	action domain.AuditAction,
	eventType string,
	before domain.JSON,
	account *domain.Account,
) error {
	now := uc.clock.Now()

	if uc.auditRepo != nil {
		after := domain.AccountState(account)
		if action == domain.AuditActionAccountDelete {
			after = nil
		}
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			OwnerID:      account.OwnerID,
			Action:       action,
			ResourceType: domain.ResourceAccount,
			ResourceID:   account.ID,
			RequestID:    RequestIDFromContext(ctx),
			BeforeState:  before,
			AfterState:   after,
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     eventType,
			Payload:       domain.NewAccountEvent(account, now),
			CreatedAt:     now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	return nil
}
