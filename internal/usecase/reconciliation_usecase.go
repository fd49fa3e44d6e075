package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

// reconcileBatchSize bounds each page of the all-accounts sweep.
const reconcileBatchSize = 500

// ReconciliationUseCase recomputes balances from movement history and
// compares them with the stored running balance.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	clock        Clock
	logger       zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	logger *zerolog.Logger,
) *ReconciliationUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &ReconciliationUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		clock:        clock,
		logger:       l.With().Str("component", "reconciliation").Logger(),
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	AccountName       string
	Currency          string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	MovementCount     int
	LastChecked       time.Time
}

// ReconcileAccount recomputes initial + Σ effects of non-deleted movements
// for one of the owner's accounts.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, ownerID, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.CheckOwner(ownerID); err != nil {
		return nil, err
	}
	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	movements, err := uc.movementRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	calculated := domain.BalanceFromHistory(account.InitialBalance, account.ID, movements)
	live := 0
	for _, m := range movements {
		if !m.IsDeleted() {
			live++
		}
	}

	return &ReconciliationResult{
		AccountID:         account.ID,
		AccountName:       account.Name,
		Currency:          account.Currency,
		RecordedBalance:   account.CurrentBalance,
		CalculatedBalance: calculated,
		Difference:        account.CurrentBalance.Sub(calculated),
		IsReconciled:      account.CurrentBalance.Equal(calculated),
		MovementCount:     live,
		LastChecked:       uc.clock.Now(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Results            []*ReconciliationResult
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileOwner reconciles every account of an owner.
func (uc *ReconciliationUseCase) ReconcileOwner(ctx context.Context, ownerID string) (*ReconciliationReport, error) {
	accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return uc.report(ctx, accounts)
}

// ReconcileAll sweeps every account in the store, page by page.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	var accounts []*domain.Account
	for offset := 0; ; offset += reconcileBatchSize {
		batch, err := uc.accountRepo.List(ctx, reconcileBatchSize, offset)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, batch...)
		if len(batch) < reconcileBatchSize {
			break
		}
	}

	report, err := uc.report(ctx, accounts)
	if err != nil {
		return nil, err
	}

	for _, d := range report.Discrepancies {
		uc.logger.Warn().
			Str("account_id", d.AccountID).
			Str("recorded", d.RecordedBalance.StringFixed(2)).
			Str("calculated", d.CalculatedBalance.StringFixed(2)).
			Msg("balance drift detected")
	}
	uc.logger.Info().
		Int("accounts", report.TotalAccounts).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("reconciliation sweep finished")

	return report, nil
}

func (uc *ReconciliationUseCase) report(ctx context.Context, accounts []*domain.Account) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		TotalAccounts: len(accounts),
		Results:       make([]*ReconciliationResult, 0, len(accounts)),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.clock.Now(),
	}

	for _, account := range accounts {
		result, err := uc.reconcile(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
		}
		report.Results = append(report.Results, result)
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

// RepairAccount rewrites the stored balance to the value recomputed from
// history, under the account lock, and audits the change.
func (uc *ReconciliationUseCase) RepairAccount(ctx context.Context, ownerID, accountID string) (*ReconciliationResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.CheckOwner(ownerID); err != nil {
		return nil, err
	}

	result, err := uc.reconcile(ctx, account)
	if err != nil {
		return nil, err
	}
	if result.IsReconciled {
		return result, nil
	}

	before := domain.AccountState(account)
	now := uc.clock.Now()
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, result.CalculatedBalance, now); err != nil {
		return nil, err
	}
	account.CurrentBalance = result.CalculatedBalance
	account.UpdatedAt = now

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			OwnerID:      ownerID,
			Action:       domain.AuditActionAccountRepair,
			ResourceType: domain.ResourceAccount,
			ResourceID:   account.ID,
			RequestID:    RequestIDFromContext(ctx),
			Reason:       fmt.Sprintf("balance drift %s", result.Difference.StringFixed(2)),
			BeforeState:  before,
			AfterState:   domain.AccountState(account),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	uc.logger.Warn().
		Str("account_id", account.ID).
		Str("difference", result.Difference.StringFixed(2)).
		Msg("account balance repaired")

	return result, nil
}
