package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// LedgerConfig wires the ledger engine.
type LedgerConfig struct {
	TxManager    TransactionManager
	AccountRepo  AccountRepository
	MovementRepo MovementRepository
	AuditRepo    AuditRepository
	OutboxRepo   OutboxRepository
	IDGen        IDGenerator
	Clock        Clock         // defaults to SystemClock
	Retrier      Retrier       // optional
	Metrics      LedgerMetrics // optional
	Logger       *zerolog.Logger
	EditWindow   time.Duration // defaults to DefaultEditWindow
	DeleteWindow time.Duration // defaults to DefaultDeleteWindow
}

// LedgerUseCase is the ledger engine: it applies movements to account
// balances inside one unit of work per operation.
type LedgerUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	auditRepo    AuditRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	clock        Clock
	retrier      Retrier
	metrics      LedgerMetrics
	logger       zerolog.Logger
	editWindow   time.Duration
	deleteWindow time.Duration
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.EditWindow == 0 {
		cfg.EditWindow = DefaultEditWindow
	}
	if cfg.DeleteWindow == 0 {
		cfg.DeleteWindow = DefaultDeleteWindow
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &LedgerUseCase{
		txManager:    cfg.TxManager,
		accountRepo:  cfg.AccountRepo,
		movementRepo: cfg.MovementRepo,
		auditRepo:    cfg.AuditRepo,
		outboxRepo:   cfg.OutboxRepo,
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		retrier:      cfg.Retrier,
		metrics:      cfg.Metrics,
		logger:       logger.With().Str("component", "ledger").Logger(),
		editWindow:   cfg.EditWindow,
		deleteWindow: cfg.DeleteWindow,
	}
}

// MovementDetails carries the descriptive fields shared by every movement kind.
type MovementDetails struct {
	Description string
	OccurredAt  time.Time // zero means now, or unchanged on edit
	Category    string
	Notes       string
	Reference   string
	Recurring   bool
	ReceiptRef  string
}

func (d MovementDetails) validate() error {
	if err := domain.ValidateRequired("description", d.Description, domain.MaxDescriptionLength); err != nil {
		return err
	}
	if err := domain.ValidateText("category", d.Category, domain.MaxCategoryLength); err != nil {
		return err
	}
	if err := domain.ValidateText("notes", d.Notes, domain.MaxNotesLength); err != nil {
		return err
	}
	if err := domain.ValidateText("reference", d.Reference, domain.MaxReferenceLength); err != nil {
		return err
	}
	return domain.ValidateText("receipt", d.ReceiptRef, domain.MaxReceiptRefLength)
}

func (d MovementDetails) applyTo(m *domain.Movement, now time.Time) {
	m.Description = strings.TrimSpace(d.Description)
	m.OccurredAt = d.OccurredAt
	if m.OccurredAt.IsZero() {
		m.OccurredAt = now
	}
	m.Category = strings.TrimSpace(d.Category)
	m.Notes = d.Notes
	m.Reference = d.Reference
	m.Recurring = d.Recurring
	m.ReceiptRef = d.ReceiptRef
}

// RecordMovementInput represents input for a credit or a debit.
type RecordMovementInput struct {
	OwnerID   string
	AccountID string
	Amount    decimal.Decimal
	MovementDetails
}

// RecordTransferInput represents input for a transfer between two accounts
// of the same owner.
type RecordTransferInput struct {
	OwnerID              string
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Fee                  decimal.Decimal
	MovementDetails
	// IncomingDescription overrides the "Transfer from <source>" label of
	// the incoming leg.
	IncomingDescription string
}

// TransferResult holds the two legs of a recorded transfer.
type TransferResult struct {
	Outgoing *domain.Movement
	Incoming *domain.Movement
}

// EditMovementInput carries the complete new field set of a movement.
type EditMovementInput struct {
	OwnerID    string
	MovementID string
	// AccountID moves a credit or debit to another account; empty keeps it.
	AccountID string
	Amount    decimal.Decimal
	// Fee replaces the transfer fee; nil keeps it. Ignored for credits and debits.
	Fee *decimal.Decimal
	MovementDetails
	Reason string
}

// DeleteMovementInput identifies a movement to tombstone.
type DeleteMovementInput struct {
	OwnerID    string
	MovementID string
	Reason     string
}

// RecordCredit books income on an account. No funds check applies.
func (uc *LedgerUseCase) RecordCredit(ctx context.Context, input RecordMovementInput) (*domain.Movement, error) {
	return uc.recordSingle(ctx, "record_credit", input, domain.Credit{})
}

// RecordDebit books an expense on an account. Accounts other than credit
// cards must hold at least amount.
func (uc *LedgerUseCase) RecordDebit(ctx context.Context, input RecordMovementInput) (*domain.Movement, error) {
	return uc.recordSingle(ctx, "record_debit", input, domain.Debit{})
}

func (uc *LedgerUseCase) recordSingle(ctx context.Context, op string, input RecordMovementInput, detail domain.MovementDetail) (*domain.Movement, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(op, err)
	}
	if err := input.validate(); err != nil {
		return nil, uc.reject(op, err)
	}

	var movement *domain.Movement
	err := uc.run(ctx, op, func(ctx context.Context) error {
		var err error
		movement, err = uc.recordSingleTx(ctx, input, detail)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.recordMetric(movement)
	uc.logger.Debug().
		Str("movement_id", movement.ID).
		Str("account_id", movement.AccountID).
		Str("kind", string(movement.Kind())).
		Str("amount", movement.Amount.StringFixed(2)).
		Msg("movement recorded")

	return movement, nil
}

func (uc *LedgerUseCase) recordSingleTx(ctx context.Context, input RecordMovementInput, detail domain.MovementDetail) (*domain.Movement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.CheckUsable(input.OwnerID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	movement := &domain.Movement{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		AccountID: account.ID,
		Amount:    input.Amount,
		Detail:    detail,
		CreatedAt: now,
	}
	input.applyTo(movement, now)

	if movement.Kind() == domain.KindDebit {
		if err := account.ValidateWithdrawal(movement.Amount); err != nil {
			return nil, err
		}
	}

	if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
		return nil, err
	}
	if err := uc.adjustBalance(ctx, tx, account, movement.SignedEffect(), now); err != nil {
		return nil, err
	}

	action := domain.AuditActionMovementCredit
	if movement.Kind() == domain.KindDebit {
		action = domain.AuditActionMovementDebit
	}
	if err := uc.trail(ctx, tx, input.OwnerID, action, domain.EventTypeMovementRecorded, nil, movement, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	return movement, nil
}

// RecordTransfer moves amount from source to destination, charging fee on
// the source. Both legs and both balance changes commit together.
func (uc *LedgerUseCase) RecordTransfer(ctx context.Context, input RecordTransferInput) (*TransferResult, error) {
	const op = "record_transfer"

	if err := validateTransferInput(input); err != nil {
		return nil, uc.reject(op, err)
	}

	var result *TransferResult
	err := uc.run(ctx, op, func(ctx context.Context) error {
		var err error
		result, err = uc.recordTransferTx(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.recordMetric(result.Outgoing)
	uc.logger.Debug().
		Str("outgoing_id", result.Outgoing.ID).
		Str("incoming_id", result.Incoming.ID).
		Str("source_account_id", input.SourceAccountID).
		Str("destination_account_id", input.DestinationAccountID).
		Str("amount", input.Amount.StringFixed(2)).
		Str("fee", input.Fee.StringFixed(2)).
		Msg("transfer recorded")

	return result, nil
}

func validateTransferInput(input RecordTransferInput) error {
	if input.SourceAccountID == input.DestinationAccountID {
		return domain.ErrSameAccount
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}
	if err := domain.ValidateFee(input.Fee); err != nil {
		return err
	}
	if err := domain.ValidateText("incoming description", input.IncomingDescription, domain.MaxDescriptionLength); err != nil {
		return err
	}
	return input.validate()
}

func (uc *LedgerUseCase) recordTransferTx(ctx context.Context, input RecordTransferInput) (*TransferResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.lockAccounts(ctx, tx, input.SourceAccountID, input.DestinationAccountID)
	if err != nil {
		return nil, err
	}
	source := accounts[input.SourceAccountID]
	destination := accounts[input.DestinationAccountID]

	if err := source.CheckUsable(input.OwnerID); err != nil {
		return nil, err
	}
	if err := destination.CheckUsable(input.OwnerID); err != nil {
		return nil, err
	}
	if err := source.ValidateTransferOut(input.Amount.Add(input.Fee)); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	outgoing := &domain.Movement{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		AccountID: source.ID,
		Amount:    input.Amount,
		CreatedAt: now,
	}
	incoming := &domain.Movement{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		AccountID: destination.ID,
		Amount:    input.Amount,
		CreatedAt: now,
	}
	outgoing.Detail = domain.Transfer{
		Direction:             domain.DirectionOutgoing,
		CounterpartyAccountID: destination.ID,
		LinkedMovementID:      incoming.ID,
		Fee:                   input.Fee,
	}
	incoming.Detail = domain.Transfer{
		Direction:             domain.DirectionIncoming,
		CounterpartyAccountID: source.ID,
		LinkedMovementID:      outgoing.ID,
		Fee:                   decimal.Zero,
	}

	input.applyTo(outgoing, now)
	input.applyTo(incoming, now)
	incoming.Description = strings.TrimSpace(input.IncomingDescription)
	if incoming.Description == "" {
		incoming.Description = "Transfer from " + source.Name
	}
	incoming.ReceiptRef = ""

	for _, m := range []*domain.Movement{outgoing, incoming} {
		if err := uc.movementRepo.Create(ctx, tx, m); err != nil {
			return nil, err
		}
	}

	if err := uc.adjustBalance(ctx, tx, source, outgoing.SignedEffect(), now); err != nil {
		return nil, err
	}
	if err := uc.adjustBalance(ctx, tx, destination, incoming.SignedEffect(), now); err != nil {
		return nil, err
	}

	for _, m := range []*domain.Movement{outgoing, incoming} {
		if err := uc.trail(ctx, tx, input.OwnerID, domain.AuditActionMovementTransfer, domain.EventTypeMovementRecorded, nil, m, ""); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	return &TransferResult{Outgoing: outgoing, Incoming: incoming}, nil
}

// EditMovement reverses the movement's original balance effect on its
// original account and applies the new effect on the (possibly new)
// account. Editing a transfer leg updates both legs.
func (uc *LedgerUseCase) EditMovement(ctx context.Context, input EditMovementInput) (*domain.Movement, error) {
	const op = "edit_movement"

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(op, err)
	}
	if input.Fee != nil {
		if err := domain.ValidateFee(*input.Fee); err != nil {
			return nil, uc.reject(op, err)
		}
	}
	if err := input.validate(); err != nil {
		return nil, uc.reject(op, err)
	}
	if err := domain.ValidateText("reason", input.Reason, domain.MaxReasonLength); err != nil {
		return nil, uc.reject(op, err)
	}

	var movement *domain.Movement
	err := uc.run(ctx, op, func(ctx context.Context) error {
		var err error
		movement, err = uc.editMovementTx(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug().
		Str("movement_id", movement.ID).
		Str("amount", movement.Amount.StringFixed(2)).
		Msg("movement edited")

	return movement, nil
}

func (uc *LedgerUseCase) editMovementTx(ctx context.Context, input EditMovementInput) (*domain.Movement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	legs, err := uc.lockMovement(ctx, tx, input.OwnerID, input.MovementID)
	if err != nil {
		return nil, err
	}
	target := legs[0]

	now := uc.clock.Now()
	if err := target.CheckWindow(now, uc.editWindow, domain.ErrEditWindowExpired); err != nil {
		return nil, err
	}

	newAccountID := target.AccountID
	if input.AccountID != "" && input.AccountID != target.AccountID {
		if target.Kind() == domain.KindTransfer {
			return nil, fmt.Errorf("%w: the accounts of a transfer cannot be changed", domain.ErrValidation)
		}
		newAccountID = input.AccountID
	}

	ids := []string{newAccountID}
	for _, leg := range legs {
		ids = append(ids, leg.AccountID)
	}
	accounts, err := uc.lockAccounts(ctx, tx, ids...)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if err := acc.CheckOwner(input.OwnerID); err != nil {
			return nil, err
		}
	}
	if err := accounts[newAccountID].CheckUsable(input.OwnerID); err != nil {
		return nil, err
	}

	before := make([]domain.JSON, len(legs))
	balances := make(map[string]decimal.Decimal, len(accounts))
	for id, acc := range accounts {
		balances[id] = acc.CurrentBalance
	}

	// Reverse every leg on its original account.
	for i, leg := range legs {
		before[i] = domain.MovementState(leg)
		balances[leg.AccountID] = balances[leg.AccountID].Sub(leg.SignedEffect())
	}

	target.AccountID = newAccountID
	modification := &domain.Modification{At: now, By: input.OwnerID, Reason: strings.TrimSpace(input.Reason)}
	for _, leg := range legs {
		applyEdit(leg, leg == target, input, now)
		leg.Modified = modification
		balances[leg.AccountID] = balances[leg.AccountID].Add(leg.SignedEffect())
	}

	for _, leg := range legs {
		if err := uc.movementRepo.Update(ctx, tx, leg); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(accounts) {
		acc := accounts[id]
		if balances[id].Equal(acc.CurrentBalance) {
			continue
		}
		if err := uc.adjustBalance(ctx, tx, acc, balances[id].Sub(acc.CurrentBalance), now); err != nil {
			return nil, err
		}
	}
	for i, leg := range legs {
		if err := uc.trail(ctx, tx, input.OwnerID, domain.AuditActionMovementEdit, domain.EventTypeMovementEdited, before[i], leg, modification.Reason); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	return target, nil
}

// applyEdit writes the new field set onto one movement. Only the addressed
// leg of a transfer takes the description and receipt.
func applyEdit(m *domain.Movement, addressed bool, input EditMovementInput, now time.Time) {
	description, receipt, occurredAt := m.Description, m.ReceiptRef, m.OccurredAt
	input.applyTo(m, now)
	if !addressed {
		m.Description, m.ReceiptRef = description, receipt
	}
	if input.OccurredAt.IsZero() {
		m.OccurredAt = occurredAt
	}

	m.Amount = input.Amount
	if t, ok := m.TransferLeg(); ok && input.Fee != nil && t.Direction == domain.DirectionOutgoing {
		t.Fee = *input.Fee
		m.Detail = t
	}
}

// DeleteMovement reverses the movement's balance effect and tombstones it.
// Deleting a transfer leg tombstones both legs.
func (uc *LedgerUseCase) DeleteMovement(ctx context.Context, input DeleteMovementInput) (*domain.Movement, error) {
	const op = "delete_movement"

	if err := domain.ValidateRequired("reason", input.Reason, domain.MaxReasonLength); err != nil {
		return nil, uc.reject(op, err)
	}

	var movement *domain.Movement
	err := uc.run(ctx, op, func(ctx context.Context) error {
		var err error
		movement, err = uc.deleteMovementTx(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug().
		Str("movement_id", movement.ID).
		Str("reason", movement.Deleted.Reason).
		Msg("movement deleted")

	return movement, nil
}

func (uc *LedgerUseCase) deleteMovementTx(ctx context.Context, input DeleteMovementInput) (*domain.Movement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	defer tx.Rollback(ctx)

	legs, err := uc.lockMovement(ctx, tx, input.OwnerID, input.MovementID)
	if err != nil {
		return nil, err
	}
	target := legs[0]

	now := uc.clock.Now()
	if err := target.CheckWindow(now, uc.deleteWindow, domain.ErrDeleteWindowExpired); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(legs))
	for _, leg := range legs {
		ids = append(ids, leg.AccountID)
	}
	accounts, err := uc.lockAccounts(ctx, tx, ids...)
	if err != nil {
		return nil, err
	}

	deletion := &domain.Deletion{At: now, By: input.OwnerID, Reason: strings.TrimSpace(input.Reason)}
	for _, leg := range legs {
		before := domain.MovementState(leg)

		if err := uc.adjustBalance(ctx, tx, accounts[leg.AccountID], leg.SignedEffect().Neg(), now); err != nil {
			return nil, err
		}

		leg.Deleted = deletion
		if err := uc.movementRepo.Update(ctx, tx, leg); err != nil {
			return nil, err
		}
		if err := uc.trail(ctx, tx, input.OwnerID, domain.AuditActionMovementDelete, domain.EventTypeMovementDeleted, before, leg, deletion.Reason); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	return target, nil
}

// GetMovement returns a movement owned by ownerID. Tombstones are returned
// only when includeDeleted is set.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, ownerID, id string, includeDeleted bool) (*domain.Movement, error) {
	movement, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movement.OwnerID != ownerID {
		return nil, domain.ErrNotOwned
	}
	if movement.IsDeleted() && !includeDeleted {
		return nil, domain.ErrMovementNotFound
	}
	return movement, nil
}

// lockMovement locks the addressed movement and, for a transfer, its linked
// leg. Legs are locked in id order; the addressed movement is returned first.
func (uc *LedgerUseCase) lockMovement(ctx context.Context, tx Transaction, ownerID, id string) ([]*domain.Movement, error) {
	peek, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := []string{id}
	if t, ok := peek.TransferLeg(); ok && t.LinkedMovementID != "" {
		ids = append(ids, t.LinkedMovementID)
		slices.Sort(ids)
	}

	locked := make(map[string]*domain.Movement, len(ids))
	for _, mid := range ids {
		m, err := uc.movementRepo.GetByIDForUpdate(ctx, tx, mid)
		if err != nil {
			return nil, err
		}
		locked[mid] = m
	}

	target := locked[id]
	if target.OwnerID != ownerID {
		return nil, domain.ErrNotOwned
	}
	if target.IsDeleted() {
		return nil, domain.ErrAlreadyDeleted
	}

	legs := []*domain.Movement{target}
	for _, mid := range ids {
		if mid != id && !locked[mid].IsDeleted() {
			legs = append(legs, locked[mid])
		}
	}
	return legs, nil
}

// lockAccounts locks the distinct accounts in ascending id order.
func (uc *LedgerUseCase) lockAccounts(ctx context.Context, tx Transaction, ids ...string) (map[string]*domain.Account, error) {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, unique)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(unique) {
		return nil, domain.ErrAccountNotFound
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc
	}
	return byID, nil
}

func (uc *LedgerUseCase) adjustBalance(ctx context.Context, tx Transaction, account *domain.Account, delta decimal.Decimal, now time.Time) error {
	balance := account.ApplyDelta(delta)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balance, now); err != nil {
		return err
	}
	account.CurrentBalance = balance
	account.UpdatedAt = now
	return nil
}

// trail writes the audit row and the outbox event of a movement mutation
// in the caller's unit of work.
func (uc *LedgerUseCase) trail(
	ctx context.Context,
	tx Transaction,
	ownerID string,
	action domain.AuditAction,
	eventType string,
	before domain.JSON,
	after *domain.Movement,
	reason string,
) error {
	now := uc.clock.Now()

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			OwnerID:      ownerID,
			Action:       action,
			ResourceType: domain.ResourceMovement,
			ResourceID:   after.ID,
			RequestID:    RequestIDFromContext(ctx),
			Reason:       reason,
			BeforeState:  before,
			AfterState:   domain.MovementState(after),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   after.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     eventType,
			Payload:       domain.NewMovementEvent(after, reason, now),
			CreatedAt:     now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	return nil
}

// run executes one unit of work under DefaultTransactionTimeout, retrying
// transient storage conflicts.
func (uc *LedgerUseCase) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	start := time.Now()
	attempt := func() error { return fn(ctx) }

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}
	if uc.metrics != nil {
		uc.metrics.RecordOperationDuration(op, time.Since(start))
	}
	if err != nil {
		return uc.reject(op, err)
	}
	return nil
}

// reject logs and counts a failed operation and normalizes untyped
// failures to storage failures.
func (uc *LedgerUseCase) reject(op string, err error) error {
	if !domain.IsBusinessError(err) {
		err = domain.StorageError(err)
		uc.logger.Error().Err(err).Str("operation", op).Msg("ledger operation failed")
	} else {
		uc.logger.Warn().Err(err).Str("operation", op).Msg("ledger operation rejected")
	}
	if uc.metrics != nil {
		uc.metrics.RecordRejection(op, rejectionReason(err))
	}
	return err
}

func (uc *LedgerUseCase) recordMetric(m *domain.Movement) {
	if uc.metrics != nil {
		uc.metrics.RecordMovement(string(m.Kind()), m.Amount)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrSameAccount):
		return "same_account"
	case errors.Is(err, domain.ErrEditWindowExpired), errors.Is(err, domain.ErrDeleteWindowExpired):
		return "window_expired"
	case errors.Is(err, domain.ErrNotOwned):
		return "not_owned"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "storage"
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
