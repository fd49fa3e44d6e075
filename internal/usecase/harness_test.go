package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/repository/memory"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

const owner = "owner-1"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store     *memory.Store
	accRepo   *memory.AccountRepository
	movRepo   *memory.MovementRepository
	auditRepo *memory.AuditRepository
	outbox    *memory.OutboxRepository
	clock     *fakeClock
	ledger    *usecase.LedgerUseCase
	accounts  *usecase.AccountUseCase
	query     *usecase.QueryUseCase
	recon     *usecase.ReconciliationUseCase
	transfers *usecase.TransferUseCase
}

type harnessOption func(*usecase.LedgerConfig)

func withOutbox(o usecase.OutboxRepository) harnessOption {
	return func(c *usecase.LedgerConfig) { c.OutboxRepo = o }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	store := memory.NewStore()
	h := &harness{
		store:     store,
		accRepo:   memory.NewAccountRepository(store),
		movRepo:   memory.NewMovementRepository(store),
		auditRepo: memory.NewAuditRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		clock:     &fakeClock{now: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)},
	}
	txm := memory.NewTxManager(store)
	ids := memory.NewSequenceGenerator("id-")

	cfg := usecase.LedgerConfig{
		TxManager:    txm,
		AccountRepo:  h.accRepo,
		MovementRepo: h.movRepo,
		AuditRepo:    h.auditRepo,
		OutboxRepo:   h.outbox,
		IDGen:        ids,
		Clock:        h.clock,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h.ledger = usecase.NewLedgerUseCase(cfg)
	h.accounts = usecase.NewAccountUseCase(usecase.AccountConfig{
		TxManager:    txm,
		AccountRepo:  h.accRepo,
		MovementRepo: h.movRepo,
		AuditRepo:    h.auditRepo,
		OutboxRepo:   h.outbox,
		IDGen:        ids,
		Clock:        h.clock,
	})
	h.query = usecase.NewQueryUseCase(h.accRepo, h.movRepo, h.clock, 20, 100)
	h.recon = usecase.NewReconciliationUseCase(txm, h.accRepo, h.movRepo, h.auditRepo, ids, h.clock, nil)
	h.transfers = usecase.NewTransferUseCase(h.ledger, h.accRepo, memory.NewCache(h.clock.Now), h.clock, time.Minute)

	return h
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (h *harness) account(t *testing.T, name string, typ domain.AccountType, initial string) *domain.Account {
	t.Helper()
	a, err := h.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		OwnerID:        owner,
		Name:           name,
		Type:           string(typ),
		Currency:       "USD",
		InitialBalance: dec(initial),
	})
	require.NoError(t, err)
	return a
}

func (h *harness) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	a, err := h.accRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.CurrentBalance
}

func (h *harness) requireBalance(t *testing.T, id, want string) {
	t.Helper()
	got := h.balance(t, id)
	require.Truef(t, got.Equal(dec(want)), "account %s: expected balance %s, got %s", id, want, got.StringFixed(2))
}

func (h *harness) credit(t *testing.T, accountID, amount string) *domain.Movement {
	t.Helper()
	m, err := h.ledger.RecordCredit(context.Background(), movementInput(accountID, amount, "Salary"))
	require.NoError(t, err)
	return m
}

func (h *harness) debit(t *testing.T, accountID, amount string) *domain.Movement {
	t.Helper()
	m, err := h.ledger.RecordDebit(context.Background(), movementInput(accountID, amount, "Groceries"))
	require.NoError(t, err)
	return m
}

func (h *harness) transfer(t *testing.T, from, to, amount, fee string) *usecase.TransferResult {
	t.Helper()
	r, err := h.ledger.RecordTransfer(context.Background(), transferInput(from, to, amount, fee))
	require.NoError(t, err)
	return r
}

// requireConsistent checks current == initial + Σ effects for every account.
func (h *harness) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := h.recon.ReconcileAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Discrepancies, "balance drift after engine operations")
}

func movementInput(accountID, amount, description string) usecase.RecordMovementInput {
	return usecase.RecordMovementInput{
		OwnerID:   owner,
		AccountID: accountID,
		Amount:    dec(amount),
		MovementDetails: usecase.MovementDetails{
			Description: description,
			Category:    "General",
		},
	}
}

func transferInput(from, to, amount, fee string) usecase.RecordTransferInput {
	return usecase.RecordTransferInput{
		OwnerID:              owner,
		SourceAccountID:      from,
		DestinationAccountID: to,
		Amount:               dec(amount),
		Fee:                  dec(fee),
		MovementDetails: usecase.MovementDetails{
			Description: "Move to savings",
			Category:    domain.CategorySavingsTransfer,
		},
	}
}

func editInput(m *domain.Movement, amount string) usecase.EditMovementInput {
	return usecase.EditMovementInput{
		OwnerID:    owner,
		MovementID: m.ID,
		Amount:     dec(amount),
		MovementDetails: usecase.MovementDetails{
			Description: m.Description,
			OccurredAt:  m.OccurredAt,
			Category:    m.Category,
		},
		Reason: "typo",
	}
}
