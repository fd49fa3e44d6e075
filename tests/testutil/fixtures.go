package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/repository/postgres"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	infraPostgres "github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// TestDB provides a migrated test database.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the embedded
// migrations. Tests are skipped when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infraPostgres.NewMigrator(dbURL, "", zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return &TestDB{Pool: pool, t: t}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events CASCADE;
		TRUNCATE TABLE audit_logs CASCADE;
		TRUNCATE TABLE movements CASCADE;
		TRUNCATE TABLE accounts CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Services bundles the use cases wired to the test database.
type Services struct {
	Accounts  *usecase.AccountUseCase
	Ledger    *usecase.LedgerUseCase
	Queries   *usecase.QueryUseCase
	Recon     *usecase.ReconciliationUseCase
	AuditRepo *postgres.AuditRepository
	Outbox    *postgres.OutboxRepository
	Movements *postgres.MovementRepository
}

// NewServices wires the postgres repositories into the use cases.
func (db *TestDB) NewServices() *Services {
	lg := zerolog.Nop()
	txManager := postgres.NewTxManager(db.Pool)
	accountRepo := postgres.NewAccountRepository(db.Pool)
	movementRepo := postgres.NewMovementRepository(db.Pool)
	auditRepo := postgres.NewAuditRepository(db.Pool)
	outboxRepo := postgres.NewOutboxRepository(db.Pool)
	idGen := postgres.NewULIDGenerator()
	clock := usecase.SystemClock{}

	return &Services{
		Accounts: usecase.NewAccountUseCase(usecase.AccountConfig{
			TxManager:    txManager,
			AccountRepo:  accountRepo,
			MovementRepo: movementRepo,
			AuditRepo:    auditRepo,
			OutboxRepo:   outboxRepo,
			IDGen:        idGen,
			Logger:       &lg,
		}),
		Ledger: usecase.NewLedgerUseCase(usecase.LedgerConfig{
			TxManager:    txManager,
			AccountRepo:  accountRepo,
			MovementRepo: movementRepo,
			AuditRepo:    auditRepo,
			OutboxRepo:   outboxRepo,
			IDGen:        idGen,
			Retrier:      postgres.NewRetrier(lg),
			Logger:       &lg,
		}),
		Queries:   usecase.NewQueryUseCase(accountRepo, movementRepo, clock, 20, 100),
		Recon:     usecase.NewReconciliationUseCase(txManager, accountRepo, movementRepo, auditRepo, idGen, clock, &lg),
		AuditRepo: auditRepo,
		Outbox:    outboxRepo,
		Movements: movementRepo,
	}
}

// CreateTestAccount creates an account with the given opening balance.
func (s *Services) CreateTestAccount(t *testing.T, ownerID, name string, balance decimal.Decimal) *domain.Account {
	t.Helper()

	account, err := s.Accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		OwnerID:        ownerID,
		Name:           name,
		Type:           string(domain.AccountTypeChecking),
		Currency:       "USD",
		InitialBalance: balance,
	})
	if err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}
