package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key does not exist or expired.
var ErrCacheMiss = errors.New("cache miss")

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts in the order given; callers pass ids sorted.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
	// ExistsByName reports whether ownerID has another account whose
	// normalized name equals name. excludeID is ignored when empty.
	ExistsByName(ctx context.Context, tx Transaction, ownerID, name, excludeID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// MovementRepository defines data access for movements.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	// Update rewrites every mutable column, including audit and tombstone fields.
	Update(ctx context.Context, tx Transaction, movement *domain.Movement) error
	GetByID(ctx context.Context, id string) (*domain.Movement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Movement, error)
	// ListByOwner returns the owner's non-deleted movements.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Movement, error)
	// ListByAccount returns movements booked on accountID, tombstones included.
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Movement, error)
	// CountReferences counts movements, deleted or not, whose account or
	// destination account is accountID.
	CountReferences(ctx context.Context, tx Transaction, accountID string) (int, error)
	ListCategories(ctx context.Context, ownerID string) ([]string, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents an atomic unit of work.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a unit of work on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock is the engine's time source.
type Clock interface {
	Now() time.Time
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns and removes a key in one step, so only one caller
	// ever receives a given value.
	Take(ctx context.Context, key string) ([]byte, error)
}

// IdempotencyPending is the value held under an idempotency key while
// the first request carrying it is in flight.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics receives best-effort counters from the engine.
type LedgerMetrics interface {
	RecordMovement(kind string, amount decimal.Decimal)
	RecordRejection(operation, reason string)
	RecordOperationDuration(operation string, d time.Duration)
}
