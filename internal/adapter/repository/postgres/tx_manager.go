package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

var errForeignTx = errors.New("postgres: foreign transaction")

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Every unit of work
// runs in one READ COMMITTED transaction; FOR UPDATE row locks serialize
// writers touching the same accounts.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a TxManager over pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin opens a unit of work.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx is a unit of work. After a successful Commit, Rollback is a no-op
// so callers can defer it unconditionally.
type Tx struct {
	tx        pgx.Tx
	committed bool
}

// Commit commits the unit of work.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return err
	}
	t.committed = true
	return nil
}

// Rollback discards the unit of work unless it was committed.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// txFrom unwraps a usecase.Transaction opened by TxManager.
func txFrom(tx usecase.Transaction) (pgx.Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, domain.StorageError(errForeignTx)
	}
	return t.tx, nil
}
