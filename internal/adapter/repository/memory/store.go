// Package memory is an in-process implementation of the repositories.
// Units of work are serialized and rolled back through an undo log.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// Store holds every table. One unit of work runs at a time; plain reads
// run concurrently with it.
type Store struct {
	writer chan struct{}

	mu        sync.RWMutex
	accounts  map[string]*domain.Account
	movements map[string]*domain.Movement
	audit     []*domain.AuditLog
	outbox    map[string]*domain.OutboxEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		writer:    make(chan struct{}, 1),
		accounts:  make(map[string]*domain.Account),
		movements: make(map[string]*domain.Movement),
		outbox:    make(map[string]*domain.OutboxEvent),
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for the writer slot and starts a unit of work.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.store.writer <- struct{}{}:
		return &Tx{store: m.store}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tx is an in-memory unit of work.
type Tx struct {
	store *Store
	undo  []func()
	done  atomic.Bool
}

// Commit keeps every write and releases the writer slot.
func (t *Tx) Commit(ctx context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return ErrTxDone
	}
	t.undo = nil
	<-t.store.writer
	return nil
}

// Rollback reverts every write in reverse order. Rolling back a finished
// transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}

	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()

	t.undo = nil
	<-t.store.writer
	return nil
}

// write runs fn under the table lock and records its undo step.
func (s *Store) write(tx usecase.Transaction, fn func() (undo func(), err error)) error {
	t, err := s.activeTx(tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	undo, err := fn()
	if err != nil {
		return err
	}
	if undo != nil {
		t.undo = append(t.undo, undo)
	}
	return nil
}

func (s *Store) activeTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, domain.StorageError(fmt.Errorf("foreign transaction %T", tx))
	}
	if t.done.Load() {
		return nil, domain.StorageError(ErrTxDone)
	}
	return t, nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func cloneMovement(m *domain.Movement) *domain.Movement {
	c := *m
	if m.Modified != nil {
		mod := *m.Modified
		c.Modified = &mod
	}
	if m.Deleted != nil {
		del := *m.Deleted
		c.Deleted = &del
	}
	return &c
}
