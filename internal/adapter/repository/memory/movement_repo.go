package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	store *Store
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(store *Store) *MovementRepository {
	return &MovementRepository{store: store}
}

// Create stores a new movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	return r.store.write(tx, func() (func(), error) {
		if _, exists := r.store.movements[movement.ID]; exists {
			return nil, domain.StorageError(fmt.Errorf("movement %s already exists", movement.ID))
		}
		r.store.movements[movement.ID] = cloneMovement(movement)
		return func() { delete(r.store.movements, movement.ID) }, nil
	})
}

// Update replaces a stored movement.
func (r *MovementRepository) Update(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	return r.store.write(tx, func() (func(), error) {
		prev, ok := r.store.movements[movement.ID]
		if !ok {
			return nil, domain.ErrMovementNotFound
		}
		r.store.movements[movement.ID] = cloneMovement(movement)
		return func() { r.store.movements[movement.ID] = prev }, nil
	})
}

// GetByID retrieves a movement, tombstones included.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.movements[id]
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	return cloneMovement(m), nil
}

// GetByIDForUpdate retrieves a movement inside a unit of work.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error) {
	if _, err := r.store.activeTx(tx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ListByOwner returns the owner's non-deleted movements.
func (r *MovementRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Movement, error) {
	return r.list(func(m *domain.Movement) bool {
		return m.OwnerID == ownerID && !m.IsDeleted()
	}), nil
}

// ListByAccount returns every movement booked on the account.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Movement, error) {
	return r.list(func(m *domain.Movement) bool {
		return m.AccountID == accountID
	}), nil
}

// CountReferences counts movements touching the account on either side.
func (r *MovementRepository) CountReferences(ctx context.Context, tx usecase.Transaction, accountID string) (int, error) {
	if _, err := r.store.activeTx(tx); err != nil {
		return 0, err
	}
	return len(r.list(func(m *domain.Movement) bool { return m.References(accountID) })), nil
}

// ListCategories returns the distinct categories of the owner's movements.
func (r *MovementRepository) ListCategories(ctx context.Context, ownerID string) ([]string, error) {
	var categories []string
	for _, m := range r.list(func(m *domain.Movement) bool {
		return m.OwnerID == ownerID && !m.IsDeleted() && m.Category != ""
	}) {
		categories = append(categories, m.Category)
	}
	slices.Sort(categories)
	return slices.Compact(categories), nil
}

func (r *MovementRepository) list(keep func(*domain.Movement) bool) []*domain.Movement {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Movement, 0)
	for _, m := range r.store.movements {
		if keep(m) {
			out = append(out, cloneMovement(m))
		}
	}

	slices.SortFunc(out, func(a, b *domain.Movement) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
