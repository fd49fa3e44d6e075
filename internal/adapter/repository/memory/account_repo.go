package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.store.write(tx, func() (func(), error) {
		key := domain.NormalizeAccountName(account.Name)
		for _, a := range r.store.accounts {
			if a.OwnerID == account.OwnerID && domain.NormalizeAccountName(a.Name) == key {
				return nil, domain.ErrDuplicateName
			}
		}

		r.store.accounts[account.ID] = cloneAccount(account)
		return func() { delete(r.store.accounts, account.ID) }, nil
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// GetByIDForUpdate retrieves an account inside a unit of work. The writer
// slot already excludes other writers.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if _, err := r.store.activeTx(tx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByIDsForUpdate retrieves the existing accounts among ids, in the given order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if _, err := r.store.activeTx(tx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.store.accounts[id]; ok {
			accounts = append(accounts, cloneAccount(a))
		}
	}
	return accounts, nil
}

// Update rewrites the descriptive attributes and active flag.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.store.write(tx, func() (func(), error) {
		current, ok := r.store.accounts[account.ID]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		prev := cloneAccount(current)

		current.Name = account.Name
		current.Description = account.Description
		current.Type = account.Type
		current.Currency = account.Currency
		current.Active = account.Active
		current.UpdatedAt = account.UpdatedAt

		return func() { r.store.accounts[account.ID] = prev }, nil
	})
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	return r.store.write(tx, func() (func(), error) {
		current, ok := r.store.accounts[id]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		prev := cloneAccount(current)

		current.CurrentBalance = balance
		current.UpdatedAt = updatedAt

		return func() { r.store.accounts[id] = prev }, nil
	})
}

// Delete removes an account.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	return r.store.write(tx, func() (func(), error) {
		prev, ok := r.store.accounts[id]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		delete(r.store.accounts, id)

		return func() { r.store.accounts[id] = prev }, nil
	})
}

// ExistsByName reports whether the owner has another account with the
// normalized name.
func (r *AccountRepository) ExistsByName(ctx context.Context, tx usecase.Transaction, ownerID, name, excludeID string) (bool, error) {
	if _, err := r.store.activeTx(tx); err != nil {
		return false, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.accounts {
		if a.OwnerID == ownerID && a.ID != excludeID && domain.NormalizeAccountName(a.Name) == name {
			return true, nil
		}
	}
	return false, nil
}

// ListByOwner lists the owner's accounts ordered by name.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0)
	for _, a := range r.store.accounts {
		if a.OwnerID == ownerID {
			accounts = append(accounts, cloneAccount(a))
		}
	}

	slices.SortFunc(accounts, func(a, b *domain.Account) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return accounts, nil
}

// List lists all accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		accounts = append(accounts, cloneAccount(a))
	}
	slices.SortFunc(accounts, func(a, b *domain.Account) int { return cmp.Compare(a.ID, b.ID) })

	if offset >= len(accounts) {
		return []*domain.Account{}, nil
	}
	end := min(offset+limit, len(accounts))
	return accounts[offset:end], nil
}
