package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres/generated"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts an account. A clash on the owner's normalized name
// surfaces as domain.ErrDuplicateName.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		OwnerID:        account.OwnerID,
		Name:           account.Name,
		Description:    account.Description,
		Type:           string(account.Type),
		Currency:       account.Currency,
		InitialBalance: decimalToNumeric(account.InitialBalance),
		CurrentBalance: decimalToNumeric(account.CurrentBalance),
		Active:         account.Active,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})

	return mapError(err, nil)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrAccountNotFound)
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrAccountNotFound)
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate locks several accounts in id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToAccounts(rows), nil
}

// Update rewrites the editable attributes of an account.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.UpdateAccount(ctx, generated.UpdateAccountParams{
		ID:          account.ID,
		Name:        account.Name,
		Description: account.Description,
		Type:        string(account.Type),
		Currency:    account.Currency,
		Active:      account.Active,
		UpdatedAt:   timeToPgTimestamptz(account.UpdatedAt),
	})

	return mapError(err, nil)
}

// UpdateBalance updates the current balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:             id,
		CurrentBalance: decimalToNumeric(balance),
		UpdatedAt:      timeToPgTimestamptz(updatedAt),
	})

	return mapError(err, nil)
}

// Delete hard-deletes an account row.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return mapError(queries.DeleteAccount(ctx, id), nil)
}

// ExistsByName checks the owner's normalized names, ignoring excludeID.
func (r *AccountRepository) ExistsByName(ctx context.Context, tx usecase.Transaction, ownerID, name, excludeID string) (bool, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return false, err
	}

	exists, err := queries.AccountNameExists(ctx, generated.AccountNameExistsParams{
		OwnerID:   ownerID,
		Name:      name,
		ExcludeID: excludeID,
	})
	if err != nil {
		return false, mapError(err, nil)
	}

	return exists, nil
}

// ListByOwner lists the owner's accounts, active or not, by name.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToAccounts(rows), nil
}

// List lists every account with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		Name:           row.Name,
		Description:    row.Description,
		Type:           domain.AccountType(row.Type),
		Currency:       row.Currency,
		InitialBalance: numericToDecimal(row.InitialBalance),
		CurrentBalance: numericToDecimal(row.CurrentBalance),
		Active:         row.Active,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
