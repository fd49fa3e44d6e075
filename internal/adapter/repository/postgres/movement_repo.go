package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres/generated"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{queries: generated.New(db)}
}

// Create inserts a movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row := movementToRow(movement)
	err = queries.CreateMovement(ctx, generated.CreateMovementParams(row))

	return mapError(err, nil)
}

// Update rewrites every mutable column of a movement.
func (r *MovementRepository) Update(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row := movementToRow(movement)
	err = queries.UpdateMovement(ctx, generated.UpdateMovementParams{
		ID:                 row.ID,
		AccountID:          row.AccountID,
		Description:        row.Description,
		Amount:             row.Amount,
		Fee:                row.Fee,
		OccurredAt:         row.OccurredAt,
		Category:           row.Category,
		Notes:              row.Notes,
		Reference:          row.Reference,
		Recurring:          row.Recurring,
		ReceiptRef:         row.ReceiptRef,
		ModifiedAt:         row.ModifiedAt,
		ModifiedBy:         row.ModifiedBy,
		ModificationReason: row.ModificationReason,
		DeletedAt:          row.DeletedAt,
		DeletedBy:          row.DeletedBy,
		DeletionReason:     row.DeletionReason,
	})

	return mapError(err, nil)
}

// GetByID retrieves a movement, tombstone or not.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	row, err := r.queries.GetMovementByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrMovementNotFound)
	}

	return rowToMovement(row)
}

// GetByIDForUpdate retrieves a movement with a FOR UPDATE lock.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetMovementByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrMovementNotFound)
	}

	return rowToMovement(row)
}

// ListByOwner returns the owner's non-deleted movements in creation order.
func (r *MovementRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Movement, error) {
	rows, err := r.queries.ListMovementsByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToMovements(rows)
}

// ListByAccount returns every movement booked on the account.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Movement, error) {
	rows, err := r.queries.ListMovementsByAccount(ctx, accountID)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return rowsToMovements(rows)
}

// CountReferences counts movements on either side of the account.
func (r *MovementRepository) CountReferences(ctx context.Context, tx usecase.Transaction, accountID string) (int, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return 0, err
	}

	count, err := queries.CountMovementReferences(ctx, accountID)
	if err != nil {
		return 0, mapError(err, nil)
	}

	return int(count), nil
}

// ListCategories returns the distinct categories the owner has used.
func (r *MovementRepository) ListCategories(ctx context.Context, ownerID string) ([]string, error) {
	categories, err := r.queries.ListMovementCategories(ctx, ownerID)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return categories, nil
}

func rowsToMovements(rows []generated.Movement) ([]*domain.Movement, error) {
	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		m, err := rowToMovement(row)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}

	return movements, nil
}

func movementToRow(m *domain.Movement) generated.Movement {
	row := generated.Movement{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		AccountID:   m.AccountID,
		Kind:        string(m.Kind()),
		Description: m.Description,
		Amount:      decimalToNumeric(m.Amount),
		Fee:         decimalToNumeric(decimal.Zero),
		OccurredAt:  timeToPgTimestamptz(m.OccurredAt),
		CreatedAt:   timeToPgTimestamptz(m.CreatedAt),
		Category:    m.Category,
		Notes:       m.Notes,
		Reference:   m.Reference,
		Recurring:   m.Recurring,
		ReceiptRef:  m.ReceiptRef,
	}

	if t, ok := m.TransferLeg(); ok {
		row.Direction = optionalText(string(t.Direction), true)
		row.DestinationAccountID = optionalText(t.CounterpartyAccountID, true)
		row.LinkedMovementID = optionalText(t.LinkedMovementID, t.LinkedMovementID != "")
		row.Fee = decimalToNumeric(t.Fee)
	}

	if m.Modified != nil {
		row.ModifiedAt = timeToPgTimestamptz(m.Modified.At)
		row.ModifiedBy = optionalText(m.Modified.By, true)
		row.ModificationReason = optionalText(m.Modified.Reason, true)
	}

	if m.Deleted != nil {
		row.DeletedAt = timeToPgTimestamptz(m.Deleted.At)
		row.DeletedBy = optionalText(m.Deleted.By, true)
		row.DeletionReason = optionalText(m.Deleted.Reason, true)
	}

	return row
}

func rowToMovement(row generated.Movement) (*domain.Movement, error) {
	m := &domain.Movement{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		AccountID:   row.AccountID,
		Description: row.Description,
		Amount:      numericToDecimal(row.Amount),
		OccurredAt:  row.OccurredAt.Time,
		CreatedAt:   row.CreatedAt.Time,
		Category:    row.Category,
		Notes:       row.Notes,
		Reference:   row.Reference,
		Recurring:   row.Recurring,
		ReceiptRef:  row.ReceiptRef,
	}

	switch domain.MovementKind(row.Kind) {
	case domain.KindCredit:
		m.Detail = domain.Credit{}
	case domain.KindDebit:
		m.Detail = domain.Debit{}
	case domain.KindTransfer:
		m.Detail = domain.Transfer{
			Direction:             domain.TransferDirection(row.Direction.String),
			CounterpartyAccountID: row.DestinationAccountID.String,
			LinkedMovementID:      row.LinkedMovementID.String,
			Fee:                   numericToDecimal(row.Fee),
		}
	default:
		return nil, domain.StorageError(fmt.Errorf("movement %s has unknown kind %q", row.ID, row.Kind))
	}

	if row.ModifiedAt.Valid {
		m.Modified = &domain.Modification{
			At:     row.ModifiedAt.Time,
			By:     textOrEmpty(row.ModifiedBy),
			Reason: textOrEmpty(row.ModificationReason),
		}
	}

	if row.DeletedAt.Valid {
		m.Deleted = &domain.Deletion{
			At:     row.DeletedAt.Time,
			By:     textOrEmpty(row.DeletedBy),
			Reason: textOrEmpty(row.DeletionReason),
		}
	}

	return m, nil
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
