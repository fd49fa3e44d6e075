package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// Date accepts either a calendar date ("2024-06-01") or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses the two accepted date layouts. Empty yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, s)
	}
	return t, nil
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(ownerID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID:        ownerID,
		Name:           r.Name,
		Description:    r.Description,
		Type:           r.Type,
		Currency:       r.Currency,
		InitialBalance: r.InitialBalance,
	}
}

// UpdateAccountRequest changes the attributes that are present.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Currency    *string `json:"currency"`
	Active      *bool   `json:"active"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(ownerID, accountID string) usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		OwnerID:     ownerID,
		AccountID:   accountID,
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Currency:    r.Currency,
		Active:      r.Active,
	}
}

// MovementDetailsRequest holds the descriptive fields shared by every kind.
type MovementDetailsRequest struct {
	Description string `json:"description"`
	OccurredAt  Date   `json:"occurred_at"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
	Reference   string `json:"reference"`
	Recurring   bool   `json:"recurring"`
	ReceiptRef  string `json:"receipt_ref"`
}

func (r MovementDetailsRequest) toDetails() usecase.MovementDetails {
	return usecase.MovementDetails{
		Description: r.Description,
		OccurredAt:  r.OccurredAt.Time,
		Category:    r.Category,
		Notes:       r.Notes,
		Reference:   r.Reference,
		Recurring:   r.Recurring,
		ReceiptRef:  r.ReceiptRef,
	}
}

// RecordMovementRequest records a credit or a debit.
type RecordMovementRequest struct {
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	MovementDetailsRequest
}

// ToUseCaseInput converts to use case input.
func (r *RecordMovementRequest) ToUseCaseInput(ownerID string) usecase.RecordMovementInput {
	return usecase.RecordMovementInput{
		OwnerID:         ownerID,
		AccountID:       r.AccountID,
		Amount:          r.Amount,
		MovementDetails: r.toDetails(),
	}
}

// TransferRequest records or previews a transfer.
type TransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Fee                  decimal.Decimal `json:"fee"`
	IncomingDescription  string          `json:"incoming_description"`
	MovementDetailsRequest
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(ownerID string) usecase.RecordTransferInput {
	return usecase.RecordTransferInput{
		OwnerID:              ownerID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Fee:                  r.Fee,
		MovementDetails:      r.toDetails(),
		IncomingDescription:  r.IncomingDescription,
	}
}

// ConfirmTransferRequest confirms a previewed transfer.
type ConfirmTransferRequest struct {
	Token string `json:"token"`
}

// EditMovementRequest carries the complete new field set of a movement.
type EditMovementRequest struct {
	AccountID string           `json:"account_id"`
	Amount    decimal.Decimal  `json:"amount"`
	Fee       *decimal.Decimal `json:"fee"`
	Reason    string           `json:"reason"`
	MovementDetailsRequest
}

// ToUseCaseInput converts to use case input.
func (r *EditMovementRequest) ToUseCaseInput(ownerID, movementID string) usecase.EditMovementInput {
	return usecase.EditMovementInput{
		OwnerID:         ownerID,
		MovementID:      movementID,
		AccountID:       r.AccountID,
		Amount:          r.Amount,
		Fee:             r.Fee,
		MovementDetails: r.toDetails(),
		Reason:          r.Reason,
	}
}

// DeleteMovementRequest carries the mandatory deletion reason.
type DeleteMovementRequest struct {
	Reason string `json:"reason"`
}
