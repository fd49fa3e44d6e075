package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

// ErrPreviewNotFound is returned when a transfer preview expired or never existed.
var ErrPreviewNotFound = fmt.Errorf("transfer preview %w", domain.ErrNotFound)

const previewKeyPrefix = "transfer-preview:"

// TransferUseCase handles the two-step preview/confirm flow on top of the
// ledger's atomic transfer.
type TransferUseCase struct {
	ledger      *LedgerUseCase
	accountRepo AccountRepository
	cache       Cache
	clock       Clock
	ttl         time.Duration
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(ledger *LedgerUseCase, accountRepo AccountRepository, cache Cache, clock Clock, ttl time.Duration) *TransferUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &TransferUseCase{
		ledger:      ledger,
		accountRepo: accountRepo,
		cache:       cache,
		clock:       clock,
		ttl:         ttl,
	}
}

// TransferPreview shows the projected effect of a transfer. Token is set
// only when the source can fund it.
type TransferPreview struct {
	Token                   string
	Request                 RecordTransferInput
	SourceName              string
	DestinationName         string
	Currency                string
	TotalDeduction          decimal.Decimal
	SourceBalance           decimal.Decimal
	DestinationBalance      decimal.Decimal
	SourceBalanceAfter      decimal.Decimal
	DestinationBalanceAfter decimal.Decimal
	HasSufficientFunds      bool
	ExpiresAt               time.Time
}

type storedPreview struct {
	OwnerID              string          `json:"owner_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Fee                  decimal.Decimal `json:"fee"`
	Description          string          `json:"description"`
	OccurredAt           time.Time       `json:"occurred_at"`
	Category             string          `json:"category"`
	Notes                string          `json:"notes"`
	Reference            string          `json:"reference"`
	Recurring            bool            `json:"recurring"`
	ReceiptRef           string          `json:"receipt_ref"`
	IncomingDescription  string          `json:"incoming_description"`
}

// PreviewTransfer validates a transfer and computes projected balances
// without locking or mutating anything.
func (uc *TransferUseCase) PreviewTransfer(ctx context.Context, input RecordTransferInput) (*TransferPreview, error) {
	if err := validateTransferInput(input); err != nil {
		return nil, err
	}

	source, err := uc.usableAccount(ctx, input.OwnerID, input.SourceAccountID)
	if err != nil {
		return nil, err
	}
	destination, err := uc.usableAccount(ctx, input.OwnerID, input.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	total := input.Amount.Add(input.Fee)
	preview := &TransferPreview{
		Request:                 input,
		SourceName:              source.Name,
		DestinationName:         destination.Name,
		Currency:                source.Currency,
		TotalDeduction:          total,
		SourceBalance:           source.CurrentBalance,
		DestinationBalance:      destination.CurrentBalance,
		SourceBalanceAfter:      source.CurrentBalance.Sub(total),
		DestinationBalanceAfter: destination.CurrentBalance.Add(input.Amount),
		HasSufficientFunds:      source.ValidateTransferOut(total) == nil,
	}
	if !preview.HasSufficientFunds {
		return preview, nil
	}

	payload, err := json.Marshal(storedPreview{
		OwnerID:              input.OwnerID,
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Fee:                  input.Fee,
		Description:          input.Description,
		OccurredAt:           input.OccurredAt,
		Category:             input.Category,
		Notes:                input.Notes,
		Reference:            input.Reference,
		Recurring:            input.Recurring,
		ReceiptRef:           input.ReceiptRef,
		IncomingDescription:  input.IncomingDescription,
	})
	if err != nil {
		return nil, err
	}

	preview.Token = uuid.NewString()
	preview.ExpiresAt = uc.clock.Now().Add(uc.ttl)
	if err := uc.cache.Set(ctx, previewKeyPrefix+preview.Token, payload, uc.ttl); err != nil {
		return nil, domain.StorageError(err)
	}

	return preview, nil
}

// ConfirmTransfer consumes a preview token and records the transfer. Funds
// and accounts are validated again at this point.
func (uc *TransferUseCase) ConfirmTransfer(ctx context.Context, ownerID, token string) (*TransferResult, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("%w: malformed preview token", domain.ErrValidation)
	}

	key := previewKeyPrefix + token
	payload, err := uc.cache.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil, ErrPreviewNotFound
	}
	if err != nil {
		return nil, domain.StorageError(err)
	}

	var stored storedPreview
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, domain.StorageError(err)
	}
	if stored.OwnerID != ownerID {
		return nil, domain.ErrNotOwned
	}

	// A concurrent confirm may have consumed the token since the read.
	if _, err := uc.cache.Take(ctx, key); errors.Is(err, ErrCacheMiss) {
		return nil, ErrPreviewNotFound
	} else if err != nil {
		return nil, domain.StorageError(err)
	}

	return uc.ledger.RecordTransfer(ctx, RecordTransferInput{
		OwnerID:              stored.OwnerID,
		SourceAccountID:      stored.SourceAccountID,
		DestinationAccountID: stored.DestinationAccountID,
		Amount:               stored.Amount,
		Fee:                  stored.Fee,
		MovementDetails: MovementDetails{
			Description: stored.Description,
			OccurredAt:  stored.OccurredAt,
			Category:    stored.Category,
			Notes:       stored.Notes,
			Reference:   stored.Reference,
			Recurring:   stored.Recurring,
			ReceiptRef:  stored.ReceiptRef,
		},
		IncomingDescription: stored.IncomingDescription,
	})
}

func (uc *TransferUseCase) usableAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.CheckUsable(ownerID); err != nil {
		return nil, err
	}
	return account, nil
}
