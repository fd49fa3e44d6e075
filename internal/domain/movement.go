package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind is the stored discriminator of a movement.
type MovementKind string

const (
	KindCredit   MovementKind = "credit"
	KindDebit    MovementKind = "debit"
	KindTransfer MovementKind = "transfer"
)

// ParseMovementKind parses a user supplied kind.
func ParseMovementKind(s string) (MovementKind, error) {
	switch k := MovementKind(s); k {
	case KindCredit, KindDebit, KindTransfer:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown movement kind %q", ErrValidation, s)
}

// TransferDirection tells which leg of a transfer a movement is.
type TransferDirection string

const (
	DirectionOutgoing TransferDirection = "out"
	DirectionIncoming TransferDirection = "in"
)

// MovementDetail carries the kind-specific part of a movement.
// It is implemented only by Credit, Debit and Transfer.
type MovementDetail interface {
	Kind() MovementKind
	sealed()
}

// Credit is money coming into the account.
type Credit struct{}

// Debit is money leaving the account.
type Debit struct{}

// Transfer is one leg of a transfer between two accounts of the same owner.
type Transfer struct {
	Direction TransferDirection
	// CounterpartyAccountID is the other account of the transfer,
	// stored as destination_account_id on both legs.
	CounterpartyAccountID string
	// LinkedMovementID is the id of the other leg.
	LinkedMovementID string
	// Fee is charged on the outgoing leg only.
	Fee decimal.Decimal
}

func (Credit) Kind() MovementKind   { return KindCredit }
func (Debit) Kind() MovementKind    { return KindDebit }
func (Transfer) Kind() MovementKind { return KindTransfer }

func (Credit) sealed()   {}
func (Debit) sealed()    {}
func (Transfer) sealed() {}

// Modification is the audit record of the last edit.
type Modification struct {
	At     time.Time
	By     string
	Reason string
}

// Deletion is the tombstone of a soft-deleted movement.
type Deletion struct {
	At     time.Time
	By     string
	Reason string
}

// Movement is a single recorded change to an account's balance.
type Movement struct {
	ID          string
	OwnerID     string
	AccountID   string
	Description string
	Amount      decimal.Decimal
	Detail      MovementDetail
	OccurredAt  time.Time
	CreatedAt   time.Time
	Category    string
	Notes       string
	Reference   string
	Recurring   bool
	ReceiptRef  string
	Modified    *Modification
	Deleted     *Deletion
}

// Kind returns the movement kind.
func (m *Movement) Kind() MovementKind {
	return m.Detail.Kind()
}

// IsDeleted reports whether the movement is a tombstone.
func (m *Movement) IsDeleted() bool {
	return m.Deleted != nil
}

// HasReceipt reports whether a receipt is attached.
func (m *Movement) HasReceipt() bool {
	return m.ReceiptRef != ""
}

// TransferLeg returns the transfer detail when the movement is a transfer leg.
func (m *Movement) TransferLeg() (Transfer, bool) {
	t, ok := m.Detail.(Transfer)
	return t, ok
}

// DestinationAccountID returns the counterparty account of a transfer leg.
func (m *Movement) DestinationAccountID() string {
	if t, ok := m.TransferLeg(); ok {
		return t.CounterpartyAccountID
	}
	return ""
}

// Fee returns the transfer fee carried by the movement.
func (m *Movement) Fee() decimal.Decimal {
	if t, ok := m.TransferLeg(); ok && t.Direction == DirectionOutgoing {
		return t.Fee
	}
	return decimal.Zero
}

// References reports whether the movement touches accountID as its own
// account or as the counterparty of a transfer.
func (m *Movement) References(accountID string) bool {
	return m.AccountID == accountID || m.DestinationAccountID() == accountID
}

// SignedEffect returns the delta the movement applies to its own account.
// Tombstones are not considered here; callers filter them first.
func (m *Movement) SignedEffect() decimal.Decimal {
	switch d := m.Detail.(type) {
	case Credit:
		return m.Amount
	case Debit:
		return m.Amount.Neg()
	case Transfer:
		if d.Direction == DirectionOutgoing {
			return m.Amount.Add(d.Fee).Neg()
		}
		return m.Amount
	default:
		panic(fmt.Sprintf("unknown movement detail %T", d))
	}
}

// CheckWindow fails with expired when now - CreatedAt exceeds window.
func (m *Movement) CheckWindow(now time.Time, window time.Duration, expired error) error {
	if now.Sub(m.CreatedAt) > window {
		return fmt.Errorf("%w: created %s, window %s", expired, m.CreatedAt.Format(time.RFC3339), window)
	}
	return nil
}

// BalanceFromHistory recomputes an account balance from its initial balance
// and every non-deleted movement booked on it.
func BalanceFromHistory(initial decimal.Decimal, accountID string, movements []*Movement) decimal.Decimal {
	balance := initial
	for _, m := range movements {
		if m.IsDeleted() || m.AccountID != accountID {
			continue
		}
		balance = balance.Add(m.SignedEffect())
	}
	return balance
}
