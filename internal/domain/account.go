package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account. Only credit cards may be overdrawn.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCash       AccountType = "cash"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeChecking:   true,
	AccountTypeSavings:    true,
	AccountTypeCreditCard: true,
	AccountTypeInvestment: true,
	AccountTypeCash:       true,
	AccountTypeLoan:       true,
	AccountTypeOther:      true,
}

// IsValid checks if the account type is known.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// ParseAccountType parses a user supplied account type.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if t == "creditcard" || t == "credit-card" {
		t = AccountTypeCreditCard
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown account type %q", ErrValidation, s)
	}
	return t, nil
}

// Account represents an owner's money container.
type Account struct {
	ID             string
	OwnerID        string
	Name           string
	Description    string
	Type           AccountType
	Currency       string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AllowsOverdraft reports whether debits may take the balance below zero.
func (a *Account) AllowsOverdraft() bool {
	return a.Type == AccountTypeCreditCard
}

// ValidateWithdrawal checks that the account can fund amount.
func (a *Account) ValidateWithdrawal(amount decimal.Decimal) error {
	if a.AllowsOverdraft() {
		return nil
	}
	if a.CurrentBalance.LessThan(amount) {
		return fmt.Errorf("%w: available balance %s %s", ErrInsufficientFunds, a.CurrentBalance.StringFixed(2), a.Currency)
	}
	return nil
}

// ValidateTransferOut checks that the account can fund a transfer of total
// (amount plus fee). Transfers never overdraw, credit cards included.
func (a *Account) ValidateTransferOut(total decimal.Decimal) error {
	if a.CurrentBalance.LessThan(total) {
		return fmt.Errorf("%w: available balance %s %s", ErrInsufficientFunds, a.CurrentBalance.StringFixed(2), a.Currency)
	}
	return nil
}

// ApplyDelta returns the balance after adding a signed delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Add(delta)
}

// CheckOwner returns ErrNotOwned unless ownerID owns the account.
func (a *Account) CheckOwner(ownerID string) error {
	if a.OwnerID != ownerID {
		return ErrNotOwned
	}
	return nil
}

// CheckUsable verifies the account is owned by ownerID and active.
func (a *Account) CheckUsable(ownerID string) error {
	if err := a.CheckOwner(ownerID); err != nil {
		return err
	}
	if !a.Active {
		return fmt.Errorf("%w: %s", ErrAccountInactive, a.Name)
	}
	return nil
}

// NormalizeAccountName trims and case-folds a name for uniqueness checks.
func NormalizeAccountName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
