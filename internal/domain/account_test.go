package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateWithdrawal(t *testing.T) {
	tests := []struct {
		name        string
		accountType AccountType
		balance     decimal.Decimal
		amount      decimal.Decimal
		expectError bool
	}{
		{
			name:        "checking - withdraw exact balance",
			accountType: AccountTypeChecking,
			balance:     decimal.RequireFromString("250.00"),
			amount:      decimal.RequireFromString("250.00"),
			expectError: false,
		},
		{
			name:        "checking - one cent over balance",
			accountType: AccountTypeChecking,
			balance:     decimal.RequireFromString("250.00"),
			amount:      decimal.RequireFromString("250.01"),
			expectError: true,
		},
		{
			name:        "savings - less than balance",
			accountType: AccountTypeSavings,
			balance:     decimal.NewFromInt(100),
			amount:      decimal.NewFromInt(50),
			expectError: false,
		},
		{
			name:        "credit card - overdraft allowed",
			accountType: AccountTypeCreditCard,
			balance:     decimal.Zero,
			amount:      decimal.NewFromInt(500),
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{
				Type:           tt.accountType,
				CurrentBalance: tt.balance,
				Currency:       "USD",
			}

			err := acc.ValidateWithdrawal(tt.amount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_CheckUsable(t *testing.T) {
	acc := &Account{ID: "acc-1", OwnerID: "owner-1", Name: "Checking", Active: true}

	if err := acc.CheckUsable("owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := acc.CheckUsable("owner-2"); !errors.Is(err, ErrNotOwned) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}

	acc.Active = false
	err := acc.CheckUsable("owner-1")
	if !errors.Is(err, ErrAccountInactive) || !errors.Is(err, ErrValidation) {
		t.Errorf("expected inactive validation error, got %v", err)
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	acc := &Account{CurrentBalance: decimal.NewFromInt(100)}

	if got := acc.ApplyDelta(decimal.NewFromInt(-30)); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected 70, got %s", got)
	}
	if got := acc.ApplyDelta(decimal.NewFromInt(30)); !got.Equal(decimal.NewFromInt(130)) {
		t.Errorf("expected 130, got %s", got)
	}
}

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		input   string
		want    AccountType
		wantErr bool
	}{
		{"checking", AccountTypeChecking, false},
		{" Savings ", AccountTypeSavings, false},
		{"credit-card", AccountTypeCreditCard, false},
		{"CreditCard", AccountTypeCreditCard, false},
		{"crypto", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAccountType(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ParseAccountType(%q) expected validation error, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAccountType(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestNormalizeAccountName(t *testing.T) {
	if NormalizeAccountName("  Checking ") != NormalizeAccountName("checking") {
		t.Error("expected names to normalize equal")
	}
}

func TestAccount_ValidateTransferOut(t *testing.T) {
	card := &Account{Type: AccountTypeCreditCard, CurrentBalance: d("100.00")}

	if err := card.ValidateTransferOut(d("100.00")); err != nil {
		t.Fatalf("expected exact balance to fund the transfer, got %v", err)
	}
	if err := card.ValidateTransferOut(d("100.01")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds even for a credit card, got %v", err)
	}
}
