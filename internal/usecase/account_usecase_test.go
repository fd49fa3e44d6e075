package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name:  "valid checking account",
			input: usecase.CreateAccountInput{OwnerID: owner, Name: "Checking", Type: "checking", Currency: "usd", InitialBalance: dec("10.50")},
		},
		{
			name:  "credit card may open with debt",
			input: usecase.CreateAccountInput{OwnerID: owner, Name: "Visa", Type: "credit-card", Currency: "EUR", InitialBalance: dec("-300.00")},
		},
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{OwnerID: owner, Name: "  ", Type: "checking", Currency: "USD"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown type",
			input:   usecase.CreateAccountInput{OwnerID: owner, Name: "Piggy", Type: "piggybank", Currency: "USD"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unsupported currency",
			input:   usecase.CreateAccountInput{OwnerID: owner, Name: "Wallet", Type: "cash", Currency: "XYZ"},
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "sub-cent balance",
			input:   usecase.CreateAccountInput{OwnerID: owner, Name: "Wallet", Type: "cash", Currency: "USD", InitialBalance: dec("1.001")},
			wantErr: domain.ErrAmountPrecision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			acc, err := h.accounts.CreateAccount(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, acc.Active)
			require.True(t, acc.CurrentBalance.Equal(tt.input.InitialBalance))
			require.Len(t, acc.Currency, 3)
		})
	}
}

func TestAccountUseCase_NamesAreUniquePerOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	savings := h.account(t, "Savings", domain.AccountTypeSavings, "0.00")
	other := h.account(t, "Holiday", domain.AccountTypeSavings, "0.00")

	_, err := h.accounts.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: owner, Name: " SAVINGS ", Type: "savings", Currency: "USD"})
	require.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = h.accounts.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: "owner-2", Name: "Savings", Type: "savings", Currency: "USD"})
	require.NoError(t, err)

	name := "savings"
	_, err = h.accounts.UpdateAccount(ctx, usecase.UpdateAccountInput{OwnerID: owner, AccountID: other.ID, Name: &name})
	require.ErrorIs(t, err, domain.ErrDuplicateName)

	renamed := "Savings (main)"
	updated, err := h.accounts.UpdateAccount(ctx, usecase.UpdateAccountInput{OwnerID: owner, AccountID: savings.ID, Name: &renamed})
	require.NoError(t, err)
	require.Equal(t, renamed, updated.Name)
}

func TestAccountUseCase_UpdateLeavesBalanceAlone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := h.account(t, "Wallet", domain.AccountTypeCash, "40.00")
	h.credit(t, acc.ID, "10.00")

	description := "pocket money"
	currency := "gbp"
	typ := "savings"
	updated, err := h.accounts.UpdateAccount(ctx, usecase.UpdateAccountInput{
		OwnerID:     owner,
		AccountID:   acc.ID,
		Description: &description,
		Currency:    &currency,
		Type:        &typ,
	})
	require.NoError(t, err)
	require.Equal(t, "pocket money", updated.Description)
	require.Equal(t, "GBP", updated.Currency)
	require.Equal(t, domain.AccountTypeSavings, updated.Type)
	require.True(t, updated.CurrentBalance.Equal(dec("50.00")))

	_, err = h.accounts.UpdateAccount(ctx, usecase.UpdateAccountInput{OwnerID: "intruder", AccountID: acc.ID, Description: &description})
	require.ErrorIs(t, err, domain.ErrNotOwned)
	h.requireConsistent(t)
}

func TestAccountUseCase_DeactivateAndReactivate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := h.account(t, "Wallet", domain.AccountTypeCash, "40.00")
	h.account(t, "Bank", domain.AccountTypeChecking, "0.00")

	_, err := h.accounts.DeactivateAccount(ctx, owner, acc.ID)
	require.NoError(t, err)

	active, err := h.accounts.ListAccounts(ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Bank", active[0].Name)

	all, err := h.accounts.ListAccounts(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = h.accounts.ReactivateAccount(ctx, owner, acc.ID)
	require.NoError(t, err)
	h.credit(t, acc.ID, "1.00")
	h.requireBalance(t, acc.ID, "41.00")
}

func TestAccountUseCase_DeleteAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pristine := h.account(t, "Spare", domain.AccountTypeCash, "0.00")
	used := h.account(t, "Used", domain.AccountTypeCash, "10.00")
	credit := h.credit(t, used.ID, "5.00")

	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, "intruder", pristine.ID), domain.ErrNotOwned)
	require.NoError(t, h.accounts.DeleteAccount(ctx, owner, pristine.ID))
	_, err := h.accounts.GetAccount(ctx, owner, pristine.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, owner, used.ID), domain.ErrHasHistory)

	_, err = h.ledger.DeleteMovement(ctx, usecase.DeleteMovementInput{OwnerID: owner, MovementID: credit.ID, Reason: "mistake"})
	require.NoError(t, err)
	require.ErrorIs(t, h.accounts.DeleteAccount(ctx, owner, used.ID), domain.ErrHasHistory, "tombstones still count as history")
}

func TestAccountUseCase_GetAccountStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	checking := h.account(t, "Checking", domain.AccountTypeChecking, "100.00")
	savings := h.account(t, "Savings", domain.AccountTypeSavings, "0.00")

	h.credit(t, checking.ID, "200.00")
	h.debit(t, checking.ID, "30.00")
	h.clock.Advance(48 * time.Hour)
	h.transfer(t, checking.ID, savings.ID, "50.00", "1.50")
	dropped := h.debit(t, checking.ID, "5.00")
	_, err := h.ledger.DeleteMovement(ctx, usecase.DeleteMovementInput{OwnerID: owner, MovementID: dropped.ID, Reason: "duplicate"})
	require.NoError(t, err)

	stats, err := h.accounts.GetAccountStats(ctx, owner, checking.ID)
	require.NoError(t, err)
	require.True(t, stats.TotalIncome.Equal(dec("200.00")))
	require.True(t, stats.TotalExpenses.Equal(dec("30.00")))
	require.True(t, stats.TransfersOut.Equal(dec("50.00")))
	require.True(t, stats.TransfersIn.IsZero())
	require.True(t, stats.FeesPaid.Equal(dec("1.50")))
	require.Equal(t, 3, stats.MovementCount)
	require.NotNil(t, stats.FirstMovementAt)
	require.Equal(t, 48*time.Hour, stats.LastMovementAt.Sub(*stats.FirstMovementAt))

	in, err := h.accounts.GetAccountStats(ctx, owner, savings.ID)
	require.NoError(t, err)
	require.True(t, in.TransfersIn.Equal(dec("50.00")))
	require.True(t, in.FeesPaid.IsZero())
}

func TestAccountUseCase_ListAuditLogs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	checking := h.account(t, "Checking", domain.AccountTypeChecking, "100.00")
	h.credit(t, checking.ID, "20.00")

	logs, err := h.accounts.ListAuditLogs(ctx, domain.AuditFilter{OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, domain.AuditActionMovementCredit, logs[0].Action, "newest first")
	require.Equal(t, domain.AuditActionAccountCreate, logs[1].Action)

	logs, err = h.accounts.ListAuditLogs(ctx, domain.AuditFilter{
		OwnerID:      owner,
		ResourceType: domain.ResourceAccount,
		ResourceID:   checking.ID,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	logs, err = h.accounts.ListAuditLogs(ctx, domain.AuditFilter{OwnerID: owner, Limit: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	logs, err = h.accounts.ListAuditLogs(ctx, domain.AuditFilter{OwnerID: "someone-else"})
	require.NoError(t, err)
	require.Empty(t, logs)

	_, err = h.accounts.ListAuditLogs(ctx, domain.AuditFilter{OwnerID: owner, ResourceID: checking.ID})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.accounts.ListAuditLogs(ctx, domain.AuditFilter{OwnerID: owner, ResourceType: "budget"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.accounts.ListAuditLogs(ctx, domain.AuditFilter{})
	require.ErrorIs(t, err, domain.ErrValidation)
}
