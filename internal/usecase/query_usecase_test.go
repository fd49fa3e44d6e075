package usecase_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

type queryFixture struct {
	*harness
	checking *domain.Account
	savings  *domain.Account
}

// newQueryFixture books a small month of history:
//
//	Jun 01 credit 2500.00 Salary (recurring, on checking)
//	Jun 03 debit    84.20 Groceries, receipt attached
//	Jun 05 transfer 300.00 + 1.00 fee checking -> savings
//	Jun 07 debit    12.00 Coffee beans (deleted)
func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	h := newHarness(t)
	f := &queryFixture{
		harness:  h,
		checking: h.account(t, "Checking", domain.AccountTypeChecking, "100.00"),
		savings:  h.account(t, "Savings", domain.AccountTypeSavings, "0.00"),
	}
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC) }

	salary := movementInput(f.checking.ID, "2500.00", "Salary June")
	salary.Category = domain.CategorySalary
	salary.Recurring = true
	salary.OccurredAt = day(1)
	_, err := h.ledger.RecordCredit(ctx, salary)
	require.NoError(t, err)

	groceries := movementInput(f.checking.ID, "84.20", "Groceries")
	groceries.Category = domain.CategoryFood
	groceries.ReceiptRef = "receipts/2025/06/03.jpg"
	groceries.Notes = "weekly SHOP"
	groceries.OccurredAt = day(3)
	_, err = h.ledger.RecordDebit(ctx, groceries)
	require.NoError(t, err)

	move := transferInput(f.checking.ID, f.savings.ID, "300.00", "1.00")
	move.OccurredAt = day(5)
	_, err = h.ledger.RecordTransfer(ctx, move)
	require.NoError(t, err)

	coffee := movementInput(f.checking.ID, "12.00", "Coffee beans")
	coffee.OccurredAt = day(7)
	dropped, err := h.ledger.RecordDebit(ctx, coffee)
	require.NoError(t, err)
	_, err = h.ledger.DeleteMovement(ctx, usecase.DeleteMovementInput{OwnerID: owner, MovementID: dropped.ID, Reason: "duplicate"})
	require.NoError(t, err)

	return f
}

func TestQueryUseCase_Filters(t *testing.T) {
	f := newQueryFixture(t)
	ptr := func(s string) *decimal.Decimal { d := dec(s); return &d }
	date := func(d int) *time.Time { v := time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC); return &v }

	tests := []struct {
		name   string
		filter domain.MovementFilter
		want   []string
	}{
		{"no filter skips tombstones", domain.MovementFilter{}, []string{"Move to savings", "Transfer from Checking", "Groceries", "Salary June"}},
		{"search is case-insensitive across notes", domain.MovementFilter{Search: "shop"}, []string{"Groceries"}},
		{"kind", domain.MovementFilter{Kind: domain.KindTransfer}, []string{"Move to savings", "Transfer from Checking"}},
		{"account", domain.MovementFilter{AccountID: f.savings.ID}, []string{"Transfer from Checking"}},
		{"category", domain.MovementFilter{Category: domain.CategorySalary}, []string{"Salary June"}},
		{"inclusive date range", domain.MovementFilter{FromDate: date(3), ToDate: date(3)}, []string{"Groceries"}},
		{"amount range", domain.MovementFilter{MinAmount: ptr("80"), MaxAmount: ptr("300")}, []string{"Move to savings", "Transfer from Checking", "Groceries"}},
		{"recurring", domain.MovementFilter{RecurringOnly: true}, []string{"Salary June"}},
		{"receipt", domain.MovementFilter{HasReceiptOnly: true}, []string{"Groceries"}},
		{"deleted movements never match", domain.MovementFilter{Search: "coffee"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.query.QueryMovements(context.Background(), usecase.MovementQuery{OwnerID: owner, Filter: tt.filter})
			require.NoError(t, err)

			got := make([]string, 0, len(res.Items))
			for _, m := range res.Items {
				got = append(got, m.Description)
			}
			require.Equal(t, tt.want, got)
			require.Equal(t, len(tt.want), res.TotalCount)
		})
	}
}

func TestQueryUseCase_SortPageAndSummary(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	res, err := f.query.QueryMovements(ctx, usecase.MovementQuery{
		OwnerID:  owner,
		Sort:     domain.MovementSort{Field: domain.SortByAmount},
		Page:     2,
		PageSize: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 4, res.TotalCount)
	require.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Salary June", res.Items[0].Description)

	require.True(t, res.Summary.CreditTotal.Equal(dec("2500.00")))
	require.True(t, res.Summary.DebitTotal.Equal(dec("84.20")))
	require.True(t, res.Summary.TransferTotal.Equal(dec("600.00")))
	require.Equal(t, 2, res.Summary.TransferCount)
	require.True(t, res.Summary.FeeTotal.Equal(dec("1.00")))
	require.True(t, res.Summary.Net().Equal(dec("2415.80")))
	require.Equal(t, "Savings", res.AccountNames[f.savings.ID])

	beyond, err := f.query.QueryMovements(ctx, usecase.MovementQuery{OwnerID: owner, Page: 9, PageSize: 3})
	require.NoError(t, err)
	require.Empty(t, beyond.Items)
	require.Equal(t, 4, beyond.TotalCount)
}

func TestQueryUseCase_RejectsBadQueries(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := f.query.QueryMovements(ctx, usecase.MovementQuery{OwnerID: owner, Filter: domain.MovementFilter{FromDate: &from, ToDate: &to}})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.query.QueryMovements(ctx, usecase.MovementQuery{OwnerID: "intruder", Filter: domain.MovementFilter{AccountID: f.checking.ID}})
	require.ErrorIs(t, err, domain.ErrNotOwned)

	_, err = f.query.QueryMovements(ctx, usecase.MovementQuery{OwnerID: owner, Filter: domain.MovementFilter{AccountID: "missing"}})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	other, err := f.query.QueryMovements(ctx, usecase.MovementQuery{OwnerID: "intruder"})
	require.NoError(t, err)
	require.Zero(t, other.TotalCount)
}

func TestQueryUseCase_Dashboard(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	_, err := f.accounts.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: owner, Name: "Old", Type: "cash", Currency: "USD", InitialBalance: dec("5.00")})
	require.NoError(t, err)
	old, err := f.accounts.ListAccounts(ctx, owner, false)
	require.NoError(t, err)
	for _, a := range old {
		if a.Name == "Old" {
			_, err = f.accounts.DeactivateAccount(ctx, owner, a.ID)
			require.NoError(t, err)
		}
	}

	dash, err := f.query.GetDashboard(ctx, owner, time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), dash.From)
	require.True(t, dash.TotalIncome.Equal(dec("2500.00")))
	require.True(t, dash.TotalExpenses.Equal(dec("84.20")))
	require.True(t, dash.Net.Equal(dec("2415.80")))
	// 100 + 2500 - 84.20 - 301 on checking, 300 on savings; inactive excluded.
	require.True(t, dash.TotalBalance.Equal(dec("2514.80")), "got %s", dash.TotalBalance)
	require.Equal(t, 2, dash.ActiveAccounts)
	require.Equal(t, 4, dash.MovementCount)
	require.Len(t, dash.Recent, 4)
	require.Equal(t, "Groceries", dash.Recent[2].Description)

	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	empty, err := f.query.GetDashboard(ctx, owner, july, july.AddDate(0, 1, -1))
	require.NoError(t, err)
	require.Zero(t, empty.MovementCount)
	require.True(t, empty.Net.IsZero())
}

func TestQueryUseCase_Categories(t *testing.T) {
	f := newQueryFixture(t)

	cat, err := f.query.GetCategories(context.Background(), owner)
	require.NoError(t, err)
	require.Contains(t, cat.Income, domain.CategorySalary)
	require.Contains(t, cat.Expense, domain.CategoryFood)
	require.Contains(t, cat.Transfer, domain.CategorySavingsTransfer)
	require.Contains(t, cat.Used, domain.CategorySalary)
	require.Contains(t, cat.Used, domain.CategorySavingsTransfer)

	none, err := f.query.GetCategories(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, none.Used)
	require.Empty(t, none.Used)
}

func TestQueryUseCase_RepeatedQueryIsStable(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	// Three equal debits tie on amount and on category.
	for _, desc := range []string{"Bus ticket", "Lunch", "Parking"} {
		in := movementInput(f.checking.ID, "20.00", desc)
		in.Category = domain.CategoryFood
		in.OccurredAt = time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
		_, err := f.ledger.RecordDebit(ctx, in)
		require.NoError(t, err)
	}

	q := usecase.MovementQuery{
		OwnerID:  owner,
		Filter:   domain.MovementFilter{MaxAmount: ptrDec("300.00")},
		Sort:     domain.MovementSort{Field: domain.SortByAmount, Descending: true},
		Page:     2,
		PageSize: 3,
	}

	first, err := f.query.QueryMovements(ctx, q)
	require.NoError(t, err)
	second, err := f.query.QueryMovements(ctx, q)
	require.NoError(t, err)

	ids := func(r *usecase.MovementQueryResult) []string {
		out := make([]string, len(r.Items))
		for i, m := range r.Items {
			out[i] = m.ID
		}
		return out
	}

	// 300, 300, 84.20 on page one; the three 20.00 debits on page two.
	require.Len(t, first.Items, 3)
	require.Equal(t, ids(first), ids(second))
	require.True(t, slices.IsSorted(ids(first)), "equal amounts are ordered by id")
	require.Equal(t, first.TotalCount, second.TotalCount)
	require.Equal(t, 6, first.TotalCount)
	require.Equal(t, first.TotalPages, second.TotalPages)
	require.Equal(t, 2, first.TotalPages)

	require.True(t, first.Summary.DebitTotal.Equal(second.Summary.DebitTotal))
	require.True(t, first.Summary.DebitTotal.Equal(dec("144.20")))
	require.Equal(t, first.Summary.DebitCount, second.Summary.DebitCount)
	require.True(t, first.Summary.TransferTotal.Equal(second.Summary.TransferTotal))
	require.Equal(t, first.Summary.TransferCount, second.Summary.TransferCount)
	require.True(t, first.Summary.CreditTotal.Equal(second.Summary.CreditTotal))
	require.True(t, first.Summary.Net().Equal(second.Summary.Net()))
}

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
