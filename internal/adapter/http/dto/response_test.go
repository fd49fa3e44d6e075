package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

var fixedTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestAccountFromDomain(t *testing.T) {
	resp := AccountFromDomain(&domain.Account{
		ID:             "acc-1",
		Name:           "Wallet",
		Type:           domain.AccountTypeCash,
		Currency:       "USD",
		InitialBalance: decimal.NewFromInt(10),
		CurrentBalance: decimal.RequireFromString("7.5"),
		Active:         true,
	})

	if resp.InitialBalance != "10.00" || resp.CurrentBalance != "7.50" {
		t.Fatalf("balances not fixed to cents: %s / %s", resp.InitialBalance, resp.CurrentBalance)
	}
	if resp.Type != "cash" {
		t.Fatalf("type = %s", resp.Type)
	}
}

func TestMovementFromDomain(t *testing.T) {
	tests := []struct {
		name          string
		detail        domain.MovementDetail
		wantKind      string
		wantDirection string
		wantFee       string
	}{
		{name: "credit", detail: domain.Credit{}, wantKind: "credit"},
		{name: "debit", detail: domain.Debit{}, wantKind: "debit"},
		{
			name:          "outgoing leg shows fee",
			detail:        domain.Transfer{Direction: domain.DirectionOutgoing, CounterpartyAccountID: "acc-2", LinkedMovementID: "mov-2", Fee: decimal.NewFromInt(1)},
			wantKind:      "transfer",
			wantDirection: "out",
			wantFee:       "1.00",
		},
		{
			name:          "incoming leg hides fee",
			detail:        domain.Transfer{Direction: domain.DirectionIncoming, CounterpartyAccountID: "acc-2", LinkedMovementID: "mov-2"},
			wantKind:      "transfer",
			wantDirection: "in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &domain.Movement{
				ID:          "mov-1",
				AccountID:   "acc-1",
				Description: "Groceries",
				Amount:      decimal.RequireFromString("84.2"),
				Detail:      tt.detail,
				OccurredAt:  fixedTime,
				CreatedAt:   fixedTime,
			}

			resp := MovementFromDomain(m, map[string]string{"acc-1": "Checking"})
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", resp.Kind, tt.wantKind)
			}
			if resp.Direction != tt.wantDirection {
				t.Errorf("direction = %s, want %s", resp.Direction, tt.wantDirection)
			}
			if resp.Fee != tt.wantFee {
				t.Errorf("fee = %q, want %q", resp.Fee, tt.wantFee)
			}
			if resp.Amount != "84.20" {
				t.Errorf("amount = %s", resp.Amount)
			}
			if resp.OccurredAt != "2024-06-01" {
				t.Errorf("occurred_at = %s", resp.OccurredAt)
			}
			if resp.AccountName != "Checking" {
				t.Errorf("account_name = %s", resp.AccountName)
			}
		})
	}
}

func TestMovementFromDomain_Tombstone(t *testing.T) {
	m := &domain.Movement{
		ID:      "mov-1",
		Detail:  domain.Debit{},
		Amount:  decimal.NewFromInt(5),
		Deleted: &domain.Deletion{At: fixedTime, By: "owner-1", Reason: "duplicate"},
	}

	resp := MovementFromDomain(m, nil)
	if resp.Deleted == nil || resp.Deleted.Reason != "duplicate" {
		t.Fatalf("tombstone lost: %+v", resp.Deleted)
	}
	if resp.Modified != nil {
		t.Fatalf("unexpected modification %+v", resp.Modified)
	}
}

func TestSummaryFromDomain(t *testing.T) {
	resp := SummaryFromDomain(domain.Summary{
		CreditTotal: decimal.NewFromInt(100),
		CreditCount: 1,
		DebitTotal:  decimal.RequireFromString("30.5"),
		DebitCount:  2,
		FeeTotal:    decimal.NewFromInt(1),
	})

	if resp.CreditTotal != "100.00" || resp.DebitTotal != "30.50" {
		t.Fatalf("unexpected totals %+v", resp)
	}
	want := domain.Summary{
		CreditTotal: decimal.NewFromInt(100),
		DebitTotal:  decimal.RequireFromString("30.5"),
		FeeTotal:    decimal.NewFromInt(1),
	}.Net().StringFixed(2)
	if resp.Net != want {
		t.Fatalf("net = %s, want %s", resp.Net, want)
	}
}

func TestTransferPreviewFromDomain(t *testing.T) {
	p := &usecase.TransferPreview{
		Request: usecase.RecordTransferInput{
			SourceAccountID:      "a",
			DestinationAccountID: "b",
			Amount:               decimal.NewFromInt(300),
			Fee:                  decimal.NewFromInt(1),
		},
		TotalDeduction:     decimal.NewFromInt(301),
		SourceBalance:      decimal.NewFromInt(1000),
		SourceBalanceAfter: decimal.NewFromInt(699),
		HasSufficientFunds: true,
	}

	resp := TransferPreviewFromDomain(p)
	if resp.ExpiresAt != nil {
		t.Fatal("tokenless preview must not carry an expiry")
	}
	if resp.TotalDeduction != "301.00" || resp.SourceBalanceAfter != "699.00" {
		t.Fatalf("unexpected projection %+v", resp)
	}

	p.Token = "tok"
	p.ExpiresAt = fixedTime
	resp = TransferPreviewFromDomain(p)
	if resp.ExpiresAt == nil || !resp.ExpiresAt.Equal(fixedTime) {
		t.Fatalf("expires_at = %v", resp.ExpiresAt)
	}
}

func TestReconciliationReportFromDomain(t *testing.T) {
	report := &usecase.ReconciliationReport{
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		Discrepancies: []*usecase.ReconciliationResult{{
			AccountID:         "acc-1",
			RecordedBalance:   decimal.NewFromInt(100),
			CalculatedBalance: decimal.NewFromInt(90),
			Difference:        decimal.NewFromInt(10),
		}},
		CheckedAt: fixedTime,
	}

	resp := ReconciliationReportFromDomain(report)
	if len(resp.Discrepancies) != 1 || resp.Discrepancies[0].Difference != "10.00" {
		t.Fatalf("unexpected discrepancies %+v", resp.Discrepancies)
	}
}
