package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// money renders an amount with exactly two decimal places.
func money(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountPlaces)
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	Currency       string    `json:"currency"`
	InitialBalance string    `json:"initial_balance"`
	CurrentBalance string    `json:"current_balance"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Type:           string(a.Type),
		Currency:       a.Currency,
		InitialBalance: money(a.InitialBalance),
		CurrentBalance: money(a.CurrentBalance),
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID                    string          `json:"id"`
	Kind                  string          `json:"kind"`
	AccountID             string          `json:"account_id"`
	AccountName           string          `json:"account_name,omitempty"`
	Description           string          `json:"description"`
	Amount                string          `json:"amount"`
	OccurredAt            string          `json:"occurred_at"`
	CreatedAt             time.Time       `json:"created_at"`
	Category              string          `json:"category,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	Reference             string          `json:"reference,omitempty"`
	Recurring             bool            `json:"recurring"`
	ReceiptRef            string          `json:"receipt_ref,omitempty"`
	Direction             string          `json:"direction,omitempty"`
	CounterpartyAccountID string          `json:"counterparty_account_id,omitempty"`
	LinkedMovementID      string          `json:"linked_movement_id,omitempty"`
	Fee                   string          `json:"fee,omitempty"`
	Modified              *ChangeResponse `json:"modified,omitempty"`
	Deleted               *ChangeResponse `json:"deleted,omitempty"`
}

// ChangeResponse is the audit stamp of an edit or a deletion.
type ChangeResponse struct {
	At     time.Time `json:"at"`
	By     string    `json:"by"`
	Reason string    `json:"reason"`
}

// MovementFromDomain converts a domain movement to response.
func MovementFromDomain(m *domain.Movement, accountNames map[string]string) *MovementResponse {
	resp := &MovementResponse{
		ID:          m.ID,
		Kind:        string(m.Kind()),
		AccountID:   m.AccountID,
		AccountName: accountNames[m.AccountID],
		Description: m.Description,
		Amount:      money(m.Amount),
		OccurredAt:  m.OccurredAt.Format(time.DateOnly),
		CreatedAt:   m.CreatedAt,
		Category:    m.Category,
		Notes:       m.Notes,
		Reference:   m.Reference,
		Recurring:   m.Recurring,
		ReceiptRef:  m.ReceiptRef,
	}

	if t, ok := m.TransferLeg(); ok {
		resp.Direction = string(t.Direction)
		resp.CounterpartyAccountID = t.CounterpartyAccountID
		resp.LinkedMovementID = t.LinkedMovementID
		if t.Direction == domain.DirectionOutgoing {
			resp.Fee = money(t.Fee)
		}
	}

	if m.Modified != nil {
		resp.Modified = &ChangeResponse{At: m.Modified.At, By: m.Modified.By, Reason: m.Modified.Reason}
	}
	if m.Deleted != nil {
		resp.Deleted = &ChangeResponse{At: m.Deleted.At, By: m.Deleted.By, Reason: m.Deleted.Reason}
	}

	return resp
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(ms []*domain.Movement, accountNames map[string]string) []*MovementResponse {
	result := make([]*MovementResponse, len(ms))
	for i, m := range ms {
		result[i] = MovementFromDomain(m, accountNames)
	}
	return result
}

// TransferResponse holds both legs of a transfer.
type TransferResponse struct {
	Outgoing *MovementResponse `json:"outgoing"`
	Incoming *MovementResponse `json:"incoming"`
}

// TransferFromDomain converts a transfer result to response.
func TransferFromDomain(t *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Outgoing: MovementFromDomain(t.Outgoing, nil),
		Incoming: MovementFromDomain(t.Incoming, nil),
	}
}

// TransferPreviewResponse shows the projected effect of a transfer.
type TransferPreviewResponse struct {
	Token                   string     `json:"token,omitempty"`
	SourceAccountID         string     `json:"source_account_id"`
	SourceName              string     `json:"source_name"`
	DestinationAccountID    string     `json:"destination_account_id"`
	DestinationName         string     `json:"destination_name"`
	Currency                string     `json:"currency"`
	Amount                  string     `json:"amount"`
	Fee                     string     `json:"fee"`
	TotalDeduction          string     `json:"total_deduction"`
	SourceBalance           string     `json:"source_balance"`
	SourceBalanceAfter      string     `json:"source_balance_after"`
	DestinationBalance      string     `json:"destination_balance"`
	DestinationBalanceAfter string     `json:"destination_balance_after"`
	HasSufficientFunds      bool       `json:"has_sufficient_funds"`
	ExpiresAt               *time.Time `json:"expires_at,omitempty"`
}

// TransferPreviewFromDomain converts a preview to response.
func TransferPreviewFromDomain(p *usecase.TransferPreview) *TransferPreviewResponse {
	resp := &TransferPreviewResponse{
		Token:                   p.Token,
		SourceAccountID:         p.Request.SourceAccountID,
		SourceName:              p.SourceName,
		DestinationAccountID:    p.Request.DestinationAccountID,
		DestinationName:         p.DestinationName,
		Currency:                p.Currency,
		Amount:                  money(p.Request.Amount),
		Fee:                     money(p.Request.Fee),
		TotalDeduction:          money(p.TotalDeduction),
		SourceBalance:           money(p.SourceBalance),
		SourceBalanceAfter:      money(p.SourceBalanceAfter),
		DestinationBalance:      money(p.DestinationBalance),
		DestinationBalanceAfter: money(p.DestinationBalanceAfter),
		HasSufficientFunds:      p.HasSufficientFunds,
	}
	if p.Token != "" {
		expires := p.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}

// SummaryResponse aggregates a filtered listing.
type SummaryResponse struct {
	CreditTotal   string `json:"credit_total"`
	CreditCount   int    `json:"credit_count"`
	DebitTotal    string `json:"debit_total"`
	DebitCount    int    `json:"debit_count"`
	TransferTotal string `json:"transfer_total"`
	TransferCount int    `json:"transfer_count"`
	FeeTotal      string `json:"fee_total"`
	Net           string `json:"net"`
}

// SummaryFromDomain converts a summary to response.
func SummaryFromDomain(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		CreditTotal:   money(s.CreditTotal),
		CreditCount:   s.CreditCount,
		DebitTotal:    money(s.DebitTotal),
		DebitCount:    s.DebitCount,
		TransferTotal: money(s.TransferTotal),
		TransferCount: s.TransferCount,
		FeeTotal:      money(s.FeeTotal),
		Net:           money(s.Net()),
	}
}

// MovementPageResponse is one page of a movement listing.
type MovementPageResponse struct {
	Items      []*MovementResponse `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalCount int                 `json:"total_count"`
	TotalPages int                 `json:"total_pages"`
	Summary    SummaryResponse     `json:"summary"`
}

// MovementPageFromDomain converts a query result to response.
func MovementPageFromDomain(r *usecase.MovementQueryResult) *MovementPageResponse {
	return &MovementPageResponse{
		Items:      MovementsFromDomain(r.Items, r.AccountNames),
		Page:       r.Number,
		PageSize:   r.Size,
		TotalCount: r.TotalCount,
		TotalPages: r.TotalPages,
		Summary:    SummaryFromDomain(r.Summary),
	}
}

// DashboardResponse is the owner's overview for a period.
type DashboardResponse struct {
	From           string              `json:"from"`
	To             string              `json:"to"`
	TotalIncome    string              `json:"total_income"`
	TotalExpenses  string              `json:"total_expenses"`
	Net            string              `json:"net"`
	TotalBalance   string              `json:"total_balance"`
	ActiveAccounts int                 `json:"active_accounts"`
	MovementCount  int                 `json:"movement_count"`
	Recent         []*MovementResponse `json:"recent"`
}

// DashboardFromDomain converts a dashboard to response.
func DashboardFromDomain(d *usecase.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		From:           d.From.Format(time.DateOnly),
		To:             d.To.Format(time.DateOnly),
		TotalIncome:    money(d.TotalIncome),
		TotalExpenses:  money(d.TotalExpenses),
		Net:            money(d.Net),
		TotalBalance:   money(d.TotalBalance),
		ActiveAccounts: d.ActiveAccounts,
		MovementCount:  d.MovementCount,
		Recent:         MovementsFromDomain(d.Recent, d.AccountNames),
	}
}

// CategoriesResponse lists suggested and used categories.
type CategoriesResponse struct {
	Income   []string `json:"income"`
	Expense  []string `json:"expense"`
	Transfer []string `json:"transfer"`
	Used     []string `json:"used"`
}

// CategoriesFromDomain converts the catalogue to response.
func CategoriesFromDomain(c *usecase.CategoryCatalogue) *CategoriesResponse {
	return &CategoriesResponse{
		Income:   c.Income,
		Expense:  c.Expense,
		Transfer: c.Transfer,
		Used:     c.Used,
	}
}

// AccountStatsResponse summarizes an account's history.
type AccountStatsResponse struct {
	AccountID       string     `json:"account_id"`
	TotalIncome     string     `json:"total_income"`
	TotalExpenses   string     `json:"total_expenses"`
	TransfersIn     string     `json:"transfers_in"`
	TransfersOut    string     `json:"transfers_out"`
	FeesPaid        string     `json:"fees_paid"`
	MovementCount   int        `json:"movement_count"`
	FirstMovementAt *time.Time `json:"first_movement_at,omitempty"`
	LastMovementAt  *time.Time `json:"last_movement_at,omitempty"`
}

// AccountStatsFromDomain converts stats to response.
func AccountStatsFromDomain(s *usecase.AccountStats) *AccountStatsResponse {
	return &AccountStatsResponse{
		AccountID:       s.AccountID,
		TotalIncome:     money(s.TotalIncome),
		TotalExpenses:   money(s.TotalExpenses),
		TransfersIn:     money(s.TransfersIn),
		TransfersOut:    money(s.TransfersOut),
		FeesPaid:        money(s.FeesPaid),
		MovementCount:   s.MovementCount,
		FirstMovementAt: s.FirstMovementAt,
		LastMovementAt:  s.LastMovementAt,
	}
}

// ReconciliationResponse is the outcome of one account check.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	AccountName       string    `json:"account_name"`
	Currency          string    `json:"currency"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
	MovementCount     int       `json:"movement_count"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromDomain converts a result to response.
func ReconciliationFromDomain(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		AccountName:       r.AccountName,
		Currency:          r.Currency,
		RecordedBalance:   money(r.RecordedBalance),
		CalculatedBalance: money(r.CalculatedBalance),
		Difference:        money(r.Difference),
		IsReconciled:      r.IsReconciled,
		MovementCount:     r.MovementCount,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse covers every account of an owner.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromDomain converts a report to response.
func ReconciliationReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromDomain(d)
	}
	return resp
}

// AuditLogResponse is one audit trail entry.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Before       map[string]any `json:"before,omitempty"`
	After        map[string]any `json:"after,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit entries to response.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	resp := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = &AuditLogResponse{
			ID:           l.ID,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			Reason:       l.Reason,
			Before:       l.BeforeState,
			After:        l.AfterState,
			CreatedAt:    l.CreatedAt,
		}
	}
	return resp
}
