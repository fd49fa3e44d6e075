package domain

import "time"

// AuditLog represents an audit trail entry written alongside every mutation
type AuditLog struct {
	ID           string
	OwnerID      string // Who performed the action
	Action       AuditAction
	ResourceType string // account or movement
	ResourceID   string
	RequestID    string
	Reason       string
	BeforeState  JSON
	AfterState   JSON
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Account actions
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountUpdate     AuditAction = "account.update"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"
	AuditActionAccountReactivate AuditAction = "account.reactivate"
	AuditActionAccountDelete     AuditAction = "account.delete"
	AuditActionAccountRepair     AuditAction = "account.repair"

	// Movement actions
	AuditActionMovementCredit   AuditAction = "movement.credit"
	AuditActionMovementDebit    AuditAction = "movement.debit"
	AuditActionMovementTransfer AuditAction = "movement.transfer"
	AuditActionMovementEdit     AuditAction = "movement.edit"
	AuditActionMovementDelete   AuditAction = "movement.delete"
)

// Resource types
const (
	ResourceAccount  = "account"
	ResourceMovement = "movement"
)

// AccountState is the audited snapshot of an account.
func AccountState(a *Account) JSON {
	if a == nil {
		return nil
	}
	return JSON{
		"name":            a.Name,
		"description":     a.Description,
		"type":            string(a.Type),
		"currency":        a.Currency,
		"initial_balance": a.InitialBalance.StringFixed(2),
		"current_balance": a.CurrentBalance.StringFixed(2),
		"active":          a.Active,
	}
}

// MovementState is the audited snapshot of a movement.
func MovementState(m *Movement) JSON {
	if m == nil {
		return nil
	}
	state := JSON{
		"account_id":  m.AccountID,
		"kind":        string(m.Kind()),
		"description": m.Description,
		"amount":      m.Amount.StringFixed(2),
		"occurred_at": m.OccurredAt.Format(time.DateOnly),
		"category":    m.Category,
		"notes":       m.Notes,
		"reference":   m.Reference,
		"recurring":   m.Recurring,
		"receipt_ref": m.ReceiptRef,
		"deleted":     m.IsDeleted(),
	}
	if t, ok := m.TransferLeg(); ok {
		state["direction"] = string(t.Direction)
		state["destination_account_id"] = t.CounterpartyAccountID
		state["linked_movement_id"] = t.LinkedMovementID
		state["transfer_fee"] = t.Fee.StringFixed(2)
	}
	return state
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	OwnerID      string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
