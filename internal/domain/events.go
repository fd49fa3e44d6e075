package domain

import "time"

// Event types
const (
	EventTypeMovementRecorded = "movement.recorded"
	EventTypeMovementEdited   = "movement.edited"
	EventTypeMovementDeleted  = "movement.deleted"
	EventTypeAccountCreated   = "account.created"
	EventTypeAccountUpdated   = "account.updated"
	EventTypeAccountDeleted   = "account.deleted"
)

// Aggregate types
const (
	AggregateTypeMovement = "movement"
	AggregateTypeAccount  = "account"
)

// OutboxEvent represents an event to be published after commit
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewMovementEvent builds the payload for a movement lifecycle event.
func NewMovementEvent(m *Movement, reason string, at time.Time) map[string]any {
	payload := map[string]any{
		"movement_id": m.ID,
		"owner_id":    m.OwnerID,
		"account_id":  m.AccountID,
		"kind":        string(m.Kind()),
		"amount":      m.Amount.StringFixed(2),
		"event_at":    at.Format(time.RFC3339),
	}
	if t, ok := m.TransferLeg(); ok {
		payload["direction"] = string(t.Direction)
		payload["linked_movement_id"] = t.LinkedMovementID
		payload["fee"] = t.Fee.StringFixed(2)
	}
	if reason != "" {
		payload["reason"] = reason
	}
	return payload
}

// NewAccountEvent builds the payload for an account lifecycle event.
func NewAccountEvent(a *Account, at time.Time) map[string]any {
	return map[string]any{
		"account_id": a.ID,
		"owner_id":   a.OwnerID,
		"name":       a.Name,
		"type":       string(a.Type),
		"currency":   a.Currency,
		"active":     a.Active,
		"balance":    a.CurrentBalance.StringFixed(2),
		"event_at":   at.Format(time.RFC3339),
	}
}
