package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultEditWindow is how long after booking a movement may be edited.
	DefaultEditWindow = 90 * 24 * time.Hour

	// DefaultDeleteWindow is how long after booking a movement may be deleted.
	DefaultDeleteWindow = 30 * 24 * time.Hour

	// DefaultPreviewTTL is how long a transfer preview can be confirmed.
	DefaultPreviewTTL = 10 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DashboardRecentLimit is the number of recent movements on the dashboard.
	DashboardRecentLimit = 10
)
