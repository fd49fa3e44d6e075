package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes worth another attempt.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier with exponential backoff. The
// operation must be a whole unit of work: every attempt starts again
// from Begin.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	onRetry         func(attempt int, err error)
	logger          zerolog.Logger
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries bounds the attempts after the first.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithBackoff sets the first and largest wait and the overall budget.
func WithBackoff(initial, max, elapsed time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initialInterval = initial
		r.maxInterval = max
		r.maxElapsedTime = elapsed
	}
}

// WithRetryHook is called before every retry, e.g. to count conflicts.
func WithRetryHook(fn func(attempt int, err error)) RetrierOption {
	return func(r *Retrier) { r.onRetry = fn }
}

// NewRetrier creates a Retrier: 3 retries from 50ms up to 1s, 10s total.
func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger.With().Str("component", "retrier").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs operation until it succeeds, fails permanently or the
// retry budget is spent. The last error is returned unchanged.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxRetries)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("transient database conflict, retrying")
		if r.onRetry != nil {
			r.onRetry(attempt, err)
		}
	})
}

// isRetryableError reports conflicts that a fresh transaction may not
// hit. Domain wrapping keeps the driver error reachable through errors.As.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlock, pgErrLockNotAvailable:
			return true
		}
	}
	return false
}
