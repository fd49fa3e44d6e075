package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres/generated"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Create stores an event inside the caller's unit of work; it becomes
// visible to the publisher only when the change that raised it commits.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return domain.StorageError(err)
	}

	err = queries.CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
		PublishedAt:   optionalTimestamptz(event.PublishedAt),
	})

	return mapError(err, nil)
}

// GetUnpublished returns up to limit pending events, oldest first. A
// row whose payload no longer decodes fails the batch rather than being
// published empty.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, mapError(err, nil)
	}

	events := make([]*domain.OutboxEvent, len(rows))
	for i, row := range rows {
		if events[i], err = rowToOutboxEvent(row); err != nil {
			return nil, domain.StorageError(fmt.Errorf("outbox event %s: %w", row.ID, err))
		}
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	err := r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})

	return mapError(err, nil)
}

// DeletePublished deletes published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
	if err != nil {
		return 0, mapError(err, nil)
	}

	return n, nil
}

func rowToOutboxEvent(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	event := &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		CreatedAt:     row.CreatedAt.Time,
		Published:     row.Published,
	}
	if row.PublishedAt.Valid {
		at := row.PublishedAt.Time
		event.PublishedAt = &at
	}
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &event.Payload); err != nil {
			return nil, err
		}
	}
	return event, nil
}
