package memory

import (
	"context"
	"slices"
	"time"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx appends an audit row inside a unit of work.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return r.store.write(tx, func() (func(), error) {
		entry := *log
		r.store.audit = append(r.store.audit, &entry)
		n := len(r.store.audit) - 1
		return func() { r.store.audit = r.store.audit[:n] }, nil
	})
}

// List returns audit rows matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.AuditLog
	for i := len(r.store.audit) - 1; i >= 0; i-- {
		l := r.store.audit[i]
		switch {
		case filter.OwnerID != "" && l.OwnerID != filter.OwnerID,
			filter.Action != "" && l.Action != filter.Action,
			filter.ResourceType != "" && l.ResourceType != filter.ResourceType,
			filter.ResourceID != "" && l.ResourceID != filter.ResourceID,
			filter.StartDate != nil && l.CreatedAt.Before(*filter.StartDate),
			filter.EndDate != nil && l.CreatedAt.After(*filter.EndDate):
			continue
		}
		entry := *l
		out = append(out, &entry)
	}

	if filter.Offset >= len(out) {
		return []*domain.AuditLog{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// GetByResourceID returns the trail of one resource, oldest first.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	logs, err := r.List(ctx, domain.AuditFilter{ResourceType: resourceType, ResourceID: resourceID})
	if err != nil {
		return nil, err
	}
	slices.Reverse(logs)
	return logs, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stores an event inside a unit of work.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return r.store.write(tx, func() (func(), error) {
		e := *event
		r.store.outbox[event.ID] = &e
		return func() { delete(r.store.outbox, event.ID) }, nil
	})
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, e := range r.store.outbox {
		if !e.Published {
			c := *e
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.OutboxEvent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkPublished flags an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e, ok := r.store.outbox[id]; ok {
		e.Published = true
		e.PublishedAt = &publishedAt
	}
	return nil
}

// DeletePublished drops delivered events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, e := range r.store.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			delete(r.store.outbox, id)
			n++
		}
	}
	return n, nil
}
