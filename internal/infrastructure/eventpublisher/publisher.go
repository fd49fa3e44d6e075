package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// EventPublisher relays committed outbox events to a Publisher.
// Delivery is at least once: an event whose MarkPublished fails is sent
// again on the next poll.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	recorder   Recorder
	logger     zerolog.Logger
	batchSize  int
	interval   time.Duration
	now        func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Recorder receives publishing counters.
type Recorder interface {
	RecordPublished(eventType string)
	RecordPruned(n int64)
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Recorder   Recorder
	Logger     zerolog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	Now        func() time.Time
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger.With().Str("component", "event_publisher").Logger(),
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		now:        cfg.Now,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.processEvents(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
		}
	}
}

// Prune deletes events published before now minus retention.
func (ep *EventPublisher) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		ep.recorder.RecordPruned(n)
		ep.logger.Info().Int64("deleted", n).Msg("pruned published events")
	}
	return n, nil
}

// processEvents publishes one batch. After a failed publish the later
// events of the same aggregate wait for the next round, so consumers see
// each movement's lifecycle in order.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	blocked := make(map[string]bool)
	for _, event := range events {
		key := event.AggregateType + ":" + event.AggregateID
		if blocked[key] {
			continue
		}

		if err := ep.publisher.Publish(ctx, event); err != nil {
			blocked[key] = true
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Str("aggregate_id", event.AggregateID).
				Msg("failed to publish event")
			continue
		}
		ep.recorder.RecordPublished(event.EventType)

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			blocked[key] = true
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
		}
	}

	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecordPublished(string) {}
func (nopRecorder) RecordPruned(int64)     {}

// LogPublisher is a simple publisher that logs events. It stands in
// when no broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
