package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeMovementRecorded}},
	}
	pub := &stubPublisher{}
	rec := &stubRecorder{}
	ep := newTestPublisher(repo, pub, rec)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if !repo.markedAt.Equal(now) {
		t.Fatalf("expected publish time from the clock, got %v", repo.markedAt)
	}
	if len(rec.published) != 1 || rec.published[0] != domain.EventTypeMovementRecorded {
		t.Fatalf("expected recorder to count the event, got %#v", rec.published)
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type", AggregateID: "mov-1"},
			{ID: "evt-2", EventType: "type", AggregateID: "mov-2"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub, nil)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
}

func TestProcessEventsHoldsBackLaterEventsOfFailedAggregate(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", AggregateType: domain.AggregateTypeMovement, AggregateID: "mov-1", EventType: domain.EventTypeMovementRecorded},
			{ID: "evt-2", AggregateType: domain.AggregateTypeMovement, AggregateID: "mov-2", EventType: domain.EventTypeMovementRecorded},
			{ID: "evt-3", AggregateType: domain.AggregateTypeMovement, AggregateID: "mov-1", EventType: domain.EventTypeMovementEdited},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("broker unavailable")},
	}
	ep := newTestPublisher(repo, pub, nil)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected the edit of mov-1 to wait, marked %#v", repo.marked)
	}
}

func TestPruneUsesRetention(t *testing.T) {
	repo := &stubOutboxRepo{deleted: 4}
	rec := &stubRecorder{}
	ep := newTestPublisher(repo, &stubPublisher{}, rec)

	n, err := ep.Prune(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 4 || rec.pruned != 4 {
		t.Fatalf("expected 4 pruned, got n=%d recorded=%d", n, rec.pruned)
	}
	if want := now.Add(-24 * time.Hour); !repo.deleteBefore.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, repo.deleteBefore)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub, nil)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID:        "evt-9",
		EventType: domain.EventTypeMovementDeleted,
		Payload:   map[string]any{"movement_id": "mov-1"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"payload":{"movement_id":"mov-1"}`) {
		t.Fatalf("expected raw payload in log, got %s", buf.String())
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher, rec Recorder) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Recorder:   rec,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
		Now:        func() time.Time { return now },
	})
}

type stubOutboxRepo struct {
	events       []*domain.OutboxEvent
	marked       []string
	markedAt     time.Time
	deleted      int64
	deleteBefore time.Time
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	s.markedAt = publishedAt
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	s.deleteBefore = before
	return s.deleted, nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

type stubRecorder struct {
	published []string
	pruned    int64
}

func (s *stubRecorder) RecordPublished(eventType string) { s.published = append(s.published, eventType) }
func (s *stubRecorder) RecordPruned(n int64)             { s.pruned += n }
