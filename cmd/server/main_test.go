package main

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/config"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/eventpublisher"
)

func TestNewEventSink_LogsWithoutBroker(t *testing.T) {
	sink, closeSink, err := newEventSink(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeSink()

	if _, ok := sink.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", sink)
	}
}

func TestNewEventSink_RejectsBadBrokerURL(t *testing.T) {
	_, _, err := newEventSink(&config.Config{RabbitMQURL: "://nope", EventsExchange: "budget.events"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected an error for a malformed broker url")
	}
}
