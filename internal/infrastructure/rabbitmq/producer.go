package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Producer publishes outbox events to a durable topic exchange. The
// routing key is the event type, e.g. "movement.recorded".
type Producer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  amqpChannel
	reopen   func() (amqpChannel, error)
	exchange string
	declared bool
	logger   zerolog.Logger
}

// Dial connects to RabbitMQ and opens a channel.
func Dial(rawURL, exchange string, logger zerolog.Logger) (*Producer, error) {
	cleanURL, err := sanitizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	p := newProducer(ch, exchange, logger)
	p.conn = conn
	p.reopen = func() (amqpChannel, error) { return conn.Channel() }
	return p, nil
}

func newProducer(ch amqpChannel, exchange string, logger zerolog.Logger) *Producer {
	return &Producer{
		channel:  ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "rabbitmq_producer").Logger(),
	}
}

// Publish sends one event. A failed publish reopens the channel once and
// retries before giving up; the outbox will offer the event again.
func (p *Producer) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := json.Marshal(envelope{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		OccurredAt:    event.CreatedAt,
		Payload:       event.Payload,
	})
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.CreatedAt,
		Type:         event.EventType,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publishLocked(ctx, event.EventType, msg)
	if err == nil {
		return nil
	}

	p.logger.Warn().Err(err).Str("event_id", event.ID).Msg("publish failed; reopening channel")
	if p.reopen == nil {
		return err
	}
	ch, chErr := p.reopen()
	if chErr != nil {
		return errors.Join(err, chErr)
	}
	p.channel = ch
	p.declared = false

	return p.publishLocked(ctx, event.EventType, msg)
}

func (p *Producer) publishLocked(ctx context.Context, routingKey string, msg amqp091.Publishing) error {
	if !p.declared {
		if err := p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: declare exchange %s: %w", p.exchange, err)
		}
		p.declared = true
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}

// Close closes the channel and connection.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

type envelope struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Payload       map[string]any `json:"payload"`
}

func sanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("rabbitmq: parse url: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("rabbitmq: url scheme must be amqp:// or amqps://")
	}
	return clean, nil
}
