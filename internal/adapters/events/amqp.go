package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher publishes persistent JSON messages to durable queues on the default exchange.
// The connection is opened lazily and reopened after a failure.
type AMQPPublisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ Publisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher creates a publisher for the broker at url.
// POST: No connection is made until the first Publish
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

// Publish sends e to the queue named by its Type.
// PRE: e.Type is one of Queues
// POST: Message accepted by the broker, or an error and the connection is reset
func (p *AMQPPublisher) Publish(ctx context.Context, e BookingEvent) error {
	if e.Type == "" {
		return errors.New("event type is required")
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx,
		"",     // default exchange
		e.Type, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		slog.Warn("amqp_publish_failed", "type", e.Type, "booking_id", e.BookingID, "error", err)
		p.reset()
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// channel returns an open channel, dialling and declaring queues when needed.
// Callers hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}
	p.conn, p.ch = conn, ch
	slog.Info("amqp_connected", "queues", len(Queues))
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// Close shuts the connection down.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
