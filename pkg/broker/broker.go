// Package broker publishes domain events to RabbitMQ as persistent JSON
// messages on durable queues.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrClosed the publisher was closed
var ErrClosed = errors.New("broker: publisher closed")

// Publisher keeps one AMQP connection and redials lazily after it drops.
type Publisher struct {
	url    string
	logger *zap.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	declared map[string]bool
	closed   bool
}

// NewPublisher does not dial; the first Publish does.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger, declared: make(map[string]bool)}
}

func (p *Publisher) connection() (*amqp.Connection, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	p.conn = conn
	p.declared = make(map[string]bool)
	return conn, nil
}

// Publish declares queue (durable) on first use and sends v to it through
// the default exchange. Errors are logged and returned.
func (p *Publisher) Publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connection()
	if err != nil {
		p.logger.Warn("rabbitmq unavailable", zap.String("queue", queue), zap.Error(err))
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if !p.declared[queue] {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.logger.Warn("rabbitmq queue declare failed", zap.String("queue", queue), zap.Error(err))
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		p.declared[queue] = true
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.String("queue", queue), zap.Error(err))
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Close shuts the connection down; later Publish calls return ErrClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
