package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const exchangeType = "topic"

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpPublisher publishes order events to a RabbitMQ topic exchange.
type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   zerolog.Logger
}

// DialOptions controls the connection retry loop.
type DialOptions struct {
	Attempts int
	Backoff  time.Duration
}

// NewAMQPPublisher connects to RabbitMQ, declares a durable topic exchange
// and returns a publisher bound to it. Dialing is retried so the service
// can start alongside the broker container.
func NewAMQPPublisher(ctx context.Context, url, exchange string, opts DialOptions, logger zerolog.Logger) (Publisher, error) {
	logger = logger.With().Str("component", "amqp-publisher").Logger()

	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("failed to connect to RabbitMQ")

		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Backoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	logger.Info().Str("exchange", exchange).Msg("RabbitMQ publisher initialised")

	return &amqpPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Publish sends the event as a persistent JSON message.
func (p *amqpPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal order event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,         // exchange
		event.RoutingKey(), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("could not publish order event: %w", err)
	}

	p.logger.Debug().
		Str("routing_key", event.RoutingKey()).
		Str("order_number", event.OrderNumber).
		Msg("order event published")
	return nil
}

// Close closes the channel and the connection.
func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
