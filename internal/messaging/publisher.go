// Package messaging publishes transfer events to RabbitMQ.
// Events are fire-and-forget: the exchange and routing keys are this
// service's contract, message bodies are plain text.
package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange and routing keys for transfer events.
const (
	EventsExchange = "payments.events"

	TransactionCompletedKey = "transaction.completed"
	BalanceChangedKey       = "account.balance_changed"
	CurrencyConvertedKey    = "transaction.currency_converted"
)

// Publisher sends plain-text events to a topic exchange.
type Publisher struct {
	conn *amqp.Connection

	muChannel sync.Mutex
	channel   *amqp.Channel
}

// NewPublisher connects to RabbitMQ and declares the events exchange.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Publish sends a plain-text message with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey, body string) error {
	p.muChannel.Lock()
	defer p.muChannel.Unlock()

	err := p.channel.PublishWithContext(ctx,
		EventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			Body:         []byte(body),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.muChannel.Lock()
	defer p.muChannel.Unlock()

	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
