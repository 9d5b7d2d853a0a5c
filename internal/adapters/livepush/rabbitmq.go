package livepush

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/tracking"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Sink receives each decoded push. LiveLocations satisfies it.
type Sink interface {
	Replace(updates []domain.LiveDriverUpdate)
}

// Dial opens a broker connection.
func Dial(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	log.Println("Connected to RabbitMQ")
	return conn, nil
}

func declareExchange(ch *amqp091.Channel, name string) error {
	err := ch.ExchangeDeclare(
		name,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}
	return nil
}

// Consumer feeds driver-location broadcasts into a Sink.
type Consumer struct {
	exchange string
	sink     Sink
}

func NewConsumer(exchange string, sink Sink) *Consumer {
	return &Consumer{exchange: exchange, sink: sink}
}

// Consume binds a private queue to the exchange and delivers messages until
// ctx ends or the broker closes the channel.
func (c *Consumer) Consume(ctx context.Context, conn *amqp091.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, c.exchange); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", q.Name, err)
	}

	log.Printf("live push consumer bound exchange=%s queue=%s", c.exchange, q.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(msg.Body)
		}
	}
}

// Run keeps a consumer attached, reconnecting after retryDelay on failure.
// The sink keeps its last values while disconnected.
func (c *Consumer) Run(ctx context.Context, url string, retryDelay time.Duration) error {
	for {
		err := c.runOnce(ctx, url)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("live push consumer stopped: %v (retrying in %s)", err, retryDelay)

		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Consumer) runOnce(ctx context.Context, url string) error {
	conn, err := Dial(url)
	if err != nil {
		return err
	}
	defer conn.Close()

	return c.Consume(ctx, conn)
}

func (c *Consumer) handle(body []byte) {
	updates, err := tracking.DecodeDriverUpdates(body)
	if err != nil {
		log.Printf("live push: dropped message: %v", err)
		return
	}
	c.sink.Replace(updates)
}

// Publisher broadcasts driver-location payloads to the fanout exchange.
type Publisher struct {
	ch       *amqp091.Channel
	exchange string
}

func NewPublisher(conn *amqp091.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		ch.Close()
		return nil, err
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	err := p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error { return p.ch.Close() }
