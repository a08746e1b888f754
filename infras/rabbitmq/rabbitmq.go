package rabbitmq

//go:generate go run go.uber.org/mock/mockgen -source=./rabbitmq.go -destination=./mocks/rabbitmq_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"restobook/config"
	"restobook/shared/constant"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	initialBackoff    = time.Second
	maxBackoff        = 30 * time.Second
	exchangeKindTopic = "topic"
	bindAll           = "#"
)

var ErrDeliveriesClosed = errors.New("deliveries channel closed")

// Message is a keyed, already encoded payload.
type Message struct {
	Key  string
	Type string
	Body []byte
}

type Handler func(ctx context.Context, message Message) error

type Client interface {
	Publish(ctx context.Context, message Message) error
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

type rabbitClientImpl struct {
	config *config.Config

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func New(config *config.Config) Client {
	return &rabbitClientImpl{config: config}
}

// topology declares the durable queue and, when an exchange is configured,
// binds it to a topic exchange.
func (r *rabbitClientImpl) topology(ch *amqp.Channel) error {
	queue := r.config.RabbitMQ.Queue
	exchange := r.config.RabbitMQ.Exchange

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	if exchange == "" {
		return nil
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKindTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.QueueBind(queue, bindAll, exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	return nil
}

func (r *rabbitClientImpl) publishChannel() (*amqp.Channel, error) {
	if r.channel != nil && !r.channel.IsClosed() {
		return r.channel, nil
	}

	if r.conn == nil || r.conn.IsClosed() {
		conn, err := amqp.Dial(r.config.RabbitMQ.URL)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}

		r.conn = conn
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}

	if err := r.topology(ch); err != nil {
		_ = ch.Close()

		return nil, err
	}

	r.channel = ch

	return ch, nil
}

func (r *rabbitClientImpl) Publish(ctx context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.publishChannel()
	if err != nil {
		log.Error().Err(err).Msg("RabbitMQ channel unavailable")

		return err
	}

	routingKey := r.config.RabbitMQ.Queue
	if r.config.RabbitMQ.Exchange != "" {
		routingKey = message.Type
	}

	err = ch.PublishWithContext(ctx, r.config.RabbitMQ.Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    message.Key,
		Type:         message.Type,
		Timestamp:    time.Now().UTC(),
		Body:         message.Body,
	})
	if err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Msg("Failed to publish to RabbitMQ")

		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Consume reconnects with exponential backoff until ctx is cancelled.
func (r *rabbitClientImpl) Consume(ctx context.Context, handler Handler) error {
	backoff := initialBackoff

	for {
		conn, err := amqp.Dial(r.config.RabbitMQ.URL)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("Failed to dial RabbitMQ")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}

			backoff = min(backoff*2, maxBackoff)

			continue
		}

		backoff = initialBackoff

		err = r.consumeLoop(ctx, conn, handler)
		_ = conn.Close()

		if ctx.Err() != nil {
			log.Info().Msg("RabbitMQ consumer stopped")

			return nil
		}

		log.Warn().Err(err).Msg("RabbitMQ consume loop ended, reconnecting")
	}
}

func (r *rabbitClientImpl) consumeLoop(ctx context.Context, conn *amqp.Connection, handler Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if prefetch := r.config.RabbitMQ.Prefetch; prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			log.Warn().Err(err).Msg("Failed to set RabbitMQ QoS")
		}
	}

	if err := r.topology(ch); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, r.config.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range deliveries {
		msg := Message{Key: d.MessageId, Type: d.Type, Body: d.Body}

		if err := handler(ctx, msg); err != nil {
			log.Error().Err(err).Str("type", d.Type).Msg("Failed to handle RabbitMQ message")

			// rejected without requeue
			_ = d.Nack(false, false)

			continue
		}

		_ = d.Ack(false)
	}

	return ErrDeliveriesClosed
}

func (r *rabbitClientImpl) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error

	if r.channel != nil && !r.channel.IsClosed() {
		errs = append(errs, r.channel.Close())
	}

	if r.conn != nil && !r.conn.IsClosed() {
		errs = append(errs, r.conn.Close())
	}

	r.channel, r.conn = nil, nil

	return errors.Join(errs...)
}
