package event

import (
	"context"
	"fmt"
	"restobook/config"
	"restobook/infras/kafka"
	"restobook/infras/rabbitmq"
	"restobook/shared/constant"
)

type Handler func(ctx context.Context, envelope Envelope) error

type Subscriber interface {
	// Subscribe blocks until ctx is cancelled.
	Subscribe(ctx context.Context, handler Handler) error
}

type subscriberImpl struct {
	cfg    *config.Config
	kafka  kafka.Client
	rabbit rabbitmq.Client
}

func NewSubscriber(cfg *config.Config, kafka kafka.Client, rabbit rabbitmq.Client) Subscriber {
	return &subscriberImpl{
		cfg:    cfg,
		kafka:  kafka,
		rabbit: rabbit,
	}
}

func (s *subscriberImpl) Subscribe(ctx context.Context, handler Handler) error {
	switch driver(s.cfg) {
	case constant.EventDriverKafka:
		return s.kafka.Consume(ctx, s.cfg.Kafka.ConsumerGroup, s.cfg.Events.Topic, func(ctx context.Context, message kafka.Message) error {
			return dispatch(ctx, message.Value, handler)
		})
	case constant.EventDriverRabbitMQ:
		return s.rabbit.Consume(ctx, func(ctx context.Context, message rabbitmq.Message) error {
			return dispatch(ctx, message.Body, handler)
		})
	default:
		return fmt.Errorf("event driver %q has no broker to subscribe to", driver(s.cfg))
	}
}

func dispatch(ctx context.Context, body []byte, handler Handler) error {
	envelope, err := Unmarshal(body)
	if err != nil {
		return err
	}

	return handler(ctx, envelope)
}
