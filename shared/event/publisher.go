package event

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"restobook/config"
	"restobook/infras/kafka"
	"restobook/infras/otel"
	"restobook/infras/rabbitmq"
	"restobook/shared/constant"
	"restobook/shared/realtime"

	"github.com/rs/zerolog/log"
)

type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
}

type publisherImpl struct {
	cfg    *config.Config
	kafka  kafka.Client
	rabbit rabbitmq.Client
	hub    realtime.Hub
	otel   otel.Otel
}

func NewPublisher(cfg *config.Config, kafka kafka.Client, rabbit rabbitmq.Client, hub realtime.Hub, otel otel.Otel) Publisher {
	log.Info().Str("driver", driver(cfg)).Msg("Event publisher initialized")

	return &publisherImpl{
		cfg:    cfg,
		kafka:  kafka,
		rabbit: rabbit,
		hub:    hub,
		otel:   otel,
	}
}

func driver(cfg *config.Config) string {
	if cfg.Events.Driver == "" {
		return constant.EventDriverNone
	}

	return cfg.Events.Driver
}

// Publish fans the envelope out to the live feed first and then to the
// configured broker. Only broker failures are reported.
func (p *publisherImpl) Publish(ctx context.Context, envelope Envelope) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelBrokerScopeName, constant.OtelBrokerScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"event.type": string(envelope.Type),
		"event.key":  envelope.Key,
	})

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode event envelope: %w", err)
	}

	if envelope.Stream != "" && p.hub != nil {
		delivered := p.hub.Broadcast(envelope.Stream, body)
		log.Debug().Str("stream", envelope.Stream).Int("subscribers", delivered).Msg("Event broadcast to live feed")
	}

	switch driver(p.cfg) {
	case constant.EventDriverKafka:
		err = p.kafka.SendMessages(ctx, p.cfg.Events.Topic, kafka.Message{Key: envelope.Key, Value: body})
	case constant.EventDriverRabbitMQ:
		err = p.rabbit.Publish(ctx, rabbitmq.Message{Key: envelope.Key, Type: string(envelope.Type), Body: body})
	case constant.EventDriverNone:
		return nil
	default:
		return fmt.Errorf("unknown event driver: %s", p.cfg.Events.Driver)
	}

	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", envelope.Type, err)
	}

	return nil
}
