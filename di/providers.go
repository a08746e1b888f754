package di

import (
	"io"

	"restobook/infras/kafka"
	"restobook/infras/otel"
	"restobook/infras/postgres"
	"restobook/infras/rabbitmq"
	"restobook/shared/background"

	goRedis "github.com/redis/go-redis/v9"
)

// closers are released in order on shutdown: background tasks drain before
// the brokers they publish to, and the tracer goes last.
func closers(
	tasks *background.Group,
	kafkaClient kafka.Client,
	rabbitClient rabbitmq.Client,
	db *postgres.Connection,
	cacheClient *goRedis.Client,
	tracer otel.Otel,
) []io.Closer {
	return []io.Closer{tasks, kafkaClient, rabbitClient, db, cacheClient, tracer}
}
