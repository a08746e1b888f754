//go:build wireinject
// +build wireinject

package di

import (
	"restobook/config"
	"restobook/infras/jwt"
	"restobook/infras/kafka"
	"restobook/infras/otel"
	"restobook/infras/postgres"
	"restobook/infras/rabbitmq"
	"restobook/infras/redis"
	"restobook/infras/s3"
	"restobook/permissions"
	"restobook/shared/background"
	"restobook/shared/cache"
	"restobook/shared/event"
	"restobook/shared/realtime"
	"restobook/transport/http"
	"restobook/transport/http/middleware"
	"restobook/transport/http/router"

	reservationRepository "restobook/internal/domains/reservation/repository"
	reservationService "restobook/internal/domains/reservation/service"
	restaurantRepository "restobook/internal/domains/restaurant/repository"
	restaurantService "restobook/internal/domains/restaurant/service"
	liveHandler "restobook/internal/handlers/live"
	reservationHandler "restobook/internal/handlers/reservation"
	restaurantHandler "restobook/internal/handlers/restaurant"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	rabbitmq.New,
	closers,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	background.New,
	cache.NewRedisCache,
	realtime.NewHub,
	event.NewPublisher,
)

var restaurantDomain = wire.NewSet(
	restaurantRepository.New,
	restaurantService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var domains = wire.NewSet(
	restaurantDomain,
	reservationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	restaurantHandler.New,
	reservationHandler.New,
	liveHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeSubscriber() event.Subscriber {
	wire.Build(
		config.Get,
		kafka.New,
		rabbitmq.New,
		event.NewSubscriber,
	)

	return nil
}
