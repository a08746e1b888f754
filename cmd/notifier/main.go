package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"restobook/config"
	"restobook/di"
	"restobook/internal/events/reservation"
	"restobook/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.Configure(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subscriber := di.InitializeSubscriber()
	notifier := reservation.New()

	log.Info().Str("driver", cfg.Events.Driver).Msg("Notifier listening for reservation events")

	if err := subscriber.Subscribe(ctx, notifier.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Notifier stopped")
	}

	log.Info().Msg("Notifier shut down")
}
