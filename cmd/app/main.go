package main

import (
	"os"

	"restobook/config"
	"restobook/di"
	"restobook/helper"
	"restobook/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Restobook API
// @version 1.0
// @description Restaurant catalogue and table reservations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.Configure(cfg, os.Stdout)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
