// Package helper drives golang-migrate against the write database.
package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"restobook/config"
	"restobook/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const (
	migrationsSource = "file://migrations/postgres"
	paramTable       = "x-migrations-table"
)

type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionStepUp  Direction = "step-up"
	DirectionDrop    Direction = "drop"
	DirectionVersion Direction = "version"
)

var ErrUnknownDirection = errors.New("unknown migration direction")

func ParseDirection(value string) (Direction, error) {
	switch direction := Direction(value); direction {
	case DirectionUp, DirectionDown, DirectionStepUp, DirectionDrop, DirectionVersion:
		return direction, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, value)
	}
}

func open(cfg *config.Config) (*migrate.Migrate, error) {
	extra := url.Values{}
	if table := cfg.DB.Postgres.MigrationTable; table != "" {
		extra.Set(paramTable, table)
	}

	mig, err := migrate.New(migrationsSource, postgres.DSN(cfg, cfg.DB.Postgres.Write, extra))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

// Run applies direction. Already being at the target version is not an error.
func Run(cfg *config.Config, direction Direction) error {
	mig, err := open(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrate instance")
		}
	}()

	switch direction {
	case DirectionUp:
		err = mig.Up()
	case DirectionStepUp:
		err = mig.Steps(1)
	case DirectionDown:
		err = mig.Steps(-1)
	case DirectionDrop:
		err = mig.Down()
	case DirectionVersion:
		return logVersion(mig)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migrations: %w", direction, err)
	}

	return logVersion(mig)
}

func logVersion(mig *migrate.Migrate) error {
	version, dirty, err := mig.Version()

	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("Database has no migrations applied")

		return nil
	case err != nil:
		return fmt.Errorf("error reading migration version: %w", err)
	}

	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database migration state")

	return nil
}

func Up(cfg *config.Config) error {
	return Run(cfg, DirectionUp)
}
