// Package timezone pins audit timestamps to APP_TIMEZONE. Reservation dates
// and times of day are zone-less and never pass through here.
package timezone

import (
	"restobook/config"
	"time"

	"github.com/rs/zerolog/log"
)

const fallback = "UTC"

var appLocation = time.UTC

func init() {
	appLocation = Load(config.Get().App.Timezone)
}

// Load resolves an IANA zone name. Empty or unknown names fall back to UTC.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Str("timezone", fallback).Msg("No timezone configured, using default")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, falling back to UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

func Location() *time.Location {
	return appLocation
}

// Now is the instant stamped into created_at and modified_at.
func Now() time.Time {
	return time.Now().In(appLocation)
}

// Format renders t in the application timezone.
func Format(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}

	return t.In(appLocation).Format(layout)
}
