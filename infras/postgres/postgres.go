package postgres

//nolint:revive
import (
	"context"
	"errors"
	"net"
	"net/url"
	"restobook/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"

	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
)

// Connection splits traffic between a read replica and the primary. Both may
// point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  connect("read", cfg, cfg.DB.Postgres.Read),
		Write: connect("write", cfg, cfg.DB.Postgres.Write),
	}
}

func (c *Connection) Close() error {
	var errs []error

	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}

	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}

	return errors.Join(errs...)
}

// DatabaseName applies DB_POSTGRES_PREFIX, used to keep per-branch databases apart.
func DatabaseName(cfg *config.Config, base string) string {
	return cfg.DB.Postgres.Prefix + base
}

// DSN renders a postgres:// URL. extra is appended as query parameters, which
// lib/pq forwards as runtime settings when it does not recognise them.
func DSN(cfg *config.Config, endpoint config.PostgresEndpoint, extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", endpoint.SSLMode)

	if endpoint.Timezone != "" {
		query.Set("timezone", endpoint.Timezone)
	}

	for key, values := range extra {
		query[key] = values
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + DatabaseName(cfg, endpoint.Name),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func connect(role string, cfg *config.Config, endpoint config.PostgresEndpoint) *sqlx.DB {
	dsn := DSN(cfg, endpoint, nil)
	wait := time.Duration(cfg.DB.Postgres.RetryWaitTime) * time.Second

	logger := log.With().
		Str("name", role).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", DatabaseName(cfg, endpoint.Name)).
		Logger()

	for attempt := 1; attempt <= max(1, cfg.DB.Postgres.MaxRetry); attempt++ {
		db, err := sqlx.ConnectContext(context.Background(), driverName, dsn)
		if err == nil {
			configurePool(db, cfg)
			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	logger.Fatal().Msg("Giving up connecting to database")

	return nil
}

func configurePool(db *sqlx.DB, cfg *config.Config) {
	pool := cfg.DB.Postgres.Pool

	maxOpen := defaultMaxOpenConns
	if pool.MaxOpen > 0 {
		maxOpen = pool.MaxOpen
	}

	maxIdle := min(defaultMaxIdleConns, maxOpen)
	if pool.MaxIdle > 0 {
		maxIdle = pool.MaxIdle
	}

	lifetime := defaultConnMaxLifetime
	if pool.MaxLifetimeMins > 0 {
		lifetime = time.Duration(pool.MaxLifetimeMins) * time.Minute
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
}

