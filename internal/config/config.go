// Package config loads the demo's configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

const (
	EnvPostgresDSN  = "DEMO_POSTGRES_DSN"
	EnvDBDriver     = "DEMO_DB_DRIVER"
	EnvOutboxTable  = "DEMO_OUTBOX_TABLE"
	EnvLogLevel     = "DEMO_LOG_LEVEL"
	EnvIDStrategy   = "DEMO_ID_STRATEGY"
	EnvOTLPEndpoint = "DEMO_OTLP_ENDPOINT"
)

const (
	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"

	IDStrategyUUID   = "uuid"
	IDStrategyNanoID = "nanoid"
)

var (
	ErrInvalidDBDriver   = errors.New("invalid database driver")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidIDStrategy = errors.New("invalid id strategy")
)

// Config is the demo's configuration.
// An empty PostgresDSN selects the in-memory persister, an empty OTLPEndpoint disables OpenTelemetry.
type Config struct {
	PostgresDSN  string
	DBDriver     string
	OutboxTable  string
	LogLevel     slog.Level
	IDStrategy   string
	OTLPEndpoint string
}

// Load reads the configuration from the environment, applying defaults for unset variables.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration via getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}

		return fallback
	}

	cfg := Config{
		PostgresDSN:  get(EnvPostgresDSN, ""),
		DBDriver:     strings.ToLower(get(EnvDBDriver, DriverPGX)),
		OutboxTable:  get(EnvOutboxTable, "outbox"),
		IDStrategy:   strings.ToLower(get(EnvIDStrategy, IDStrategyNanoID)),
		OTLPEndpoint: get(EnvOTLPEndpoint, ""),
	}

	var errs []error

	switch cfg.DBDriver {
	case DriverPGX, DriverSQL, DriverSQLX:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDBDriver, cfg.DBDriver))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get(EnvLogLevel, "info"))); err != nil {
		errs = append(errs, errors.Join(ErrInvalidLogLevel, err))
	}

	switch cfg.IDStrategy {
	case IDStrategyUUID, IDStrategyNanoID:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidIDStrategy, cfg.IDStrategy))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// UsesPostgres reports whether events are persisted to a Postgres outbox.
func (c Config) UsesPostgres() bool {
	return c.PostgresDSN != ""
}

// UsesOpenTelemetry reports whether traces and metrics are exported via OTLP.
func (c Config) UsesOpenTelemetry() bool {
	return c.OTLPEndpoint != ""
}

// IDGenerator returns the generator matching IDStrategy.
func (c Config) IDGenerator() kernel.IDGenerator {
	if c.IDStrategy == IDStrategyUUID {
		return kernel.NewUUID
	}

	return kernel.NanoID
}
