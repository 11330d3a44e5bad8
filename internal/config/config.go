// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds everything cmd/server and cmd/historian read from the environment.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store       string `env:"STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"contaminados.db"`

	// RedisAddr enables the historian queue when set.
	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	HistorianQueue       string `env:"HISTORIAN_QUEUE_NAME" envDefault:"contaminados_events"`
	HistorianBatchSize   int    `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushMs     int    `env:"HISTORIAN_FLUSH_MS" envDefault:"500"`
	HistorianMaxPending  int    `env:"HISTORIAN_MAX_PENDING" envDefault:"1000"`
	InactivityTimeoutSec int    `env:"GAME_INACTIVITY_TIMEOUT_SEC" envDefault:"600"`

	// TokenExpireTime is "0", "never" or a Go duration.
	TokenExpireTime string `env:"TOKEN_EXPIRE_TIME" envDefault:"24h"`

	// RandomSeed fixes role and leader draws when non-zero.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.HistorianBatchSize <= 0 {
		return fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive")
	}
	if c.HistorianFlushMs <= 0 {
		return fmt.Errorf("HISTORIAN_FLUSH_MS must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// FlushDelay is the historian's batch flush interval.
func (c Config) FlushDelay() time.Duration {
	return time.Duration(c.HistorianFlushMs) * time.Millisecond
}

// InactivityTimeout is how long a game may stay silent before the historian
// marks it abandoned.
func (c Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSec) * time.Second
}

// NewLogger returns a logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
