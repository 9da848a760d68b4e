// Package bootstrap wires the engine together: configuration, storage
// and cache connections, the command/query use cases, and the HTTP
// server, the way the teacher's own internal/bootstrap assembles its
// components from internal/service/config.go.
package bootstrap

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/agentledger/ledger/pkg/mlog"
)

// Config is the process-level configuration, loaded entirely from the
// environment (SPEC_FULL.md §2: "An env-tagged Config struct...parsed
// with caarlos0/env").
type Config struct {
	EnvName  string `env:"ENV_NAME" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"true"`

	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`

	PostgresDSN            string `env:"POSTGRES_DSN,required"`
	PostgresMigrationsPath string `env:"POSTGRES_MIGRATIONS_PATH" envDefault:"migrations"`
	PostgresDBName         string `env:"POSTGRES_DB_NAME" envDefault:"ledger"`

	RabbitMQURL string `env:"RABBITMQ_URL"`

	RateLimitBackend  string  `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RateLimitRate     float64 `env:"RATE_LIMIT_RATE_PER_SECOND" envDefault:"1.667"`
	RateLimitCapacity int     `env:"RATE_LIMIT_CAPACITY" envDefault:"100"`

	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RecipientCacheTTLSeconds int `env:"RECIPIENT_CACHE_TTL_SECONDS" envDefault:"30"`

	HoldSweepIntervalSeconds int `env:"HOLD_SWEEP_INTERVAL_SECONDS" envDefault:"60"`
	HoldSweepBatchSize       int `env:"HOLD_SWEEP_BATCH_SIZE" envDefault:"100"`
}

// LoadConfig reads Config from the process environment, first loading a
// local .env file if one is present (a missing file is not an error).
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: parse config: %w", err)
	}

	return cfg, nil
}

// usesRedis reports whether any configured feature needs a Redis connection.
func (c *Config) usesRedis() bool {
	return c.RedisAddress != "" || c.RateLimitBackend == "redis"
}

func logLevel(cfg *Config) mlog.LogLevel {
	level, err := mlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return mlog.InfoLevel
	}

	return level
}
