package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the standalone consumer configuration.
type Config struct {
	Redis    RedisConfig
	Store    StoreConfig
	Consumer ConsumerConfig
	Log      LogConfig
}

// RedisConfig holds the broker connection.
type RedisConfig struct {
	Addr string `default:"localhost:6379" envconfig:"REDIS_ADDR"`
}

// Validate validates the redis configuration.
func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis address cannot be empty")
	}

	return nil
}

// StoreConfig selects the durable store the consumer writes visits to.
type StoreConfig struct {
	Backend     string        `default:"postgres"     envconfig:"STORE_BACKEND"`
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	SQLitePath  string        `default:"shortlinks.db" envconfig:"SQLITE_PATH"`
	CacheTTL    time.Duration `default:"0s"            envconfig:"CACHE_TTL"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database url is required for the postgres store")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for the sqlite store")
		}
	case "redis":
	default:
		return fmt.Errorf("invalid store backend: %s (must be one of: postgres, sqlite, redis)", c.Backend)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	return nil
}

// ConsumerConfig holds stream consumer settings.
type ConsumerConfig struct {
	Group string `default:"shortlinks" envconfig:"CONSUMER_GROUP"`
}

// Validate validates the consumer configuration.
func (c *ConsumerConfig) Validate() error {
	if c.Group == "" {
		return fmt.Errorf("consumer group cannot be empty")
	}

	return nil
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `default:"json" envconfig:"LOG_FORMAT"`
	Level  string `default:"info" envconfig:"LOG_LEVEL"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}

	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Level)
	}

	return nil
}

type section interface {
	Validate() error
}

// Load reads configuration from the environment. Load .env files before calling it.
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name string
		target section
	}{
		{"Redis", &cfg.Redis},
		{"Store", &cfg.Store},
		{"Consumer", &cfg.Consumer},
		{"Log", &cfg.Log},
	}

	for _, s := range sections {
		if err := envconfig.Process("", s.target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}

		if err := s.target.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}

	return cfg, nil
}
