package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Transports
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50051"`

	// Cart store: in-memory when REDIS_ADDR is empty
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"100"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"24h"`

	// Catalog: built-in products when MYSQL_DSN is empty
	MySQLDSN     string `env:"MYSQL_DSN"`
	MySQLMigrate bool   `env:"MYSQL_MIGRATE" envDefault:"true"`

	// Cart events: logged when no brokers are configured
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"cart-events"`

	MutationDelay  time.Duration `env:"MUTATION_DELAY" envDefault:"0s"`
	EventWorkers   int           `env:"EVENT_WORKERS" envDefault:"4"`
	EventQueueSize int           `env:"EVENT_QUEUE_SIZE" envDefault:"1000"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.EventWorkers < 1 {
		return fmt.Errorf("EVENT_WORKERS must be positive, got %d", c.EventWorkers)
	}
	if c.EventQueueSize < 1 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be positive, got %d", c.EventQueueSize)
	}
	if c.MutationDelay < 0 {
		return fmt.Errorf("MUTATION_DELAY must not be negative, got %s", c.MutationDelay)
	}
	return nil
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
