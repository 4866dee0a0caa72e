// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Service    ServiceConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Settlement SettlementConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Kafka      KafkaConfig
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port            int
	GRPCPort        int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnTime time.Duration
	MaxIdleTime time.Duration
	HealthCheck time.Duration
}

// StorageConfig selects the persistence backend: "postgres" or "memory".
type StorageConfig struct {
	Driver string
}

type SettlementConfig struct {
	// MaxAttempts bounds how many times a budget deduction is re-run after a
	// serialization or deadlock failure.
	MaxAttempts    int
	BudgetTimezone string
}

type RedisConfig struct {
	Addr           string
	IdempotencyTTL time.Duration
}

type NATSConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers       string
	Topic         string
	RelayInterval time.Duration
	RelayBatch    int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "procurement-settlement"),
			Version:     getEnv("SERVICE_VERSION", "dev"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8080),
			GRPCPort:        getEnvInt("GRPC_PORT", 9090),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 20*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Database:    getEnv("DB_NAME", "procurement"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns:    int32(getEnvInt("DB_MIN_CONNS", 2)),
			MaxConnTime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			HealthCheck: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		},
		Settlement: SettlementConfig{
			MaxAttempts:    getEnvInt("SETTLEMENT_MAX_ATTEMPTS", 3),
			BudgetTimezone: getEnv("BUDGET_TIMEZONE", "UTC"),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		NATS: NATSConfig{
			URL: os.Getenv("NATS_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:       os.Getenv("KAFKA_BROKERS"),
			Topic:         getEnv("KAFKA_ORDER_TOPIC", "procurement.orders"),
			RelayInterval: getEnvDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
			RelayBatch:    getEnvInt("OUTBOX_RELAY_BATCH", 100),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Settlement.MaxAttempts < 1 {
		return fmt.Errorf("SETTLEMENT_MAX_ATTEMPTS must be >= 1, got %d", c.Settlement.MaxAttempts)
	}
	if _, err := time.LoadLocation(c.Settlement.BudgetTimezone); err != nil {
		return fmt.Errorf("invalid BUDGET_TIMEZONE %q: %w", c.Settlement.BudgetTimezone, err)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
