package config

import (
	"fmt"

	"github.com/shareit-app/service-booking/pkg/config"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	StorageDriver   string
	MigrationsDir   string
	ConsumerEnabled bool
	DBConfig        config.DatabaseConfig
	JWTConfig       config.JWTConfig
	KafkaConfig     config.KafkaConfig
	RedisConfig     config.RedisConfig
	RateLimit       config.RateLimitConfig
}

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "shareit_booking")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("CATALOG_CONSUMER_ENABLED", true)

	cfg := &ServiceConfig{
		Port:            config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:          config.GetAppEnv(v),
		StorageDriver:   v.GetString("STORAGE_DRIVER"),
		MigrationsDir:   v.GetString("MIGRATIONS_DIR"),
		ConsumerEnabled: v.GetBool("CATALOG_CONSUMER_ENABLED"),
		DBConfig:        config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:       config.LoadJWTConfig(v),
		KafkaConfig:     config.LoadKafkaConfig(v),
		RedisConfig:     config.LoadRedisConfig(v),
		RateLimit:       config.LoadRateLimitConfig(v),
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
	if cfg.ConsumerEnabled && len(cfg.KafkaConfig.Brokers) == 0 {
		return nil, fmt.Errorf("catalog consumer enabled but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}
