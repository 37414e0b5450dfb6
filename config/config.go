package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database         DatabaseConfig
	HTTPAddr         string
	OwnerHeader      string
	RedisURL         string
	CacheTTL         time.Duration
	KafkaHost        string
	OrderEventsTopic string
	RelayInterval    time.Duration
	RelayBatch       int
	LogLevel         string
	LogDev           bool
}

type DatabaseConfig struct {
	Driver       string
	DatabaseDSN  string
	MigrationDir string
}

var DefaultConfig = Config{
	Database: DatabaseConfig{
		Driver:       "mysql",
		DatabaseDSN:  "root:1@tcp(localhost:3306)/storefront?parseTime=true",
		MigrationDir: "migration/mysql",
	},
	HTTPAddr:         ":8080",
	OwnerHeader:      "X-Owner-Id",
	RedisURL:         "",
	CacheTTL:         5 * time.Minute,
	KafkaHost:        "localhost:29092",
	OrderEventsTopic: "ORDER_EVENTS_TOPIC",
	RelayInterval:    time.Second,
	RelayBatch:       100,
	LogLevel:         "info",
	LogDev:           false,
}

// Load returns DefaultConfig with STOREFRONT_* environment overrides applied.
func Load() (Config, error) {
	conf := DefaultConfig

	if v := os.Getenv("STOREFRONT_DB_DRIVER"); v != "" {
		if v != "mysql" && v != "postgres" {
			return Config{}, fmt.Errorf("STOREFRONT_DB_DRIVER: unsupported driver %q", v)
		}
		conf.Database.Driver = v
		conf.Database.MigrationDir = "migration/" + v
	}
	if v := os.Getenv("STOREFRONT_DATABASE_DSN"); v != "" {
		conf.Database.DatabaseDSN = v
	}
	if v := os.Getenv("STOREFRONT_MIGRATION_DIR"); v != "" {
		conf.Database.MigrationDir = v
	}
	if v := os.Getenv("STOREFRONT_HTTP_ADDR"); v != "" {
		conf.HTTPAddr = v
	}
	if v := os.Getenv("STOREFRONT_OWNER_HEADER"); v != "" {
		conf.OwnerHeader = v
	}
	if v, ok := os.LookupEnv("STOREFRONT_REDIS_URL"); ok {
		conf.RedisURL = v
	}
	if v := os.Getenv("STOREFRONT_KAFKA_HOST"); v != "" {
		conf.KafkaHost = v
	}
	if v := os.Getenv("STOREFRONT_ORDER_EVENTS_TOPIC"); v != "" {
		conf.OrderEventsTopic = v
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		conf.LogLevel = v
	}

	var err error
	if conf.CacheTTL, err = durationEnv("STOREFRONT_CACHE_TTL", conf.CacheTTL); err != nil {
		return Config{}, err
	}
	if conf.RelayInterval, err = durationEnv("STOREFRONT_RELAY_INTERVAL", conf.RelayInterval); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("STOREFRONT_RELAY_BATCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("STOREFRONT_RELAY_BATCH: must be a positive integer, got %q", v)
		}
		conf.RelayBatch = n
	}
	if v := os.Getenv("STOREFRONT_LOG_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("STOREFRONT_LOG_DEV: %w", err)
		}
		conf.LogDev = b
	}

	return conf, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}
