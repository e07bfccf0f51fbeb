package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Alert sink names accepted in ALERT_SINKS
const (
	SinkLog      = "log"
	SinkFile     = "file"
	SinkStream   = "stream"
	SinkPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	Batch     BatchConfig
	Alert     AlertConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	API       APIConfig
	Synthetic SyntheticConfig
}

// BatchConfig holds batch scheduler configuration
type BatchConfig struct {
	Workers int // 0 = one worker per CPU
}

// AlertConfig holds alert delivery configuration
type AlertConfig struct {
	Sinks      []string
	FilePath   string
	StreamName string
	DedupeKeys int // Delivered alert keys remembered by the API server (0 = unbounded)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// APIConfig holds HTTP API configuration
type APIConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxSeries    int // Maximum series accepted per request
	RateLimit    int // Requests per second per client (0 = unlimited)
}

// SyntheticConfig holds the synthetic data generator defaults
type SyntheticConfig struct {
	Tickers int
	Points  int
	Seed    int64
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Batch: BatchConfig{
			Workers: getEnvAsInt("BATCH_WORKERS", 0),
		},
		Alert: AlertConfig{
			Sinks:      getEnvAsStringSlice("ALERT_SINKS", []string{SinkLog}),
			FilePath:   getEnv("ALERT_FILE_PATH", "alerts.txt"),
			StreamName: getEnv("ALERT_STREAM_NAME", "alerts"),
			DedupeKeys: getEnvAsInt("ALERT_DEDUPE_KEYS", 100000),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "stock_cruncher"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			Port:         getEnvAsInt("API_PORT", 8090),
			ReadTimeout:  getEnvAsDuration("API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("API_WRITE_TIMEOUT", 60*time.Second),
			MaxSeries:    getEnvAsInt("API_MAX_SERIES", 1000),
			RateLimit:    getEnvAsInt("API_RATE_LIMIT", 0),
		},
		Synthetic: SyntheticConfig{
			Tickers: getEnvAsInt("SYNTHETIC_TICKERS", 100),
			Points:  getEnvAsInt("SYNTHETIC_POINTS", 10000),
			Seed:    getEnvAsInt64("SYNTHETIC_SEED", 1),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Batch.Workers < 0 {
		return fmt.Errorf("BATCH_WORKERS must be non-negative, got %d", c.Batch.Workers)
	}
	for _, sink := range c.Alert.Sinks {
		switch sink {
		case SinkLog:
		case SinkFile:
			if c.Alert.FilePath == "" {
				return fmt.Errorf("ALERT_FILE_PATH is required for the file sink")
			}
		case SinkStream:
			if c.Redis.Host == "" {
				return fmt.Errorf("REDIS_HOST is required for the stream sink")
			}
			if c.Alert.StreamName == "" {
				return fmt.Errorf("ALERT_STREAM_NAME is required for the stream sink")
			}
		case SinkPostgres:
			if c.Database.Host == "" {
				return fmt.Errorf("DB_HOST is required for the postgres sink")
			}
		default:
			return fmt.Errorf("unknown alert sink %q", sink)
		}
	}
	if c.Alert.DedupeKeys < 0 {
		return fmt.Errorf("ALERT_DEDUPE_KEYS must be non-negative, got %d", c.Alert.DedupeKeys)
	}
	if c.API.MaxSeries <= 0 {
		return fmt.Errorf("API_MAX_SERIES must be positive, got %d", c.API.MaxSeries)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must be non-negative, got %d", c.API.RateLimit)
	}
	if c.Synthetic.Tickers <= 0 || c.Synthetic.Points <= 0 {
		return fmt.Errorf("SYNTHETIC_TICKERS and SYNTHETIC_POINTS must be positive")
	}
	return nil
}

// HasSink reports whether the named sink is enabled
func (c *AlertConfig) HasSink(name string) bool {
	for _, sink := range c.Sinks {
		if sink == name {
			return true
		}
	}
	return false
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Split by comma and trim spaces
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
