package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// ErrUnknownDriver is returned when STORAGE_DRIVER names no known backend.
var ErrUnknownDriver = errors.New("unknown storage driver")

// StorageDriver selects where the snapshot is kept.
type StorageDriver string

const (
	DriverFile     StorageDriver = "file"
	DriverSQLite   StorageDriver = "sqlite"
	DriverPostgres StorageDriver = "postgres"
	DriverRedis    StorageDriver = "redis"
	DriverMemory   StorageDriver = "memory"
)

// IsValid reports whether the driver is known.
func (d StorageDriver) IsValid() bool {
	switch d {
	case DriverFile, DriverSQLite, DriverPostgres, DriverRedis, DriverMemory:
		return true
	default:
		return false
	}
}

// IsRemote reports whether the driver talks to a network service.
func (d StorageDriver) IsRemote() bool {
	return d == DriverPostgres || d == DriverRedis
}

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    uuid.UUID

	// Storage
	StorageDriver  StorageDriver
	StatePath      string
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string
	AsyncSave      bool

	// Circuit breaker around remote storage
	BreakerEnabled          bool
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration

	// RabbitMQ; the worker consumes reminder events from RabbitMQQueue
	RabbitMQURL   string
	RabbitMQQueue string

	// Reminder defaults offered during onboarding
	ReminderHour   int
	ReminderMinute int

	// HTTP API
	APIAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string

	// Worker
	WorkerHealthAddr    string
	WorkerStatsInterval time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	userID, err := uuid.Parse(getEnv("DISCIPLINE_USER_ID", "00000000-0000-0000-0000-000000000001"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISCIPLINE_USER_ID: %w", err)
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    userID,

		StorageDriver:  StorageDriver(strings.ToLower(getEnv("STORAGE_DRIVER", string(DriverFile)))),
		StatePath:      getEnv("STATE_PATH", filepath.Join(dataDir(), "state.json")),
		SQLitePath:     getEnv("SQLITE_PATH", filepath.Join(dataDir(), "discipline.db")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "discipline"),
		AsyncSave:      getBoolEnv("ASYNC_SAVE", false),

		BreakerEnabled:          getBoolEnv("BREAKER_ENABLED", true),
		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "discipline.worker.reminders"),

		ReminderHour:   getIntEnv("REMINDER_HOUR", 20),
		ReminderMinute: getIntEnv("REMINDER_MINUTE", 0),

		APIAddr: getEnv("API_ADDR", "127.0.0.1:8080"),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		WorkerHealthAddr:    getEnv("WORKER_HEALTH_ADDR", "127.0.0.1:8083"),
		WorkerStatsInterval: getDurationEnv("WORKER_STATS_INTERVAL", time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if !c.StorageDriver.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StorageDriver)
	}
	if c.StorageDriver == DriverPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	if c.StorageDriver == DriverRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required for the redis driver")
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 || c.ReminderMinute < 0 || c.ReminderMinute > 59 {
		return fmt.Errorf("REMINDER_HOUR/REMINDER_MINUTE out of range: %02d:%02d", c.ReminderHour, c.ReminderMinute)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".discipline"
	}
	return filepath.Join(home, ".discipline")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
