package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Environment string
	LogLevel    string

	API     APIConfig
	Tracker TrackerConfig
}

// APIConfig configures the customer API server.
type APIConfig struct {
	HTTPPort     string
	FiberPrefork bool

	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	WorkerBufferSize int
	WorkerBatchSize  int
	WorkerFlushEvery time.Duration
}

// TrackerConfig configures the tracking pipeline service.
type TrackerConfig struct {
	HTTPPort string

	APIBaseURL string
	APITimeout time.Duration

	DocStorePath string

	SyncInterval    time.Duration
	FlushInterval   time.Duration
	QueueHighWater  int
	MaxRetries      int
	RetryBaseDelay  time.Duration
	HealthPollEvery time.Duration
	BaselineProfile string

	IdentityUID   string
	IdentityEmail string
	IdentityName  string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.API = APIConfig{
		HTTPPort:           getEnv("API_HTTP_PORT", ":8080"),
		FiberPrefork:       parseBoolEnv("FIBER_PREFORK", false),
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "clv"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),
		WorkerBufferSize:   parseIntEnv("WORKER_BUFFER_SIZE", 1024),
		WorkerBatchSize:    parseIntEnv("WORKER_BATCH_SIZE", 200),
		WorkerFlushEvery:   parseDurationEnv("WORKER_FLUSH_EVERY", 5*time.Second),
	}

	cfg.Tracker = TrackerConfig{
		HTTPPort:        getEnv("TRACKER_HTTP_PORT", ":8081"),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8080"),
		APITimeout:      parseDurationEnv("API_TIMEOUT", 10*time.Second),
		DocStorePath:    getEnv("DOCSTORE_PATH", "./data/docstore"),
		SyncInterval:    parseDurationEnv("SYNC_INTERVAL", 5*time.Minute),
		FlushInterval:   parseDurationEnv("FLUSH_INTERVAL", 30*time.Second),
		QueueHighWater:  parseIntEnv("QUEUE_HIGH_WATER", 10),
		MaxRetries:      parseIntEnv("SYNC_MAX_RETRIES", 3),
		RetryBaseDelay:  parseDurationEnv("SYNC_RETRY_BASE_DELAY", 30*time.Second),
		HealthPollEvery: parseDurationEnv("HEALTH_POLL_EVERY", 15*time.Second),
		BaselineProfile: getEnv("CLV_BASELINE", "activity_tracking"),
		IdentityUID:     os.Getenv("IDENTITY_UID"),
		IdentityEmail:   os.Getenv("IDENTITY_EMAIL"),
		IdentityName:    os.Getenv("IDENTITY_NAME"),
	}

	if cfg.Tracker.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseIntEnv(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
