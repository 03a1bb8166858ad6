package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the deployment used when nothing else is configured.
const DefaultAPIBaseURL = "https://vitalmotion-api.onrender.com"

// Config aggregates runtime configuration for the client.
type Config struct {
	App      AppConfig
	API      APIConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Polling  PollingConfig
	Devices  DeviceConfig
}

// AppConfig controls the local portal.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// APIConfig selects the backend deployment.
type APIConfig struct {
	BaseURL string
	// Source names the precedence entry BaseURL was taken from.
	Source string
}

// StoreConfig selects where the session slots live.
type StoreConfig struct {
	Backend    string
	FilePath   string
	Passphrase string
	KeyPrefix  string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Format is json (default) or console.
	Format string
}

// PollingConfig holds per resource kind intervals in milliseconds.
type PollingConfig struct {
	TelemetryMillis int
	AlertsMillis    int
	ChatMillis      int
}

// DeviceConfig names the telemetry sources.
type DeviceConfig struct {
	// Patient is the device a doctor dashboard observes.
	Patient string
}

// Load reads configuration from environment variables, applying defaults where possible.
// apiOverride is the highest precedence base URL source, typically a CLI flag.
func Load(apiOverride string) (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	baseURL, source := ResolveBaseURL(DefaultSources(apiOverride)...)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "vitalmotion-client"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("PORTAL_HOST", "127.0.0.1"),
			Port:                  getEnv("PORTAL_PORT", "5173"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		API: APIConfig{
			BaseURL: baseURL,
			Source:  source,
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("SESSION_STORE", "file")),
			FilePath:   getEnv("SESSION_FILE", defaultSessionFile()),
			Passphrase: os.Getenv("SESSION_PASSPHRASE"),
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "vitalmotion:"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Polling: PollingConfig{
			TelemetryMillis: getEnvAsInt("POLL_TELEMETRY_MS", 5000),
			AlertsMillis:    getEnvAsInt("POLL_ALERTS_MS", 5000),
			ChatMillis:      getEnvAsInt("POLL_CHAT_MS", 3000),
		},
		Devices: DeviceConfig{
			Patient: getEnv("PATIENT_DEVICE_ID", "vm-001"),
		},
	}

	return cfg, nil
}

// Addr returns the portal bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Telemetry returns the telemetry poll interval.
func (p PollingConfig) Telemetry() time.Duration { return millis(p.TelemetryMillis, 5000) }

// Alerts returns the alerts poll interval.
func (p PollingConfig) Alerts() time.Duration { return millis(p.AlertsMillis, 5000) }

// Chat returns the chat poll interval.
func (p PollingConfig) Chat() time.Duration { return millis(p.ChatMillis, 3000) }

func millis(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Millisecond
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".vitalmotion", "session.json")
	}
	return filepath.Join(dir, "vitalmotion", "session.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
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

func getEnvAsBool(key string, fallback bool) bool {
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
