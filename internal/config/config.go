package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Polling  PollingConfig
	Session  SessionConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// APIConfig holds settings for the payment backend the front-end talks to.
type APIConfig struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

// PollingConfig holds the intervals of the background tasks.
type PollingConfig struct {
	StatusInterval   time.Duration
	DashboardRefresh time.Duration
	FlowIdleTimeout  time.Duration
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// RedisConfig holds Redis configuration. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultAPIBaseURL is used when neither API_BASE_URL nor NEXT_PUBLIC_API_URL is set.
const DefaultAPIBaseURL = "http://localhost:8000"

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", getEnv("NEXT_PUBLIC_API_URL", DefaultAPIBaseURL)), "/"),
			Timeout: getDurationEnv("API_TIMEOUT", 0),
		},
		Polling: PollingConfig{
			StatusInterval:   getDurationEnv("POLL_INTERVAL", 3*time.Second),
			DashboardRefresh: getDurationEnv("DASHBOARD_REFRESH_INTERVAL", 30*time.Second),
			FlowIdleTimeout:  getDurationEnv("FLOW_IDLE_TIMEOUT", 10*time.Minute),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "sid"),
			TTL:        getDurationEnv("SESSION_TTL", 7*24*time.Hour),
			Secure:     getBoolEnv("SESSION_COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "payswiftly-web"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
