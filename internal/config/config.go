package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Default upstream endpoint, overridable for tests and staging.
const defaultEndpoint = "https://api.lu.ma/public/v1/calendar/list-events"

// Config holds everything the server reads from the environment. Loaded
// once at startup and passed into the handler explicitly, so tests can
// inject fake credentials and endpoints. A missing LUMA_API_KEY is not
// fatal here; the handler answers it as a configuration error per request.
type Config struct {
	Port            string
	LumaAPIKey      string
	LumaEndpoint    string
	OrgKeyword      string
	RecencyWindow   time.Duration
	UpstreamTimeout time.Duration
	RateLimitPerMin int
}

// Load reads the configuration from the environment, applying defaults for
// everything but the credential.
func Load() Config {
	return Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		LumaAPIKey:      os.Getenv("LUMA_API_KEY"),
		LumaEndpoint:    getEnvOrDefault("LUMA_ENDPOINT", defaultEndpoint),
		OrgKeyword:      getEnvOrDefault("ORG_KEYWORD", "CAISH"),
		RecencyWindow:   getEnvDuration("RECENCY_WINDOW", 7*24*time.Hour),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 60),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration env, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid int env, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}
