package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BaseURL    string // Required: externally visible origin, used for redirect_uri and same-site checks
	AdminToken string // Optional: bearer token for the admin API; empty disables it

	LandingURL        string        // Optional: post-login landing page (default: /)
	StateTTL          time.Duration // Optional: state token lifetime (default: 120s)
	SessionTTL        time.Duration // Optional: login session lifetime (default: 12h)
	DiscoveryCacheTTL time.Duration // Optional: discovery document cache lifetime (default: 1h)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./sso.db)
	RedisAddr           string        // Optional: Redis address; empty keeps sessions and cache in memory
	RedisPassword       string        // Optional: Redis password
	SecureCookies       bool          // Optional: mark cookies Secure (default: true outside dev)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL:    os.Getenv("SSO_BASE_URL"),
		AdminToken: os.Getenv("SSO_ADMIN_TOKEN"),

		LandingURL:        getEnvOrDefault("SSO_LANDING_URL", "/"),
		StateTTL:          getEnvDurationOrDefault("SSO_STATE_TTL", 120*time.Second),
		SessionTTL:        getEnvDurationOrDefault("SSO_SESSION_TTL", 12*time.Hour),
		DiscoveryCacheTTL: getEnvDurationOrDefault("SSO_DISCOVERY_CACHE_TTL", 1*time.Hour),

		DatabaseFile:        getEnvOrDefault("SSO_DATABASE_FILE", "sso.db"),
		RedisAddr:           os.Getenv("SSO_REDIS_ADDR"),
		RedisPassword:       os.Getenv("SSO_REDIS_PASSWORD"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	cfg.SecureCookies = cfg.Env != "dev"
	if v := os.Getenv("SSO_SECURE_COOKIES"); v != "" {
		cfg.SecureCookies = v == "true" || v == "1"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
