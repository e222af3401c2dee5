package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
)

type Config struct {
	// NHL backend
	APIBaseURL     string
	APIBearerToken string
	APIRateLimit   float64 // requests/sec, <= 0 disables limiting
	APIBurst       int

	// HTTP server
	ListenAddr string

	// Defaults applied to sessions started without an explicit config
	DefaultWatch watch.Config

	// Storage
	PrefsDBPath     string
	DefaultTimezone string
	RedisURL        string // optional player cache, empty disables

	// Sessions started at boot
	WatchlistPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:     strings.TrimRight(envStr("NHL_API_BASE_URL", "http://localhost:8001"), "/"),
		APIBearerToken: envStr("NHL_API_TOKEN", ""),
		APIRateLimit:   envFloat("NHL_API_RATE_LIMIT", 10),
		APIBurst:       envInt("NHL_API_BURST", 10),

		ListenAddr: envStr("LISTEN_ADDR", ":8080"),

		DefaultWatch: watch.Config{
			PollingFrequency: envInt("POLLING_FREQUENCY", watch.DefaultPollingFrequency),
			EnableAudio:      envBool("ENABLE_AUDIO", false),
			EnableWebhooks:   envBool("ENABLE_WEBHOOKS", false),
			WebhookURL:       envStr("WEBHOOK_URL", ""),
			TestMode:         envBool("TEST_MODE", false),
		},

		PrefsDBPath:     envStr("PREFS_DB_PATH", "data/preferences.db"),
		DefaultTimezone: envStr("DEFAULT_TIMEZONE", "America/New_York"),
		RedisURL:        envStr("REDIS_URL", ""),

		WatchlistPath: envStr("WATCHLIST_PATH", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
