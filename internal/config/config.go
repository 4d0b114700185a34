// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Defaults for values not set in the environment.
const (
	DefaultPort           = 8080
	DefaultModel          = "gemini-3-pro-image-preview"
	DefaultSessionTTL     = 30 * time.Minute
	DefaultMaxUploadBytes = 20 << 20 // 20 MiB, Gemini inline-data ceiling
	DefaultRequestsPerMin = 10
)

// Config holds the runtime configuration for the web server and CLI.
type Config struct {
	// Port the web server listens on.
	Port int

	// Model is the Gemini image model used for lighting edits.
	Model string

	// SessionTTL is how long an idle browser session is kept alive.
	SessionTTL time.Duration

	// MaxUploadBytes caps the size of a single uploaded image.
	MaxUploadBytes int64

	// RequestsPerMinute limits outbound calls to the image API.
	RequestsPerMinute int
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first, without overriding variables already set.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	return &Config{
		Port:              getInt("RELIGHT_PORT", DefaultPort),
		Model:             getEnv("RELIGHT_MODEL", DefaultModel),
		SessionTTL:        getDuration("RELIGHT_SESSION_TTL", DefaultSessionTTL),
		MaxUploadBytes:    int64(getInt("RELIGHT_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		RequestsPerMinute: getInt("RELIGHT_REQUESTS_PER_MINUTE", DefaultRequestsPerMin),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration in environment, using default")
		return fallback
	}
	return d
}
