// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the CLI and the dev server.
// Values are populated by Load from environment variables, with an
// optional .env file loaded first.
type Config struct {
	// APIBaseURL is the dispatch API endpoint, e.g. "https://api.example.com". Required.
	APIBaseURL string

	// APIKey is a previously issued session key. Optional; login stores one.
	APIKey string

	// CachePath is the SQLite file backing the local cache.
	// Defaults to "driverslog.db".
	CachePath string

	// HTTPTimeout bounds every API call. Defaults to 15s.
	HTTPTimeout time.Duration

	// GeocodeURL is the text-search geocoding endpoint. Optional;
	// location suggestions are disabled when empty.
	GeocodeURL string

	// GeocodeAPIKey authenticates geocoding requests. Optional.
	GeocodeAPIKey string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// Port is the TCP port the dev server listens on. Defaults to "8080".
	Port string

	// CORSOrigins is the list of allowed cross-origin request origins
	// for the dev server. Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; real
// environment variables win over .env entries.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	// godotenv.Load never overrides variables already set in the
	// environment, so exported values keep priority.
	_ = godotenv.Load()

	cfg := Config{
		APIKey:        os.Getenv("API_KEY"),
		CachePath:     getEnv("CACHE_PATH", "driverslog.db"),
		GeocodeURL:    os.Getenv("GEOCODE_URL"),
		GeocodeAPIKey: os.Getenv("GEOCODE_API_KEY"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	var missing []string

	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
