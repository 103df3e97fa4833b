// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// In Go, we typically use structs to hold configuration, and a function to
// load values from environment variables. A local .env file is read first
// (if present) so development setups don't need exported variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported LLM providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// ErrMissingAPIKey is returned when the selected provider has no credential.
// We fail at startup rather than on the first analysis request.
var ErrMissingAPIKey = errors.New("LLM API key not configured")

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// LLM provider: "gemini" (default) or "openrouter"
	Provider string

	// Gemini settings
	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string // Optional: endpoint override (proxies, local fakes)

	// OpenRouter settings
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	// Uploads
	MaxUploadMB int

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from the environment with sensible defaults.
//
// Go Pattern: Functions that can fail return (value, error). The caller
// MUST handle the error. Here, main() refuses to start.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),

		// GEMINI_API_KEY is accepted too, matching the SDK's own lookup
		GoogleAPIKey:  getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", "")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "google/gemini-flash-1.5"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),

		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		// CORS: in production, set this to your frontend URL
		AllowedOrigins: splitOrigins(getEnv("CORS_ORIGIN", "http://localhost:5173")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings the server can't run without.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("%w: set GOOGLE_API_KEY", ErrMissingAPIKey)
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("%w: set OPENROUTER_API_KEY", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenRouter, c.Provider)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// getEnv reads an environment variable with a fallback default.
// A blank value counts as unset, so `GEMINI_MODEL=` in .env keeps the default.
func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// splitOrigins accepts a comma-separated CORS_ORIGIN list.
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
