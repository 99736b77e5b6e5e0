// Package config provides process-wide configuration for provider
// credentials and defaults. Credentials are initialized once at startup and
// handed to the adapters; they never travel through the graph.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultProviderTimeoutSeconds = 60

// Config holds process-wide settings sourced from the environment.
type Config struct {
	OpenAIAPIKey           string
	OpenAIBaseURL          string
	AnthropicAPIKey        string
	AnthropicBaseURL       string
	ProviderTimeoutSeconds int
}

// Load reads a .env file when present and builds the configuration from the
// environment. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:          os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey:        os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:       os.Getenv("ANTHROPIC_BASE_URL"),
		ProviderTimeoutSeconds: defaultProviderTimeoutSeconds,
	}

	if raw := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.ProviderTimeoutSeconds = seconds
		}
	}

	return cfg
}
