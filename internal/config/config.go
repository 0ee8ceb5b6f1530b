package config

import (
	"errors"
	"fmt"

	env "github.com/caarlos0/env/v11"
)

// Config holds the process configuration. It is read once at startup and
// read-only afterwards; nothing else is shared across requests.
type Config struct {
	Port        int    `env:"PORT" envDefault:"3000"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Credentials for the Generative Language API. One of the two must be
	// set; the API key wins when both are present.
	GeminiAPIKey          string `env:"GEMINI_API_KEY"`
	GoogleCredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`

	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
}

// Load parses the environment. It fails when no Gemini credential is
// configured, and the composition root refuses to start on that error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.GeminiAPIKey == "" && cfg.GoogleCredentialsJSON == "" {
		return Config{}, errors.New("GEMINI_API_KEY or GOOGLE_CREDENTIALS_JSON is required")
	}
	return cfg, nil
}

// Addr renders the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
