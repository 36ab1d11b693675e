package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	// Backend
	BackendURL string

	// Runtime
	Env      string
	LogLevel string

	// Web app
	Port                int
	WebAppURL           string
	PlaceholderImageURL string

	// Telegram
	BotToken       string
	BotEnabled     bool
	InitDataMaxAge time.Duration // 0 = never expires
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL: strings.TrimRight(envOr("BACKEND", "http://localhost:8000"), "/"),

		Env:      strings.ToLower(envOr("APP_ENV", EnvProduction)),
		LogLevel: envOr("LOG_LEVEL", "info"),

		Port:                envInt("WEBAPP_PORT", 3000),
		WebAppURL:           envOr("FRONTEND_URL", "http://localhost:3000"),
		PlaceholderImageURL: envOr("PLACEHOLDER_IMAGE_URL", "https://via.placeholder.com/40"),

		BotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotEnabled:     envBool("BOT_ENABLED", false),
		InitDataMaxAge: time.Duration(envInt("INIT_DATA_MAX_AGE", 86400)) * time.Second,
	}

	return cfg, nil
}

// IsDevelopment enables the mock Telegram identity and unsigned init data.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BACKEND url %q", c.BackendURL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid WEBAPP_PORT %d", c.Port)
	}
	if !c.IsDevelopment() && c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required outside development (init data cannot be verified without it)")
	}
	if c.BotEnabled && c.BotToken == "" {
		return fmt.Errorf("BOT_ENABLED requires TELEGRAM_BOT_TOKEN")
	}
	return nil
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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
