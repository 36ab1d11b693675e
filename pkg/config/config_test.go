package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BACKEND", "APP_ENV", "WEBAPP_PORT", "TELEGRAM_BOT_TOKEN", "INIT_DATA_MAX_AGE", "BOT_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.InitDataMaxAge)
	assert.False(t, cfg.BotEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND", "https://api.example.com/")
	t.Setenv("APP_ENV", "Development")
	t.Setenv("WEBAPP_PORT", "8088")
	t.Setenv("INIT_DATA_MAX_AGE", "0")
	t.Setenv("BOT_ENABLED", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8088, cfg.Port)
	assert.Zero(t, cfg.InitDataMaxAge)
	assert.True(t, cfg.BotEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{BackendURL: "http://localhost:8000", Env: EnvDevelopment, Port: 3000}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"dev without token", func(c *Config) {}, false},
		{"bad backend", func(c *Config) { c.BackendURL = "localhost" }, true},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"prod without token", func(c *Config) { c.Env = EnvProduction }, true},
		{"prod with token", func(c *Config) { c.Env = EnvProduction; c.BotToken = "1:x" }, false},
		{"bot without token", func(c *Config) { c.BotEnabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
