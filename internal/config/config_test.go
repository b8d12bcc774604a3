package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AUTH_RATE_LIMIT", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_RATE_LIMIT", "3")
	t.Setenv("AUTH_RATE_WINDOW", "30s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_REFRESH_EXPIRY", "not-a-duration")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.AuthRateLimit)
	assert.Equal(t, 30*time.Second, cfg.AuthRateWindow)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshExpiry)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&Config{LogLevel: "loud"})
	assert.Error(t, err)

	log, err := NewLogger(&Config{LogLevel: "debug"})
	assert.NoError(t, err)
	assert.NotNil(t, log)
}
