package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("BACKEND_BASE_URL", "https://analysis.example.com")
	os.Setenv("BACKEND_TIMEOUT_SEC", "15")
	os.Setenv("MINIO_USE_SSL", "true")
	defer func() {
		os.Unsetenv("BACKEND_BASE_URL")
		os.Unsetenv("BACKEND_TIMEOUT_SEC")
		os.Unsetenv("MINIO_USE_SSL")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "https://analysis.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 15, cfg.Backend.TimeoutSec)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("UPLOAD_MAX_SIZE_BYTES")
	os.Unsetenv("UPLOAD_CONTENT_TYPE")
	os.Unsetenv("SESSION_COOKIE_NAME")

	cfg := Load()

	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, "application/pdf", cfg.Upload.ContentType)
	assert.Equal(t, "sr_visitor", cfg.Session.CookieName)
	assert.Equal(t, 30, cfg.Backend.TimeoutSec)
	assert.Equal(t, 10, cfg.RateLimit.AuthPerMinute)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "not-a-bool")
	assert.True(t, getEnvBool(key, true))
	os.Unsetenv(key)
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "42")
	assert.Equal(t, 42, getEnvInt(key, 1))

	os.Setenv(key, "not-a-number")
	assert.Equal(t, 1, getEnvInt(key, 1))
	os.Unsetenv(key)
}
