package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the CV archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// BackendConfig holds settings for the external CV analysis API.
type BackendConfig struct {
	BaseURL           string
	TimeoutSec        int
	BreakerMaxFails   uint32
	BreakerTimeoutSec int
}

// UploadConfig constrains what files the upload form accepts.
type UploadConfig struct {
	MaxSizeBytes int64
	ContentType  string
}

// SessionConfig holds the visitor cookie settings.
type SessionConfig struct {
	CookieName string
	TTLHours   int
}

// RateLimitConfig bounds login/register POSTs per client IP.
type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Backend   BackendConfig
	Upload    UploadConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Backend: BackendConfig{
			BaseURL:           getEnv("BACKEND_BASE_URL", ""),
			TimeoutSec:        getEnvInt("BACKEND_TIMEOUT_SEC", 30),
			BreakerMaxFails:   uint32(getEnvInt("BACKEND_BREAKER_MAX_FAILS", 5)),
			BreakerTimeoutSec: getEnvInt("BACKEND_BREAKER_TIMEOUT_SEC", 60),
		},
		Upload: UploadConfig{
			MaxSizeBytes: int64(getEnvInt("UPLOAD_MAX_SIZE_BYTES", 5*1024*1024)),
			ContentType:  getEnv("UPLOAD_CONTENT_TYPE", "application/pdf"),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "sr_visitor"),
			TTLHours:   getEnvInt("SESSION_TTL_HOURS", 720),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MIN", 10),
			AuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 5),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
