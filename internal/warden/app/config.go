package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/wardenauth/warden/pkg/jwtx"
)

type Config struct {
	JWTSecret string // Required: HMAC signing secret for all tokens
	Issuer    string // Optional: issuer claim for tokens (default: warden)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 7d)
	ActionTTL  time.Duration // Optional: action token lifetime (default: 5m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./warden.db)
	PepperFile   string // Optional: path to password hashing pepper file (default: ./pepper)

	AdminName     string // Optional: bootstrap admin display name
	AdminUsername string // Optional: bootstrap admin username (default: admin)
	AdminEmail    string // Optional: bootstrap admin email
	AdminPassword string // Optional: bootstrap admin password (generated and logged when unset)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// ErrMissingJWTSecret aborts startup: issuing unverifiable tokens is worse
// than refusing to start.
var ErrMissingJWTSecret = errors.New("app: WARDEN_JWT_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		JWTSecret: os.Getenv("WARDEN_JWT_SECRET"),
		Issuer:    getEnvOrDefault("WARDEN_ISSUER", "warden"),

		AccessTTL:  getEnvDurationOrDefault("WARDEN_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("WARDEN_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		ActionTTL:  getEnvDurationOrDefault("WARDEN_ACTION_TTL", jwtx.DefaultActionTokenTTL),

		DatabaseFile: getEnvOrDefault("WARDEN_DATABASE_FILE", "warden.db"),
		PepperFile:   getEnvOrDefault("WARDEN_PEPPER_FILE", "pepper"),

		AdminName:     os.Getenv("WARDEN_ADMIN_NAME"),
		AdminUsername: os.Getenv("WARDEN_ADMIN_USERNAME"),
		AdminEmail:    os.Getenv("WARDEN_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("WARDEN_ADMIN_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
