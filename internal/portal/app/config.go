package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SessionSecret string // Required: shared secret for signing staff session tokens
	Issuer        string // Optional: issuer claim for session tokens (default: halcyon-portal)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./portal.db)
	CodeValidity        time.Duration // Optional: access code lifetime (default: 24h)
	SessionTTL          time.Duration // Optional: staff session lifetime (default: 12h)
	StudioName          string        // Optional: name shown on invoices and in mail (default: Halcyon Studio)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	// Bootstrap admin account, created on startup when the users table is
	// empty. Both must be set for the bootstrap to run.
	BootstrapEmail    string
	BootstrapPassword string

	// SMTP settings for mailing access codes. Mailing is disabled when the
	// host is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

func LoadConfig() Config {
	return Config{
		SessionSecret: os.Getenv("PORTAL_SESSION_SECRET"),
		Issuer:        getEnvOrDefault("PORTAL_ISSUER", "halcyon-portal"),

		DatabaseFile:        getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		CodeValidity:        getEnvDurationOrDefault("PORTAL_CODE_VALIDITY", 24*time.Hour),
		SessionTTL:          getEnvDurationOrDefault("PORTAL_SESSION_TTL", 12*time.Hour),
		StudioName:          getEnvOrDefault("PORTAL_STUDIO_NAME", "Halcyon Studio"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		BootstrapEmail:    os.Getenv("PORTAL_BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("PORTAL_BOOTSTRAP_PASSWORD"),

		SMTPHost:     os.Getenv("PORTAL_SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("PORTAL_SMTP_PORT", 587),
		SMTPUser:     os.Getenv("PORTAL_SMTP_USER"),
		SMTPPassword: os.Getenv("PORTAL_SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("PORTAL_SMTP_FROM"),
	}
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
