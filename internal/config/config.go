package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL     string
	ServerAddr      string
	LinkTTL         time.Duration
	LinkBaseURL     string
	OperatorAPIKey  string
	AuditSigningKey string
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "kewa")
		pass := getenv("POSTGRES_PASSWORD", "kewa_pass")
		db := getenv("POSTGRES_DB", "kewa")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	// The link TTL is a security ceiling; a work order that closes early
	// invalidates links regardless of it.
	ttl := parseDuration(getenv("LINK_TTL", "336h"), 336*time.Hour)
	baseURL := getenv("LINK_BASE_URL", "http://localhost:8080")
	operatorKey := os.Getenv("OPERATOR_API_KEY")
	if operatorKey == "" {
		return nil, fmt.Errorf("OPERATOR_API_KEY is required")
	}

	return &Config{
		DatabaseURL:     dsn,
		ServerAddr:      addr,
		LinkTTL:         ttl,
		LinkBaseURL:     baseURL,
		OperatorAPIKey:  operatorKey,
		AuditSigningKey: os.Getenv("AUDIT_SIGNING_KEY"),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}
