package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Audit backend selection values for AUDIT_BACKEND.
const (
	AuditBackendFile   = "file"
	AuditBackendSQLite = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Port    string
	DataDir string

	// AuditBackend picks where the audit trail lives: "file" (JSON documents
	// under DataDir) or "sqlite" (SQLitePath).
	AuditBackend string
	SQLitePath   string

	// AdminSubject is the display name of the single administrative identity;
	// AdminPasswordHash is its bcrypt hash. The raw secret is never configured.
	AdminSubject      string
	AdminPasswordHash string

	// UseHTTPS marks the deployment as TLS-terminated; TrustedProxy extends
	// transport detection to the X-Forwarded-Proto header. Forwarded headers
	// are client-controlled, so the proxy must be explicitly whitelisted here
	// rather than trusted by default.
	UseHTTPS     bool
	TrustedProxy bool

	SessionLifetime time.Duration
	MinFillTime     time.Duration
}

// Load reads configuration from .env (when present) and the environment,
// applying defaults and validating the fields that have no safe default.
func Load() (*Config, error) {
	// Missing .env is fine in production; the environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              envOr("PORT", "8080"),
		DataDir:           envOr("DATA_DIR", "data"),
		AuditBackend:      envOr("AUDIT_BACKEND", AuditBackendFile),
		SQLitePath:        envOr("SQLITE_PATH", "marketplace_audit.db"),
		AdminSubject:      envOr("ADMIN_SUBJECT", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		UseHTTPS:          envBool("USE_HTTPS"),
		TrustedProxy:      envBool("TRUSTED_PROXY"),
	}

	var err error
	if cfg.SessionLifetime, err = envDuration("SESSION_LIFETIME", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MinFillTime, err = envDuration("MIN_FILL_TIME", 3*time.Second); err != nil {
		return nil, err
	}

	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	if cfg.AuditBackend != AuditBackendFile && cfg.AuditBackend != AuditBackendSQLite {
		return nil, fmt.Errorf("invalid AUDIT_BACKEND %q", cfg.AuditBackend)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return os.Getenv(key) == "true"
}

// envDuration reads a duration given in whole seconds
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want whole seconds", key, v)
	}
	return time.Duration(seconds) * time.Second, nil
}
