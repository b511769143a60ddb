package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	ServerPort  string
	ServerHost  string
	Environment string

	AuditStore  string
	DatabaseURL string
	SQLitePath  string

	RedisURL             string
	SessionLookupEnabled bool
	SessionKeyPrefix     string
	SessionTimeout       time.Duration

	JWTSecret    string
	JWTAlgorithm string

	NATSURL           string
	NATSSubjectPrefix string

	LogLevel               string
	LogFormat              string
	LogCorrelationIDHeader string

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	ShutdownTimeout time.Duration
}

var (
	ErrMissingDatabaseURL  = errors.New("DATABASE_URL is required when AUDIT_STORE=postgres")
	ErrMissingSQLitePath   = errors.New("SQLITE_PATH is required when AUDIT_STORE=sqlite")
	ErrInvalidAuditStore   = errors.New("AUDIT_STORE must be postgres or sqlite")
	ErrInvalidJWTAlgorithm = errors.New("invalid JWT algorithm")
	ErrMissingRedisURL     = errors.New("REDIS_URL is required when session lookup is enabled")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment: getEnvOrDefault("ENV", "development"),

		AuditStore:  strings.ToLower(getEnvOrDefault("AUDIT_STORE", StoreSQLite)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "audit.db"),

		RedisURL:             os.Getenv("REDIS_URL"),
		SessionLookupEnabled: getEnvOrDefaultBool("SESSION_LOOKUP_ENABLED", false),
		SessionKeyPrefix:     getEnvOrDefault("SESSION_KEY_PREFIX", "session:"),
		SessionTimeout:       getEnvOrDefaultDuration("SESSION_LOOKUP_TIMEOUT", 2*time.Second),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAlgorithm: getEnvOrDefault("JWT_ALG", "HS256"),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: getEnvOrDefault("NATS_SUBJECT_PREFIX", "audit"),

		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		LogCorrelationIDHeader: getEnvOrDefault("LOG_CORRELATION_ID_HEADER", "X-Correlation-ID"),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", false),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		ShutdownTimeout: getEnvOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default its way out of
func (c *Config) Validate() error {
	switch c.AuditStore {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return ErrMissingSQLitePath
		}
	default:
		return ErrInvalidAuditStore
	}

	if c.JWTAlgorithm != "HS256" {
		return ErrInvalidJWTAlgorithm
	}

	if c.SessionLookupEnabled && c.RedisURL == "" {
		return ErrMissingRedisURL
	}
	return nil
}

// Address returns host:port for the HTTP listener
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// bare numbers are seconds
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
