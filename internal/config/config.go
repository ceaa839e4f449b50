package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Security     SecurityConfig
	Events       EventsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the
// in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SecurityConfig tunes code generation.
type SecurityConfig struct {
	ChallengeQuota      int
	DefaultCodeLength   int
	DefaultLevel        string
	AllowDuplicateChars bool
}

// EventsConfig controls the external event stream.
type EventsConfig struct {
	Stream       string
	StreamMaxLen int64
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom string
}

// Load reads configuration from the environment, after merging a .env file
// when one exists. Unset variables take their defaults; malformed ones are
// reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var e env
	cfg := &Config{
		App: AppConfig{
			Name:                  e.get("APP_NAME", "account-security"),
			Env:                   e.get("APP_ENV", "development"),
			Host:                  e.get("APP_HOST", "0.0.0.0"),
			Port:                  e.get("APP_PORT", "8080"),
			Version:               e.get("APP_VERSION", "dev"),
			RequestTimeoutSeconds: e.getInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(e.getInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(e.getInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  e.getBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  e.get("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(e.getInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(e.getInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       e.getInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level: e.get("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             e.get("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: e.getInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            e.getInt("AUTH_BCRYPT_COST", 12),
		},
		Security: SecurityConfig{
			ChallengeQuota:      e.getInt("SECURITY_CHALLENGE_QUOTA", 5),
			DefaultCodeLength:   e.getInt("SECURITY_DEFAULT_CODE_LENGTH", 8),
			DefaultLevel:        e.get("SECURITY_DEFAULT_LEVEL", "medium"),
			AllowDuplicateChars: e.getBool("SECURITY_ALLOW_DUPLICATE_CHARS", true),
		},
		Events: EventsConfig{
			Stream:       e.get("EVENTS_STREAM", "account-security.events"),
			StreamMaxLen: int64(e.getInt("EVENTS_STREAM_MAX_LEN", 10000)),
		},
		Notification: NotificationConfig{
			EmailFrom: e.get("NOTIFY_EMAIL_FROM", "noreply@example.com"),
		},
	}
	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parse but make no sense.
func (c *Config) Validate() error {
	var errs []error
	if c.Security.ChallengeQuota <= 0 {
		errs = append(errs, fmt.Errorf("SECURITY_CHALLENGE_QUOTA must be positive, got %d", c.Security.ChallengeQuota))
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns))
	}
	if c.App.Env != "development" && c.Auth.JWTSecret == "dev-secret" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be set outside development"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// env reads variables and remembers every one that failed to parse.
type env struct {
	errs []error
}

func (e *env) get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (e *env) getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

func (e *env) getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}
