package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Tickets   TicketsConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" env-default:"helpdesk-api"`
	Env                   string `env:"APP_ENV" env-default:"development"`
	Host                  string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port                  string `env:"APP_PORT" env-default:"8080"`
	Version               string `env:"APP_VERSION" env-default:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" env-default:"30"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" env-default:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" env-default:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" env-default:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" env-default:"300"`
}

// RedisConfig holds Redis connection values. An empty Addr disables the event stream.
type RedisConfig struct {
	Addr           string `env:"REDIS_ADDR"`
	Password       string `env:"REDIS_PASSWORD"`
	DB             int    `env:"REDIS_DB" env-default:"0"`
	StreamKey      string `env:"REDIS_EVENTS_STREAM" env-default:"helpdesk:ticket-events"`
	StreamLen      int64  `env:"REDIS_EVENTS_STREAM_MAXLEN" env-default:"10000"`
	WriteTimeoutMS int    `env:"REDIS_EVENTS_WRITE_TIMEOUT_MS" env-default:"500"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string   `env:"AUTH_JWT_SECRET" env-default:"dev-secret"`
	AccessTokenTTLMinutes int      `env:"AUTH_ACCESS_TOKEN_TTL_MINUTES" env-default:"60"`
	BcryptCost            int      `env:"AUTH_BCRYPT_COST" env-default:"12"`
	AdminEmails           []string `env:"AUTH_ADMIN_EMAILS" env-separator:","`
}

// TicketsConfig tunes the ticket lifecycle.
type TicketsConfig struct {
	StrictTransitions bool   `env:"TICKETS_STRICT_TRANSITIONS" env-default:"false"`
	TimeZone          string `env:"TICKETS_TIME_ZONE" env-default:"Local"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// RateLimitConfig bounds unauthenticated auth requests per client.
type RateLimitConfig struct {
	AuthPerSecond float64 `env:"RATE_LIMIT_AUTH_PER_SECOND" env-default:"1"`
	AuthBurst     int     `env:"RATE_LIMIT_AUTH_BURST" env-default:"5"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if _, err := cfg.Tickets.Location(); err != nil {
		return nil, fmt.Errorf("invalid TICKETS_TIME_ZONE: %w", err)
	}
	return &cfg, nil
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

// WriteTimeout bounds a single event stream append.
func (r RedisConfig) WriteTimeout() time.Duration {
	if r.WriteTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(r.WriteTimeoutMS) * time.Millisecond
}

// Location resolves the zone used to interpret single-day ticket filters.
func (t TicketsConfig) Location() (*time.Location, error) {
	if t.TimeZone == "" || strings.EqualFold(t.TimeZone, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(t.TimeZone)
}

// IsAdminEmail reports whether email is listed in AUTH_ADMIN_EMAILS.
func (a AuthConfig) IsAdminEmail(email string) bool {
	for _, candidate := range a.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(candidate), email) {
			return true
		}
	}
	return false
}
