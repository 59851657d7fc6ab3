package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers selectable through STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string   `env:"APP_NAME" envDefault:"warden"`
	Env                   string   `env:"APP_ENV" envDefault:"development"`
	Host                  string   `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string   `env:"APP_PORT" envDefault:"8080"`
	Version               string   `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	CORSAllowedOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string        `env:"POSTGRES_DSN"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool          `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32         `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32         `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"5s"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"warden"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"5s"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines token signing parameters. Both secrets are mandatory.
type AuthConfig struct {
	JWTSecret            string        `env:"JWT_SECRET,required,notEmpty"`
	JWTRefreshSecret     string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	AccessTokenTTL       time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL      time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"720h"`
	DefaultKdfIterations int           `env:"AUTH_DEFAULT_KDF_ITERATIONS" envDefault:"600000"`
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants env tags cannot express.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" || c.Auth.JWTRefreshSecret == "" {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.Auth.JWTSecret == c.Auth.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store driver")
		}
	case StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
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
