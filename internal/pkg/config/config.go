package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// devJWTSecret signs tokens when JWT_SECRET is unset in development.
const devJWTSecret = "development-only-secret-do-not-deploy"

type Config struct {
	Port        string        `env:"PORT,          default=8080"`
	Env         string        `env:"ENV,           default=development"`
	LogLevel    string        `env:"LOG_LEVEL,     default=info"`
	LogFile     string        `env:"LOG_FILE"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,     default=12h"`
	RoleVariant string        `env:"ROLE_VARIANT,  default=accounting"`
	SecretsKey  string        `env:"SECRETS_KEY"`
	Locale      string        `env:"LOCALE,        default=fr"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Audit  AuditConfig
	Notify NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

// RedisConfig is optional: an empty Addr selects the in-process cache,
// guard and session store.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,  default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL, default=5m"`
}

type AuditConfig struct {
	Driver string `env:"AUDIT_DRIVER, default=sqlite"`
	DSN    string `env:"AUDIT_DSN,    default=backoffice-audit.db"`
}

// NotifyConfig is optional: an empty AMQPURL logs notifications instead.
type NotifyConfig struct {
	AMQPURL string `env:"AMQP_URL"`
	Workers int    `env:"NOTIFY_WORKERS, default=4"`
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
	} else if len(c.JWTSecret) < 32 && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.SecretsKey == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("SECRETS_KEY is required outside development"))
	}
	switch c.Audit.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("AUDIT_DRIVER %q is not one of postgres, mysql, sqlite", c.Audit.Driver))
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	return &cfg, nil
}
