package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var knownWeakSecrets = []string{"change-me", "secret", "password", "testing123"}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	Env        string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"host=localhost port=5432 user=postgres dbname=portal sslmode=disable"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me"`

	RadiusHost    string        `env:"RADIUS_HOST" envDefault:"localhost"`
	RadiusPort    int           `env:"RADIUS_PORT" envDefault:"1812"`
	RadiusSecret  string        `env:"RADIUS_SECRET" envDefault:"testing123"`
	RadiusTimeout time.Duration `env:"RADIUS_TIMEOUT" envDefault:"5s"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	MaxSessionAge time.Duration `env:"MAX_SESSION_AGE" envDefault:"12h"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from environment and validates production-only constraints.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

// RadiusAddr returns the host:port of the RADIUS server.
func (c *Config) RadiusAddr() string {
	return fmt.Sprintf("%s:%d", c.RadiusHost, c.RadiusPort)
}

// IsProduction reports whether the app runs with production constraints.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects configurations that would be unsafe to run in production.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production (generate with: openssl rand -base64 32)")
	}
	for _, weak := range knownWeakSecrets {
		if c.JWTSecret == weak {
			return fmt.Errorf("JWT_SECRET is a known weak default; set a strong secret in production")
		}
	}
	return nil
}
