package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	localJWTSecret = "dev-secret-do-not-use-in-prod"
)

type Config struct {
	Port                 string        `env:"PORT" envDefault:"3000"`
	AppEnv               string        `env:"APP_ENV" envDefault:"production"`
	JWTSecret            string        `env:"JWT_SECRET"`
	StoreDriver          string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI             string        `env:"MONGODB_URI"`
	MongoDatabase        string        `env:"MONGODB_DATABASE" envDefault:"TodoApp"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	PasswordHasher       string        `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost           int           `env:"BCRYPT_COST" envDefault:"10"`
	TokenTTL             time.Duration `env:"TOKEN_TTL" envDefault:"0s"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	LoginMaxAttempts     int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginCooldown        time.Duration `env:"LOGIN_COOLDOWN" envDefault:"15m"`
	OtelExporterEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from environment variables.
// It applies defaults for "local" environments but enforces strictness for others.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsLocal() {
			return Config{}, errors.New("JWT_SECRET is required")
		}
		cfg.JWTSecret = localJWTSecret
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGODB_URI is required")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.TokenTTL < 0 {
		return Config{}, errors.New("TOKEN_TTL must not be negative")
	}
	if cfg.RedisAddr != "" && (cfg.LoginMaxAttempts < 1 || cfg.LoginCooldown <= 0) {
		return Config{}, errors.New("LOGIN_MAX_ATTEMPTS and LOGIN_COOLDOWN must be positive")
	}

	return cfg, nil
}

// IsLocal reports whether the service runs in a developer environment.
func (c Config) IsLocal() bool {
	return c.AppEnv == "local"
}
