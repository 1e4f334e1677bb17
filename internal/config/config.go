package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the service configuration, read from the environment.
type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string `validate:"oneof=development production"`
	LogLevel string `validate:"oneof=debug info warn error"`

	Cache CacheConfig
	Auth  AuthConfig
}

// CacheConfig selects and configures the transient store.
type CacheConfig struct {
	Driver        string        `validate:"oneof=sqlite bolt memory"`
	DBPath        string        `validate:"required_if=Driver sqlite"`
	BoltPath      string        `validate:"required_if=Driver bolt"`
	KeyPrefix     string        `validate:"max=64"`
	PurgeInterval time.Duration `validate:"gte=0"`
}

// AuthConfig configures bearer token issuing and validation.
type AuthConfig struct {
	Secret        string        `validate:"required"`
	Issuer        string        `validate:"required"`
	Audience      string        `validate:"required"`
	TokenTTL      time.Duration `validate:"gt=0"`
	AdminPassword string        `validate:"required,min=8"`
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	purge, err := getDuration("CACHE_PURGE_INTERVAL", "1h")
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := getDuration("JWT_TTL", "24h")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     getEnv("PORT", "8008"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Cache: CacheConfig{
			Driver:        getEnv("CACHE_DRIVER", "sqlite"),
			DBPath:        getEnv("CACHE_DB_PATH", "transients.db"),
			BoltPath:      getEnv("CACHE_BOLT_PATH", "transients.bolt"),
			KeyPrefix:     os.Getenv("CACHE_KEY_PREFIX"),
			PurgeInterval: purge,
		},
		Auth: AuthConfig{
			Secret:        getEnv("JWT_SECRET", "development-insecure-secret-change-me"),
			Issuer:        getEnv("JWT_ISSUER", "transient-cache-api"),
			Audience:      getEnv("JWT_AUDIENCE", "transient-cache-clients"),
			TokenTTL:      tokenTTL,
			AdminPassword: getEnv("ADMIN_PASSWORD", "development-password"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
