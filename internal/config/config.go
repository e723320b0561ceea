package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `envconfig:"APP_NAME" default:"WalletLedger"`
	AppEnv         string        `envconfig:"APP_ENV" default:"development"`
	Port           string        `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	AutoMigrate    bool          `envconfig:"DB_AUTOMIGRATE" default:"true"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	KafkaServers   string        `envconfig:"KAFKA_SERVERS"`
	KafkaTopic     string        `envconfig:"KAFKA_TOPIC" default:"wallet.operations"`
	ShutdownPeriod time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"0s"`
	TokenRateLimit int           `envconfig:"TOKEN_RATE_LIMIT" default:"5"`
	AdminUsername  string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword  string        `envconfig:"ADMIN_PASSWORD_HASH"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv populates a Config from the process environment only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ShutdownPeriod <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be positive")
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if c.IsDev() {
		return nil
	}
	// Outside development the in-memory fallbacks are not acceptable.
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL must be set")
	}
	if c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD_HASH must be set")
	}
	return nil
}

// IsDev reports whether the app runs in development or test mode.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "development", "dev", "test", "local":
		return true
	}
	return false
}

// KafkaEnabled reports whether operation events should be published.
func (c Config) KafkaEnabled() bool { return c.KafkaServers != "" }

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
