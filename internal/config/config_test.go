package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, 10*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, 5, cfg.TokenRateLimit)
	assert.Equal(t, "wallet.operations", cfg.KafkaTopic)
	assert.True(t, cfg.AutoMigrate)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.KafkaEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", ":9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("KAFKA_SERVERS", "localhost:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Address())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.KafkaEnabled())
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/wallets")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
}
