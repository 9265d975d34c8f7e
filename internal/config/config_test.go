// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "PG_HOST", "REDIS_ADDR", "REDIS_DB", "PAIR_CACHE_TTL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_TIMEOUT", "OPENAI_RPS",
		"PLAYER_IDLE_TIMEOUT", "JANITOR_INTERVAL", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.PairCacheTTL)
	assert.Equal(t, 8*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, 1.0, cfg.OpenAIRPS)
	assert.Equal(t, 10*time.Minute, cfg.PlayerIdleTimeout)
	assert.Equal(t, time.Minute, cfg.JanitorInterval)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/babo")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("OPENAI_RPS", "0.5")
	t.Setenv("PLAYER_IDLE_TIMEOUT", "300")
	t.Setenv("JANITOR_INTERVAL", "15s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "postgres://u:p@db:5432/babo", cfg.DatabaseURL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 0.5, cfg.OpenAIRPS)
	assert.Equal(t, 5*time.Minute, cfg.PlayerIdleTimeout)
	assert.Equal(t, 15*time.Second, cfg.JanitorInterval)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("PAIR_CACHE_TTL", "-5s")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.PairCacheTTL)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}
