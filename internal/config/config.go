// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/jason-s-yu/babo/internal/database"
	"github.com/sirupsen/logrus"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Port        string
	DatabaseURL string // empty runs rooms in memory

	RedisAddr    string // empty disables the pair cache
	RedisDB      int
	PairCacheTTL time.Duration

	OpenAIKey     string // empty disables generated pairs
	OpenAIModel   string
	OpenAITimeout time.Duration
	OpenAIRPS     float64

	PlayerIdleTimeout time.Duration
	JanitorInterval   time.Duration

	LogLevel logrus.Level
}

// Load reads the configuration. Unparseable values fall back to their defaults.
func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       database.ConnString(),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		PairCacheTTL:      getEnvDuration("PAIR_CACHE_TTL", 24*time.Hour),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		OpenAITimeout:     getEnvDuration("OPENAI_TIMEOUT", 8*time.Second),
		OpenAIRPS:         getEnvFloat("OPENAI_RPS", 1),
		PlayerIdleTimeout: getEnvDuration("PLAYER_IDLE_TIMEOUT", 10*time.Minute),
		JanitorInterval:   getEnvDuration("JANITOR_INTERVAL", time.Minute),
		LogLevel:          getEnvLevel("LOG_LEVEL", logrus.InfoLevel),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func getEnvLevel(key string, def logrus.Level) logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv(key))
	if err != nil {
		return def
	}
	return lvl
}
