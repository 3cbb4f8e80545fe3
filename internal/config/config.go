package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort               string
	LogLevel               string
	RedisURL               string
	LockBackend            string
	LockTTL                time.Duration
	IdempotencyTTL         time.Duration
	RateLimitRPS           int
	ReconciliationInterval time.Duration
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// Load reads a .env file if present, then the environment. Every key is
// accepted bare or with the BANKING_ prefix.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "BANKING_PORT")
	bindEnv(v, "log_level", "LOG_LEVEL", "BANKING_LOG_LEVEL")
	bindEnv(v, "redis_url", "REDIS_URL", "BANKING_REDIS_URL")
	bindEnv(v, "lock_backend", "LOCK_BACKEND", "BANKING_LOCK_BACKEND")
	bindEnv(v, "lock_ttl", "LOCK_TTL", "BANKING_LOCK_TTL")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL", "BANKING_IDEMPOTENCY_TTL")
	bindEnv(v, "rate_limit_rps", "RATE_LIMIT_RPS", "BANKING_RATE_LIMIT_RPS")
	bindEnv(v, "reconciliation_interval", "RECONCILIATION_INTERVAL", "BANKING_RECONCILIATION_INTERVAL")

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_url", "")
	v.SetDefault("lock_backend", LockBackendLocal)
	v.SetDefault("lock_ttl", "10s")
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("rate_limit_rps", 50)
	v.SetDefault("reconciliation_interval", "1m")

	lockTTL, err := parsePositiveDuration(v, "lock_ttl", "LOCK_TTL")
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := parsePositiveDuration(v, "idempotency_ttl", "IDEMPOTENCY_TTL")
	if err != nil {
		return nil, err
	}
	reconciliationInterval, err := parsePositiveDuration(v, "reconciliation_interval", "RECONCILIATION_INTERVAL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:               strings.TrimSpace(v.GetString("port")),
		LogLevel:               strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		RedisURL:               strings.TrimSpace(v.GetString("redis_url")),
		LockBackend:            strings.ToLower(strings.TrimSpace(v.GetString("lock_backend"))),
		LockTTL:                lockTTL,
		IdempotencyTTL:         idempotencyTTL,
		RateLimitRPS:           max(v.GetInt("rate_limit_rps"), 1),
		ReconciliationInterval: reconciliationInterval,
	}

	if cfg.HTTPPort == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	switch cfg.LockBackend {
	case LockBackendLocal:
	case LockBackendRedis:
		if !cfg.RedisEnabled() {
			return nil, fmt.Errorf("LOCK_BACKEND=redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("invalid LOCK_BACKEND %q: want %s or %s", cfg.LockBackend, LockBackendLocal, LockBackendRedis)
	}

	return cfg, nil
}

func parsePositiveDuration(v *viper.Viper, key, name string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
