package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "rater")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "store_rating")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Cache.MethodSet())
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.address())
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins())
	assert.False(t, cfg.Bootstrap.Enabled())
}

func TestLoadCORSAndBootstrap(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, http://localhost:5173,")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "Secret#123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.CORS.Origins())
	assert.True(t, cfg.Bootstrap.Enabled())
	assert.Equal(t, "System Administrator", cfg.Bootstrap.Name)
	assert.Equal(t, []string{"*"}, CORSConfig{AllowedOrigins: " , "}.Origins())
}

func TestLoadMissingRequired(t *testing.T) {
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME", "JWT_SECRET"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	_, err := Load()
	require.Error(t, err)
}

func TestRateLimitNormalize(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 50*time.Second, cfg.RateLimit.TTL)
}

func TestRedisAddressPrecedence(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380"}.address())
	assert.Equal(t, "other:1", RedisConfig{Host: "cache", Port: "6380", Addr: "other:1"}.address())
}
