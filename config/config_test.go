package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/market")
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, "first", cfg.OrderStatusPolicy)
	assert.Equal(t, int64(30000), cfg.ShippingFee)
	assert.Equal(t, 30*time.Second, cfg.ActionLockTTL)
	assert.Equal(t, int32(30), cfg.DBMaxConns)
	assert.True(t, cfg.ApplySchema)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://db/market")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("ACTION_LOCK_TTL", "5s")
	t.Setenv("DB_APPLY_SCHEMA", "false")
	t.Setenv("CACHE_ENTITY_TTL", "not-a-duration")

	cfg := FromEnv()
	assert.Equal(t, int32(7), cfg.DBMaxConns)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5*time.Second, cfg.ActionLockTTL)
	assert.False(t, cfg.ApplySchema)
	assert.Equal(t, 2*time.Minute, cfg.CacheEntityTTL)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		JWTSecret:       defaultJWTSecret,
		StorageDriver:   "s3",
		MaxUploadSizeMB: 0,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "S3_BUCKET")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_SIZE_MB")
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := &Config{DBUrl: "x", JWTSecret: "s", StorageDriver: "ftp", MaxUploadSizeMB: 1}
	assert.ErrorContains(t, cfg.Validate(), "ftp")
}
