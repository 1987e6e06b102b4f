package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/config"
)

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(&config.RedisConfig{
		Host:        "redis",
		Port:        6380,
		Password:    "secret",
		DB:          2,
		PoolSize:    20,
		DialTimeout: time.Second,
	})

	assert.Equal(t, "redis:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Zero(t, opts.ReadTimeout)
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(&config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 200 * time.Millisecond,
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
