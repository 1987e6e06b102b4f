package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/repository/cache"
)

func getTestRedis(t *testing.T) *cache.Redis {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisFromClient(client, zap.NewNop())
}

func TestCacheRepository_GetSetDelete(t *testing.T) {
	r := getTestRedis(t)
	repo := cache.NewCacheRepository(r)
	ctx := context.Background()
	key := "test:cache:bytes"
	defer r.Client().Del(ctx, key)

	val, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val, "miss returns nil without error")

	require.NoError(t, repo.Set(ctx, key, []byte("payload"), time.Minute))

	exists, err := repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	val, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)

	require.NoError(t, repo.Delete(ctx, key))
	exists, err = repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheRepository_MapResult(t *testing.T) {
	r := getTestRedis(t)
	repo := cache.NewCacheRepository(r)
	ctx := context.Background()
	defer r.Client().Del(ctx, cache.MapResultKey("test-map"))

	result := &domain.MapLoadResult{
		MapKey:        "test-map",
		Categories:    []domain.Category{{ID: "10", Name: "Chests", Image: "icons/10.png"}},
		Items:         []domain.ProcessedItem{{ID: "1", Category: "10", Name: "Box", Region: "North", Images: []string{}}},
		UniqueRegions: []string{"North"},
		Mode:          "inline",
		LoadedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, repo.SetMapResult(ctx, result, time.Minute))

	cached, err := repo.GetMapResult(ctx, "test-map")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, result.Items, cached.Items)
	assert.Equal(t, result.Categories, cached.Categories)
	assert.True(t, result.LoadedAt.Equal(cached.LoadedAt))

	missing, err := repo.GetMapResult(ctx, "no-such-map")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteMapResult(ctx, "test-map"))
	cached, err = repo.GetMapResult(ctx, "test-map")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestStateRepository(t *testing.T) {
	r := getTestRedis(t)
	repo := cache.NewStateRepository(r)
	ctx := context.Background()
	key := "test:mapdata:state"
	defer r.Client().Del(ctx, key)

	values, err := repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{}, values)

	require.NoError(t, repo.SetList(ctx, key, []string{"b", "a"}))
	values, err = repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, values)

	require.NoError(t, repo.SetList(ctx, key, nil))
	values, err = repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{}, values)

	require.NoError(t, r.Client().Set(ctx, key, "{broken", 0).Err())
	values, err = repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMapResultKey(t *testing.T) {
	assert.Equal(t, "mapdata:result:world", cache.MapResultKey("world"))
}
