package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/domain/repository"
)

// MapResultKey - ключ кеша результата загрузки карты
func MapResultKey(mapKey string) string {
	return "mapdata:result:" + mapKey
}

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetMapResult получает результат загрузки карты из кеша
func (r *cacheRepository) GetMapResult(ctx context.Context, mapKey string) (*domain.MapLoadResult, error) {
	data, err := r.Get(ctx, MapResultKey(mapKey))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var result domain.MapLoadResult
	if err := json.Unmarshal(data, &result); err != nil {
		r.logger.Error("Failed to unmarshal map result from cache",
			zap.String("map_key", mapKey),
			zap.Error(err))
		return nil, fmt.Errorf("unmarshal map result: %w", err)
	}

	return &result, nil
}

// SetMapResult сохраняет результат загрузки карты в кеше
func (r *cacheRepository) SetMapResult(ctx context.Context, result *domain.MapLoadResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		r.logger.Error("Failed to marshal map result", zap.Error(err))
		return fmt.Errorf("marshal map result: %w", err)
	}

	return r.Set(ctx, MapResultKey(result.MapKey), data, ttl)
}

// DeleteMapResult удаляет результат загрузки карты из кеша
func (r *cacheRepository) DeleteMapResult(ctx context.Context, mapKey string) error {
	return r.Delete(ctx, MapResultKey(mapKey))
}
