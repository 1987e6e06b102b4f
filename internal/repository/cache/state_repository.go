package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain/repository"
)

// stateRepository хранит списки фильтров как JSON-массивы без TTL
type stateRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewStateRepository(redis *Redis) repository.StateRepository {
	return &stateRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *stateRepository) GetList(ctx context.Context, key string) ([]string, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		r.logger.Error("Failed to read state", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("state get error: %w", err)
	}

	var values []string
	if err := json.Unmarshal(val, &values); err != nil {
		// битое значение равносильно пустому списку
		r.logger.Warn("Discarding malformed state value", zap.String("key", key), zap.Error(err))
		return []string{}, nil
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (r *stateRepository) SetList(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to write state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("state set error: %w", err)
	}

	r.logger.Debug("State saved", zap.String("key", key), zap.Int("count", len(values)))
	return nil
}
