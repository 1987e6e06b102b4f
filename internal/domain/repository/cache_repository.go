package repository

import (
	"context"
	"time"

	"github.com/mapdata-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу (nil, nil при промахе)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetMapResult получает результат загрузки карты из кеша
	GetMapResult(ctx context.Context, mapKey string) (*domain.MapLoadResult, error)

	// SetMapResult сохраняет результат загрузки карты в кеше
	SetMapResult(ctx context.Context, result *domain.MapLoadResult, ttl time.Duration) error

	// DeleteMapResult удаляет результат загрузки карты из кеша
	DeleteMapResult(ctx context.Context, mapKey string) error
}
