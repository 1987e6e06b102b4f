package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/domain/repository"
)

// MockSourceRepository is a mock implementation of SourceRepository
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) Fetch(ctx context.Context, location string, progress repository.ByteProgressFunc) ([]byte, error) {
	args := m.Called(ctx, location, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockCacheRepository is a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetMapResult(ctx context.Context, mapKey string) (*domain.MapLoadResult, error) {
	args := m.Called(ctx, mapKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MapLoadResult), args.Error(1)
}

func (m *MockCacheRepository) SetMapResult(ctx context.Context, result *domain.MapLoadResult, ttl time.Duration) error {
	args := m.Called(ctx, result, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteMapResult(ctx context.Context, mapKey string) error {
	args := m.Called(ctx, mapKey)
	return args.Error(0)
}

// MockStateRepository is a mock implementation of StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) GetList(ctx context.Context, key string) ([]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStateRepository) SetList(ctx context.Context, key string, values []string) error {
	args := m.Called(ctx, key, values)
	return args.Error(0)
}
