package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain/repository"
)

type stateRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStateRepository - хранилище фильтров в таблице filter_state (колонка text[])
func NewStateRepository(db *DB) repository.StateRepository {
	return &stateRepository{
		db:     db,
		logger: db.logger,
	}
}

func (r *stateRepository) GetList(ctx context.Context, key string) ([]string, error) {
	var items pq.StringArray
	err := r.db.GetContext(ctx, &items, `SELECT items FROM filter_state WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		r.logger.Error("Failed to read filter state", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("get filter state: %w", err)
	}

	if items == nil {
		return []string{}, nil
	}
	return []string(items), nil
}

func (r *stateRepository) SetList(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}

	query := `
		INSERT INTO filter_state (key, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET items = EXCLUDED.items, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, pq.Array(values)); err != nil {
		r.logger.Error("Failed to write filter state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("set filter state: %w", err)
	}

	r.logger.Debug("Filter state saved", zap.String("key", key), zap.Int("count", len(values)))
	return nil
}
