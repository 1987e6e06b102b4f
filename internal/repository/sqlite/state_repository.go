package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mapdata-service/internal/domain/repository"
)

type stateRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStateRepository хранит списки JSON-строкой в таблице filter_state
func NewStateRepository(db *DB) repository.StateRepository {
	return &stateRepository{
		db:     db,
		logger: db.logger,
	}
}

func (r *stateRepository) GetList(ctx context.Context, key string) ([]string, error) {
	var raw string
	err := r.db.GetContext(ctx, &raw, `SELECT items FROM filter_state WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		r.logger.Error("Failed to read filter state", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("get filter state: %w", err)
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		r.logger.Warn("Discarding malformed filter state", zap.String("key", key), zap.Error(err))
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
		return fmt.Errorf("marshal filter state: %w", err)
	}

	query := `
		INSERT INTO filter_state (key, items, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE
		SET items = excluded.items, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, string(data)); err != nil {
		r.logger.Error("Failed to write filter state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("set filter state: %w", err)
	}
	return nil
}
