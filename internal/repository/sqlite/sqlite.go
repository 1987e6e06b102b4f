package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mapdata-service/internal/config"
	"github.com/mapdata-service/migrations"
)

// DB - локальная база SQLite для хранилища фильтров
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// New открывает файл базы и применяет миграции
func New(cfg *config.SQLiteConfig, logger *zap.Logger) (*DB, error) {
	// WAL и busy_timeout - чтобы чтение не блокировало запись
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.Path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// один писатель
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	version, err := migrations.Apply(ctx, db, migrations.SQLite)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}

	logger.Info("SQLite opened", zap.String("path", cfg.Path), zap.Int64("schema_version", version))

	return &DB{DB: db, logger: logger}, nil
}

func (db *DB) Close() error {
	db.logger.Info("Closing SQLite database")
	return db.DB.Close()
}

func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
