// Package migrations embeds the SQL schema for the filter-state backends and
// applies it with goose. Every migration runs in its own transaction.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Dialects with a migrations directory
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

var gooseDialects = map[string]goose.Dialect{
	Postgres: goose.DialectPostgres,
	SQLite:   goose.DialectSQLite3,
}

// Apply накатывает все непримененные миграции диалекта.
// Возвращает номер версии схемы после применения.
func Apply(ctx context.Context, db *sqlx.DB, dialect string) (int64, error) {
	return apply(ctx, db, dialect, nil)
}

// Revert откатывает все миграции диалекта
func Revert(ctx context.Context, db *sqlx.DB, dialect string) error {
	provider, err := newProvider(db, dialect, nil)
	if err != nil {
		return err
	}
	if _, err := provider.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("revert %s migrations: %w", dialect, err)
	}
	return nil
}

// Version - текущая версия схемы
func Version(ctx context.Context, db *sqlx.DB, dialect string) (int64, error) {
	provider, err := newProvider(db, dialect, nil)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func apply(ctx context.Context, db *sqlx.DB, dialect string, fsys fs.FS) (int64, error) {
	provider, err := newProvider(db, dialect, fsys)
	if err != nil {
		return 0, err
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	return provider.GetDBVersion(ctx)
}

// newProvider; fsys == nil - встроенные файлы диалекта
func newProvider(db *sqlx.DB, dialect string, fsys fs.FS) (*goose.Provider, error) {
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return nil, fmt.Errorf("unknown migrations dialect %q", dialect)
	}

	if fsys == nil {
		sub, err := fs.Sub(files, dialect)
		if err != nil {
			return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
		}
		fsys = sub
	}

	provider, err := goose.NewProvider(gooseDialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("init %s migrations: %w", dialect, err)
	}
	return provider, nil
}
