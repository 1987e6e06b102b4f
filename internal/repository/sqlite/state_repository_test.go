package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/config"
	"github.com/mapdata-service/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.New(&config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "state.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStateRepository(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewStateRepository(db)
	ctx := context.Background()
	key := "mapdata:world:active_categories"

	values, err := repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{}, values)

	require.NoError(t, repo.SetList(ctx, key, []string{"10", "20"}))
	values, err = repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, values)

	require.NoError(t, repo.SetList(ctx, key, []string{"30"}))
	values, err = repo.GetList(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"30"}, values)

	other, err := repo.GetList(ctx, "mapdata:other:active_categories")
	require.NoError(t, err)
	assert.Empty(t, other, "keys are isolated per map")
}

func TestStateRepository_MalformedValue(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewStateRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO filter_state (key, items) VALUES (?, ?)`, "broken", "{not json")
	require.NoError(t, err)

	values, err := repo.GetList(ctx, "broken")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	db, err := sqlite.New(&config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, sqlite.NewStateRepository(db).SetList(ctx, "k", []string{"v"}))
	require.NoError(t, db.Close())

	db, err = sqlite.New(&config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	values, err := sqlite.NewStateRepository(db).GetList(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, values)
}
