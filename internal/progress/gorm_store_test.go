package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlite_driver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"
	gormadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/progress"
)

// newTestStore opens a throwaway in-memory SQLite database with the
// processing_status table migrated.
func newTestStore(t *testing.T) progress.Store {
	t.Helper()

	db, err := gorm.Open(sqlite_driver.Open(":memory:"), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ProcessingStatus{}))

	cfg := dbconfig.DatabaseConfig{Type: "sqlite", Database: ":memory:"}
	return progress.NewGormStore(gormadapter.NewGormDBAdapter(db, cfg, "test"))
}

func TestGetReturnsDefaultWithoutCreating(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	status, err := store.Get(ctx, "DUSTMONITOR_17712_2025_03.txt")
	require.NoError(t, err)
	assert.Equal(t, "DUSTMONITOR_17712_2025_03.txt", status.SourceID)
	assert.Empty(t, status.LastRawTimestamp)
	assert.Empty(t, status.LastAvgTimestamp)
	assert.Zero(t, status.LastRow)

	// A later partial upsert must not find a half-initialized row.
	require.NoError(t, store.Upsert(ctx, "DUSTMONITOR_17712_2025_03.txt", progress.StatusUpdate{
		LastRow: progress.Int64(7),
	}))
	status, err = store.Get(ctx, "DUSTMONITOR_17712_2025_03.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), status.LastRow)
	assert.Empty(t, status.LastRawTimestamp)
}

func TestUpsertCreatesThenUpdatesPartially(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "fidas-sql", progress.StatusUpdate{
		LastRawTimestamp: progress.String("20250301T1059+0400"),
		LastAvgTimestamp: progress.String("20250301T1000+0400"),
	}))

	// Advancing one field must leave the others untouched.
	require.NoError(t, store.Upsert(ctx, "fidas-sql", progress.StatusUpdate{
		LastAvgTimestamp: progress.String("20250301T1100+0400"),
	}))

	status, err := store.Get(ctx, "fidas-sql")
	require.NoError(t, err)
	assert.Equal(t, "20250301T1059+0400", status.LastRawTimestamp)
	assert.Equal(t, "20250301T1100+0400", status.LastAvgTimestamp)
	assert.Zero(t, status.LastRow)
}

func TestUpsertWithNoFieldsIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "fidas-sql", progress.StatusUpdate{}))

	status, err := store.Get(ctx, "fidas-sql")
	require.NoError(t, err)
	assert.Empty(t, status.LastRawTimestamp)
}

func TestUpsertIsolatesSources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "a.txt", progress.StatusUpdate{LastRow: progress.Int64(3)}))
	require.NoError(t, store.Upsert(ctx, "b.txt", progress.StatusUpdate{LastRow: progress.Int64(9)}))

	a, err := store.Get(ctx, "a.txt")
	require.NoError(t, err)
	b, err := store.Get(ctx, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.LastRow)
	assert.Equal(t, int64(9), b.LastRow)
}
