package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_SetGetOverwrite(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "nutrition:v1:tart", []byte(`{"v":1}`), 0))
	require.NoError(t, c.Set(ctx, "nutrition:v1:tart", []byte(`{"v":2}`), 0))

	got, err := c.Get(ctx, "nutrition:v1:tart")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	ok, err := c.Exists(ctx, "nutrition:v1:tart")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteCache_Miss(t *testing.T) {
	c := openTestSQLite(t)
	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestSQLiteCache_ExpiryAndPurge(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte(`1`), time.Minute))
	require.NoError(t, c.Set(ctx, "short2", []byte(`1`), time.Minute))
	require.NoError(t, c.Set(ctx, "long", []byte(`2`), 48*time.Hour))

	now = now.Add(time.Hour)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	removed, err := c.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ok, _ := c.Exists(ctx, "long")
	assert.True(t, ok)
}

func TestSQLiteCache_Delete(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte(`1`), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
