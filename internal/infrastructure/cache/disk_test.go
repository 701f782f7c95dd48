package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCache_SetGet(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "nutrition:v1:turkey", []byte(`{"query":"turkey"}`), 0))

	got, err := c.Get(ctx, "nutrition:v1:turkey")
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"turkey"}`, string(got))

	ok, _ := c.Exists(ctx, "nutrition:v1:turkey")
	assert.True(t, ok)
}

func TestDiskCache_RejectsNonJSON(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	err := c.Set(context.Background(), "k", []byte("not json"), 0)
	assert.Error(t, err)
}

func TestDiskCache_LazyExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", []byte(`1`), time.Hour))

	now = now.Add(2 * time.Hour)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	_, statErr := os.Stat(filepath.Join(dir, "k.json"))
	assert.True(t, os.IsNotExist(statErr), "expired file should be removed on read")
}

func TestDiskCache_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nutrition_v1_bad.json"), []byte("{garbage"), 0644))

	_, err := c.Get(context.Background(), "nutrition:v1:bad")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestDiskCache_PurgeExpired(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "old", []byte(`1`), time.Minute))
	require.NoError(t, c.Set(ctx, "fresh", []byte(`2`), 24*time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	now = now.Add(time.Hour)
	removed, err := c.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = c.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestDiskCache_ConcurrentWritersSameKey(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Set(ctx, "race", []byte(`{"v":"same"}`), 0))
		}()
	}
	wg.Wait()

	got, err := c.Get(ctx, "race")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"same"}`, string(got))
}

func TestDiskCache_DeleteMissingIsNoError(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	assert.NoError(t, c.Delete(context.Background(), "nope"))
}
