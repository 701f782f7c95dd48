package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayeredCache_PromotesStoreHits(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryCache(time.Hour, time.Minute)
	store := NewDiskCache(t.TempDir(), time.Hour)
	layered := NewLayeredCache(memory, store, 10*time.Minute)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"v":1}`), 0))

	got, err := layered.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	ok, _ := memory.Exists(ctx, "k")
	assert.True(t, ok, "store hit should be promoted to memory")
}

func TestLayeredCache_WriteThroughAndDelete(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryCache(time.Hour, time.Minute)
	store := NewDiskCache(t.TempDir(), time.Hour)
	layered := NewLayeredCache(memory, store, 10*time.Minute)

	require.NoError(t, layered.Set(ctx, "k", []byte(`{"v":2}`), time.Hour))

	_, err := memory.Get(ctx, "k")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "k")
	assert.NoError(t, err)

	require.NoError(t, layered.Delete(ctx, "k"))
	_, err = layered.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
