package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmap/backend/config"
	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/cache"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		OpenFoodFacts: config.OpenFoodFactsConfig{BaseURL: "http://127.0.0.1:0"},
		Cache: config.CacheConfig{
			Type:       config.CacheMemory,
			Dir:        filepath.Join(dir, "cache"),
			SQLitePath: filepath.Join(dir, "db", "cache.db"),
			MemoryTTL:  time.Minute,
			TTL:        config.CacheTTLConfig{Local: time.Hour, Unavailable: time.Hour},
		},
		Matching: config.MatchingConfig{
			LocalThreshold:      0.5,
			USDAThreshold:       0.65,
			StrictUSDA:          true,
			PackagedThreshold:   0.6,
			IdentifierThreshold: 0.5,
			EnableFuzzyMatching: true,
		},
		Batch: config.BatchConfig{ItemDelay: -1, Concurrency: 1},
	}
}

func tierNames(cfg *config.Config) []string {
	var names []string
	for _, tier := range BuildTiers(cfg, ratelimit.NewRegistry(ratelimit.GateConfig{})) {
		names = append(names, tier.Source.Name())
	}
	return names
}

func TestBuildTiers(t *testing.T) {
	t.Run("sources without credentials are skipped", func(t *testing.T) {
		cfg := testConfig(t)
		assert.Equal(t, []string{domain.TierLocal, domain.TierPackaged}, tierNames(cfg))
	})

	t.Run("all sources in priority order", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.USDA.APIKey = "key"
		cfg.Nutritionix = config.NutritionixConfig{AppID: "id", AppKey: "key"}
		cfg.FoodID.BaseURL = "http://127.0.0.1:0"

		assert.Equal(t, []string{
			domain.TierLocal, domain.TierUSDA, domain.TierExact, domain.TierPackaged, domain.TierIdentifier,
		}, tierNames(cfg))
	})

	t.Run("thresholds and ttls come from config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.USDA.APIKey = "key"
		cfg.Matching.USDAThreshold = 0.7

		tiers := BuildTiers(cfg, ratelimit.NewRegistry(ratelimit.GateConfig{}))
		require.Len(t, tiers, 3)
		assert.Equal(t, time.Hour, tiers[0].Policy.CacheTTL)
		assert.True(t, tiers[0].Policy.Exclusive)
		assert.Equal(t, 0.7, tiers[1].Policy.MinScore)
		assert.False(t, tiers[1].Policy.Accepts(0.69))
	})

	t.Run("non-strict usda accepts any non-zero score", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.USDA.APIKey = "key"
		cfg.Matching.StrictUSDA = false

		tiers := BuildTiers(cfg, ratelimit.NewRegistry(ratelimit.GateConfig{}))
		require.Len(t, tiers, 3)
		assert.True(t, tiers[1].Policy.Accepts(0.01))
		assert.False(t, tiers[1].Policy.Accepts(0))
	})
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	for _, cacheType := range []string{config.CacheMemory, config.CacheDisk, config.CacheSQLite, config.CacheLayered} {
		t.Run(cacheType, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Cache.Type = cacheType

			repo, closeFn, err := NewCache(ctx, cfg.Cache)
			require.NoError(t, err)
			defer closeFn()

			key := cache.Key("turkey")
			require.NoError(t, repo.Set(ctx, key, []byte(`{"tier":"local"}`), time.Minute))
			got, err := repo.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"tier":"local"}`, string(got))
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.Type = "redis"
		_, closeFn, err := NewCache(ctx, cfg.Cache)
		assert.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}

func TestEngine(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Cache.Type = config.CacheSQLite
	cfg.OpenFoodFacts.BaseURL = ""

	engine, err := New(ctx, cfg)
	require.NoError(t, err)
	defer engine.Close()

	result := engine.Resolver.Resolve(ctx, "w/Fresh Turkey")
	assert.True(t, result.IsAvailable)
	assert.Equal(t, domain.TierLocal, result.Tier)

	batch, err := engine.Batch.ResolveAll(ctx, []string{"w/Fresh Turkey", "ddar"})
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)
	assert.Equal(t, domain.TierLocal, batch.Results[0].Tier)
	assert.False(t, batch.Results[1].IsAvailable)

	removed, err := engine.PurgeCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestEngine_AliasFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Matching.AliasFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
