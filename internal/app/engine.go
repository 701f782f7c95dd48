// Package app wires configuration, sources, caches and the resolver together
// for the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mealmap/backend/config"
	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/cache"
	"github.com/mealmap/backend/internal/infrastructure/foodid"
	"github.com/mealmap/backend/internal/infrastructure/nutritionix"
	"github.com/mealmap/backend/internal/infrastructure/openfoodfacts"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
	"github.com/mealmap/backend/internal/infrastructure/usda"
	"github.com/mealmap/backend/internal/usecase"
)

// memoryCleanupInterval is how often go-cache sweeps expired entries
const memoryCleanupInterval = 10 * time.Minute

// Engine is a fully wired resolver with its supporting services
type Engine struct {
	Config   *config.Config
	Resolver *usecase.NutritionService
	Batch    *usecase.BatchService
	Gates    *ratelimit.Registry
	Cache    domain.CacheRepository

	closers []func() error
}

// New builds the engine described by cfg
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	cacheRepo, closeCache, err := NewCache(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	preprocessor := usecase.NewQueryPreprocessor(cfg.Matching.EnableDebugLogging)
	if cfg.Matching.AliasFile != "" {
		aliases, blacklist, err := usecase.LoadAliasFile(cfg.Matching.AliasFile)
		if err != nil {
			closeCache()
			return nil, err
		}
		preprocessor.AddAliases(aliases, blacklist)
		log.Printf("[CONFIG] Loaded %d aliases from %s", len(aliases), cfg.Matching.AliasFile)
	}

	gates := ratelimit.NewRegistry(ratelimit.GateConfig{
		BackoffBase: cfg.RateLimit.BackoffBase,
		BackoffMax:  cfg.RateLimit.BackoffMax,
	})

	tiers := BuildTiers(cfg, gates)
	resolver := usecase.NewNutritionService(cacheRepo, preprocessor, usecase.NewKeywordExtractor(), tiers,
		usecase.NutritionServiceConfig{
			UnavailableTTL:     cfg.Cache.TTL.Unavailable,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		})

	batch := usecase.NewBatchService(resolver, usecase.BatchConfig{
		ItemDelay:          cfg.Batch.ItemDelay,
		Concurrency:        cfg.Batch.Concurrency,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	log.Printf("[ENGINE] Tiers: %v, cache: %s", resolver.TierNames(), cfg.Cache.Type)

	return &Engine{
		Config:   cfg,
		Resolver: resolver,
		Batch:    batch,
		Gates:    gates,
		Cache:    cacheRepo,
		closers:  []func() error{closeCache},
	}, nil
}

// Close releases cache handles
func (e *Engine) Close() error {
	var firstErr error
	for _, closeFn := range e.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// purger is implemented by persistent caches that can sweep expired records
type purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// PurgeCache removes expired records from a persistent cache. Memory caches
// expire on their own and report zero.
func (e *Engine) PurgeCache(ctx context.Context) (int, error) {
	store := e.Cache
	if layered, ok := store.(*cache.LayeredCache); ok {
		store = layered.Store()
	}
	p, ok := store.(purger)
	if !ok {
		return 0, nil
	}
	return p.PurgeExpired(ctx)
}

// BuildTiers assembles the tiers in priority order, skipping sources that
// have no credentials configured.
func BuildTiers(cfg *config.Config, gates *ratelimit.Registry) []usecase.Tier {
	m := cfg.Matching
	scorer := usecase.NewMatchingService(usecase.MatchConfig{
		EnableFuzzyMatching: m.EnableFuzzyMatching,
		FuzzyEditDistance:   m.FuzzyEditDistance,
		EnableDebugLogging:  m.EnableDebugLogging,
	})

	policy := func(tier string, minScore float64, ttl time.Duration) usecase.TierPolicy {
		p := usecase.DefaultTierPolicy(tier)
		p.MinScore = minScore
		if ttl > 0 {
			p.CacheTTL = ttl
		}
		return p
	}

	tiers := []usecase.Tier{{
		Source: usecase.NewLocalSource(scorer, m.EnableDebugLogging),
		Policy: policy(domain.TierLocal, m.LocalThreshold, cfg.Cache.TTL.Local),
	}}

	if cfg.USDAEnabled() {
		client := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, gates.Gate(domain.TierUSDA, cfg.USDA.MinInterval))
		client.SetDebug(m.EnableDebugLogging)
		client.SetPageSize(cfg.USDA.PageSize)

		p := policy(domain.TierUSDA, m.USDAThreshold, cfg.Cache.TTL.USDA)
		if !m.StrictUSDA {
			// Any non-zero score is accepted.
			p.MinScore, p.Exclusive = 0, true
		}
		tiers = append(tiers, usecase.Tier{
			Source: usecase.NewUSDASource(client, scorer, usecase.USDASourceConfig{EnableDebugLogging: m.EnableDebugLogging}),
			Policy: p,
		})
	} else {
		log.Printf("[ENGINE] USDA tier disabled: no API key")
	}

	if cfg.NutritionixEnabled() {
		client := nutritionix.NewClient(cfg.Nutritionix.AppID, cfg.Nutritionix.AppKey, cfg.Nutritionix.BaseURL,
			gates.Gate(domain.TierExact, cfg.Nutritionix.MinInterval))
		tiers = append(tiers, usecase.Tier{
			Source: usecase.NewExactSource(client, m.EnableDebugLogging),
			Policy: policy(domain.TierExact, 0, cfg.Cache.TTL.Exact),
		})
	}

	if cfg.OpenFoodFacts.BaseURL != "" {
		client := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent,
			gates.Gate(domain.TierPackaged, cfg.OpenFoodFacts.MinInterval))
		tiers = append(tiers, usecase.Tier{
			Source: usecase.NewPackagedSource(client, scorer, m.EnableDebugLogging),
			Policy: policy(domain.TierPackaged, m.PackagedThreshold, cfg.Cache.TTL.Packaged),
		})
	}

	if cfg.FoodIDEnabled() {
		client := foodid.NewClient(cfg.FoodID.BaseURL, cfg.FoodID.APIKey, gates.Gate(domain.TierIdentifier, cfg.FoodID.MinInterval))
		tiers = append(tiers, usecase.Tier{
			Source: usecase.NewIdentifierSource(client, scorer, usecase.IdentifierSourceConfig{
				RefreshInterval:    cfg.FoodID.RefreshInterval,
				VerifiedPrefix:     cfg.FoodID.VerifiedPrefix,
				EnableDebugLogging: m.EnableDebugLogging,
			}),
			Policy: policy(domain.TierIdentifier, m.IdentifierThreshold, cfg.Cache.TTL.Identifier),
		})
	}

	return tiers
}

// NewCache opens the configured cache backend. The returned close function
// is always non-nil.
func NewCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, func() error, error) {
	noop := func() error { return nil }
	defaultTTL := cfg.TTL.Unavailable

	switch cfg.Type {
	case config.CacheMemory, "":
		return cache.NewMemoryCache(defaultTTL, memoryCleanupInterval), noop, nil

	case config.CacheDisk:
		return cache.NewDiskCache(cfg.Dir, defaultTTL), noop, nil

	case config.CacheSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, noop, err
		}
		db, err := cache.OpenSQLite(ctx, cfg.SQLitePath, defaultTTL)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil

	case config.CacheLayered:
		memory := cache.NewMemoryCache(cfg.MemoryTTL, memoryCleanupInterval)
		return cache.NewLayeredCache(memory, cache.NewDiskCache(cfg.Dir, defaultTTL), cfg.MemoryTTL), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown cache type %q", cfg.Type)
}
