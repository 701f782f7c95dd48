package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations. Values are
// opaque serialized records; a missing or expired key yields ErrCacheMiss.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SourceAdapter is one tier of the resolution pipeline
type SourceAdapter interface {
	// Name returns the tier name recorded on results
	Name() string
	// Networked reports whether Resolve performs outbound calls
	Networked() bool
	// Resolve returns candidates for a term, ErrNoMatch when there are none,
	// or a wrapped ErrSourceUnavailable/ErrAuth/ErrRateLimited.
	Resolve(ctx context.Context, keywords KeywordSet) ([]CandidateMatch, error)
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID int) (*USDAFood, error)
}

// ExactNameClient looks up one best match for a literal food name
type ExactNameClient interface {
	NaturalNutrients(ctx context.Context, term string) (*ExactFood, error)
}

// PackagedFoodClient searches a barcode/product database
type PackagedFoodClient interface {
	SearchProducts(ctx context.Context, term string) ([]PackagedProduct, error)
}

// FoodIDClient serves a proprietary food-identifier list and per-id nutrition
type FoodIDClient interface {
	ListIdentifiers(ctx context.Context) ([]FoodIdentifier, error)
	GetNutrition(ctx context.Context, id string) (NutrientRecord, error)
}
