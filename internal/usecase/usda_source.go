package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/usda"
)

// Defaults for the reference database tier
const (
	defaultUSDAMaxDetails = 3
	usdaServingGrams      = 100.0
)

// USDASourceConfig holds configuration for the reference database tier
type USDASourceConfig struct {
	MaxDetails         int
	EnableDebugLogging bool
}

// USDASource searches FoodData Central with several query variants and
// fetches full nutrient details for the best-scoring foods.
type USDASource struct {
	client             domain.USDAClient
	scorer             *MatchingService
	maxDetails         int
	enableDebugLogging bool
}

// NewUSDASource creates the reference database tier
func NewUSDASource(client domain.USDAClient, scorer *MatchingService, config USDASourceConfig) *USDASource {
	maxDetails := config.MaxDetails
	if maxDetails <= 0 {
		maxDetails = defaultUSDAMaxDetails
	}
	return &USDASource{
		client:             client,
		scorer:             scorer,
		maxDetails:         maxDetails,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Name implements domain.SourceAdapter
func (s *USDASource) Name() string { return domain.TierUSDA }

// Networked implements domain.SourceAdapter
func (s *USDASource) Networked() bool { return true }

// Resolve implements domain.SourceAdapter
func (s *USDASource) Resolve(ctx context.Context, keywords domain.KeywordSet) ([]domain.CandidateMatch, error) {
	foods, err := s.searchBestVariant(ctx, keywords)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.CandidateMatch, 0, len(foods))
	byID := make(map[string]domain.USDAFood, len(foods))
	for _, food := range foods {
		breakdown := s.scorer.Score(food.Description, keywords, domain.IsCurated(food.DataType))
		if breakdown.Score <= 0 {
			continue
		}
		id := strconv.Itoa(food.FdcID)
		byID[id] = food
		candidates = append(candidates, domain.CandidateMatch{
			Name:         food.Description,
			SourceID:     id,
			Score:        breakdown.Score,
			Specificity:  breakdown.Specificity,
			ServingGrams: usdaServingGrams,
		})
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatch
	}

	s.scorer.Rank(candidates)
	if len(candidates) > s.maxDetails {
		candidates = candidates[:s.maxDetails]
	}

	detailed := candidates[:0]
	for _, c := range candidates {
		nutrients, err := s.details(ctx, byID[c.SourceID])
		if err != nil {
			if errors.Is(err, domain.ErrAuth) || ctx.Err() != nil {
				return nil, err
			}
			log.Printf("[USDA] Skipping %s (%s): %v", c.SourceID, c.Name, err)
			continue
		}
		c.Nutrients = nutrients
		detailed = append(detailed, c)
	}
	if len(detailed) == 0 {
		return nil, domain.ErrNoMatch
	}

	if s.enableDebugLogging {
		log.Printf("[USDA] %q -> %d candidates (best %q %.3f)",
			keywords.Term, len(detailed), detailed[0].Name, detailed[0].Score)
	}

	return detailed, nil
}

// searchBestVariant runs each query variant and keeps the one with the most results
func (s *USDASource) searchBestVariant(ctx context.Context, keywords domain.KeywordSet) ([]domain.USDAFood, error) {
	var best []domain.USDAFood
	var bestVariant string
	var lastErr error

	for _, variant := range SearchVariants(keywords) {
		resp, err := s.client.SearchFoods(ctx, variant)
		if err != nil {
			if errors.Is(err, domain.ErrAuth) || ctx.Err() != nil {
				return nil, err
			}
			if !errors.Is(err, domain.ErrNoMatch) {
				lastErr = err
			}
			continue
		}
		if len(resp.Foods) > len(best) {
			best = resp.Foods
			bestVariant = variant
		}
	}

	if len(best) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("usda %q: %w", keywords.Term, domain.ErrNoMatch)
	}

	if s.enableDebugLogging {
		log.Printf("[USDA] Variant %q returned %d foods", bestVariant, len(best))
	}
	return best, nil
}

// details fetches full nutrients, falling back to the abridged search nutrients
func (s *USDASource) details(ctx context.Context, food domain.USDAFood) (domain.NutrientRecord, error) {
	full, err := s.client.GetFoodDetails(ctx, food.FdcID)
	if err == nil {
		if nutrients := usda.ExtractNutrients(full.Nutrients); len(nutrients) > 0 {
			return nutrients, nil
		}
	}
	if nutrients := usda.ExtractNutrients(food.Nutrients); len(nutrients) > 0 {
		return nutrients, nil
	}
	if err == nil {
		err = domain.ErrNoMatch
	}
	return nil, err
}

// SearchVariants returns the distinct queries tried for a keyword set: the
// full term, the top two keywords, the primary keyword, and for proteins the
// primary keyword with "cooked".
func SearchVariants(keywords domain.KeywordSet) []string {
	var variants []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	add(keywords.Term)
	if len(keywords.Keywords) >= 2 {
		add(keywords.Keywords[0] + " " + keywords.Keywords[1])
	}
	add(keywords.Primary())
	if keywords.Category.IsProtein() && keywords.Primary() != "" {
		add(keywords.Primary() + " cooked")
	}
	return variants
}
