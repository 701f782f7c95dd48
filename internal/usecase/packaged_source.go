package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/mealmap/backend/internal/domain"
)

// Defaults for the packaged-food tier
const (
	defaultPackagedMaxCandidates = 3
	defaultServingGrams          = 150.0
)

// estimatedServingGrams is used when a product declares no serving size
var estimatedServingGrams = map[domain.FoodCategory]float64{
	domain.CategoryBeverages:  250,
	domain.CategorySweets:     60,
	domain.CategoryNuts:       30,
	domain.CategoryDairy:      40,
	domain.CategoryFruits:     120,
	domain.CategoryVegetables: 100,
	domain.CategoryGrains:     80,
}

// EstimatedServingGrams returns a typical serving for the category
func EstimatedServingGrams(category domain.FoodCategory) float64 {
	if g, ok := estimatedServingGrams[category]; ok {
		return g
	}
	return defaultServingGrams
}

// PackagedSource searches a product database and scales per-100g values to a serving
type PackagedSource struct {
	client             domain.PackagedFoodClient
	scorer             *MatchingService
	maxCandidates      int
	enableDebugLogging bool
}

// NewPackagedSource creates the packaged-food tier
func NewPackagedSource(client domain.PackagedFoodClient, scorer *MatchingService, enableDebugLogging bool) *PackagedSource {
	return &PackagedSource{
		client:             client,
		scorer:             scorer,
		maxCandidates:      defaultPackagedMaxCandidates,
		enableDebugLogging: enableDebugLogging,
	}
}

// Name implements domain.SourceAdapter
func (s *PackagedSource) Name() string { return domain.TierPackaged }

// Networked implements domain.SourceAdapter
func (s *PackagedSource) Networked() bool { return true }

// Resolve implements domain.SourceAdapter
func (s *PackagedSource) Resolve(ctx context.Context, keywords domain.KeywordSet) ([]domain.CandidateMatch, error) {
	products, err := s.client.SearchProducts(ctx, keywords.Term)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.CandidateMatch, 0, len(products))
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" || len(p.Per100g) == 0 {
			continue
		}
		breakdown := s.scorer.Score(name, keywords, false)
		if breakdown.Score <= 0 {
			continue
		}

		serving := p.ServingGrams
		if serving <= 0 {
			serving = EstimatedServingGrams(keywords.Category)
		}

		candidates = append(candidates, domain.CandidateMatch{
			Name:         name,
			SourceID:     p.Code,
			Nutrients:    p.Per100g.Scale(serving / 100),
			Score:        breakdown.Score,
			Specificity:  breakdown.Specificity,
			ServingGrams: serving,
		})
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatch
	}

	s.scorer.Rank(candidates)
	if len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}

	if s.enableDebugLogging {
		log.Printf("[PACKAGED] %q -> %d products (best %q %.3f)",
			keywords.Term, len(candidates), candidates[0].Name, candidates[0].Score)
	}

	return candidates, nil
}
