package usecase

import (
	"context"
	"log"

	"github.com/mealmap/backend/internal/domain"
)

// completenessBonus is the most data completeness can add to an exact match
const completenessBonus = 0.15

// exactBaseConfidence depends on what kind of record the source returned
var exactBaseConfidence = map[domain.SourceCategory]float64{
	domain.SourceRestaurantChain: 0.9,
	domain.SourceBranded:         0.85,
	domain.SourceCommonFood:      0.75,
	domain.SourceUnknown:         0.5,
}

// ExactSource asks a natural-language nutrition service for its single best match
type ExactSource struct {
	client             domain.ExactNameClient
	enableDebugLogging bool
}

// NewExactSource creates the exact-name tier
func NewExactSource(client domain.ExactNameClient, enableDebugLogging bool) *ExactSource {
	return &ExactSource{client: client, enableDebugLogging: enableDebugLogging}
}

// Name implements domain.SourceAdapter
func (s *ExactSource) Name() string { return domain.TierExact }

// Networked implements domain.SourceAdapter
func (s *ExactSource) Networked() bool { return true }

// Resolve implements domain.SourceAdapter
func (s *ExactSource) Resolve(ctx context.Context, keywords domain.KeywordSet) ([]domain.CandidateMatch, error) {
	food, err := s.client.NaturalNutrients(ctx, keywords.Term)
	if err != nil {
		return nil, err
	}

	score := ExactConfidence(food.Category, food.Nutrients)
	name := food.Name
	if food.Brand != "" {
		name = food.Brand + " " + food.Name
	}

	if s.enableDebugLogging {
		log.Printf("[EXACT] %q -> %q (%s) score=%.3f", keywords.Term, name, food.Category, score)
	}

	return []domain.CandidateMatch{{
		Name:         name,
		SourceID:     food.Name,
		Nutrients:    food.Nutrients,
		Score:        score,
		Specificity:  specificityBase,
		ServingGrams: food.ServingGrams,
	}}, nil
}

// ExactConfidence is the category base plus up to 0.15 for nutrient completeness, capped at 0.9
func ExactConfidence(category domain.SourceCategory, nutrients domain.NutrientRecord) float64 {
	base, ok := exactBaseConfidence[category]
	if !ok {
		base = exactBaseConfidence[domain.SourceUnknown]
	}
	return round3(min(maxConfidence, base+completenessBonus*nutrients.Completeness()))
}
