package usecase

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/mealmap/backend/internal/domain"
)

// Local match confidence components
const (
	localBaseConfidence    = 0.45
	localWordBoundaryBonus = 0.15
	localLongKeywordBonus  = 0.1
	localLongKeywordLength = 6
	localMaxConfidence     = 0.9
	localServingGrams      = 150.0
)

// LocalSource answers from the built-in ingredient table without any network access
type LocalSource struct {
	entries            []localEntry
	scorer             *MatchingService
	enableDebugLogging bool
}

type localEntry struct {
	ingredient Ingredient
	patterns   []*regexp.Regexp
}

// NewLocalSource creates the local tier over the default ingredient table
func NewLocalSource(scorer *MatchingService, enableDebugLogging bool) *LocalSource {
	return NewLocalSourceWith(defaultIngredients, scorer, enableDebugLogging)
}

// NewLocalSourceWith creates the local tier over a custom ingredient table
func NewLocalSourceWith(ingredients []Ingredient, scorer *MatchingService, enableDebugLogging bool) *LocalSource {
	entries := make([]localEntry, 0, len(ingredients))
	for _, ing := range ingredients {
		entry := localEntry{ingredient: ing}
		for _, kw := range ing.Keywords {
			entry.patterns = append(entry.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		entries = append(entries, entry)
	}
	return &LocalSource{entries: entries, scorer: scorer, enableDebugLogging: enableDebugLogging}
}

// Name implements domain.SourceAdapter
func (s *LocalSource) Name() string { return domain.TierLocal }

// Networked implements domain.SourceAdapter
func (s *LocalSource) Networked() bool { return false }

// Resolve matches the term against ingredient keywords. A substring hit
// scores 0.45, a whole-word hit adds 0.15 and keywords of six or more
// letters add 0.1 ("graham" contains "ham" but only as a substring).
func (s *LocalSource) Resolve(ctx context.Context, keywords domain.KeywordSet) ([]domain.CandidateMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	term := strings.ToLower(keywords.Term)
	var candidates []domain.CandidateMatch

	for _, entry := range s.entries {
		best := 0.0
		for i, kw := range entry.ingredient.Keywords {
			if !strings.Contains(term, kw) {
				continue
			}
			confidence := localBaseConfidence
			if entry.patterns[i].MatchString(term) {
				confidence += localWordBoundaryBonus
			}
			if len(kw) >= localLongKeywordLength {
				confidence += localLongKeywordBonus
			}
			best = max(best, min(confidence, localMaxConfidence))
		}
		if best == 0 {
			continue
		}

		base := categoryBaseNutrition[entry.ingredient.Category]
		candidates = append(candidates, domain.CandidateMatch{
			Name:          entry.ingredient.Name,
			SourceID:      "local:" + strings.ToLower(strings.ReplaceAll(entry.ingredient.Name, " ", "-")),
			Nutrients:     base.Scale(1),
			Score:         best,
			Specificity:   specificityBase,
			ServingGrams:  localServingGrams,
			IsGeneralized: true,
		})
	}

	if len(candidates) == 0 {
		return nil, domain.ErrNoMatch
	}

	if s.scorer != nil {
		s.scorer.Rank(candidates)
	}

	if s.enableDebugLogging {
		log.Printf("[LOCAL] %q -> %d ingredient matches (best %s %.2f)",
			keywords.Term, len(candidates), candidates[0].Name, candidates[0].Score)
	}

	return candidates, nil
}
