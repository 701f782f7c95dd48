package usecase

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/mealmap/backend/internal/domain"
)

// Default factor weights for candidate scoring
const (
	weightCoverage    = 0.4
	weightCategory    = 0.3
	weightSpecificity = 0.2
	weightQuality     = 0.1
	fuzzyWeightFactor = 0.8 // Fuzzy matches get 80% of normal weight
)

// Specificity adjustments
const (
	specificityBase         = 0.5
	specificityMethodBonus  = 0.2
	specificityGenericMalus = 0.3
	unknownCategoryScore    = 0.5
	curatedQualityScore     = 1.0
	uncuratedQualityScore   = 0.5
)

// genericTerms mark catch-all descriptions ("Chicken, NFS", "Assorted desserts")
var genericTerms = map[string]bool{
	"nfs": true, "ns": true, "generic": true, "assorted": true, "various": true,
	"misc": true, "miscellaneous": true, "unspecified": true, "product": true,
	"type": true, "item": true, "food": true,
}

// ScoreWeights are the relative weights of the four scoring factors
type ScoreWeights struct {
	Coverage    float64
	Category    float64
	Specificity float64
	Quality     float64
}

// DefaultScoreWeights returns the standard factor weights
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Coverage:    weightCoverage,
		Category:    weightCategory,
		Specificity: weightSpecificity,
		Quality:     weightQuality,
	}
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Weights             ScoreWeights
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
	EnableDebugLogging  bool
}

// ScoreBreakdown is the result of scoring one candidate description
type ScoreBreakdown struct {
	Score         float64
	Coverage      float64
	Category      float64
	Specificity   float64
	Quality       float64
	MatchedTokens []string
}

// MatchingService scores candidate food descriptions against extracted keywords
type MatchingService struct {
	weights             ScoreWeights
	enableFuzzyMatching bool
	fuzzyEditDistance   int
	enableDebugLogging  bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	weights := config.Weights
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights()
	}

	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1 // Default edit distance of 1
	}

	return &MatchingService{
		weights:             weights,
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// Score rates how well a candidate description matches the keyword set.
// curated marks lab-analyzed or survey reference data.
func (s *MatchingService) Score(description string, keywords domain.KeywordSet, curated bool) ScoreBreakdown {
	descTokens := tokenize(description)

	coverage, matched := s.coverage(keywords.Keywords, descTokens)
	category := categoryRelevance(keywords.Category, description)
	specificity := specificityScore(descTokens)
	quality := uncuratedQualityScore
	if curated {
		quality = curatedQualityScore
	}

	score := s.weights.Coverage*coverage +
		s.weights.Category*category +
		s.weights.Specificity*specificity +
		s.weights.Quality*quality

	breakdown := ScoreBreakdown{
		Score:         clamp01(score),
		Coverage:      coverage,
		Category:      category,
		Specificity:   specificity,
		Quality:       quality,
		MatchedTokens: matched,
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] %q vs %q: score=%.3f coverage=%.2f category=%.1f specificity=%.2f quality=%.1f",
			keywords.Term, description, breakdown.Score, coverage, category, specificity, quality)
	}

	return breakdown
}

// coverage is the rank-weighted share of keywords found in the description.
// The i-th keyword carries weight 1/(i+1).
func (s *MatchingService) coverage(keywords, descTokens []string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}

	var total, found float64
	var matched []string
	for i, keyword := range keywords {
		weight := 1.0 / float64(i+1)
		total += weight

		switch {
		case containsToken(descTokens, keyword):
			found += weight
			matched = append(matched, keyword)
		case s.enableFuzzyMatching && containsFuzzy(descTokens, keyword, s.fuzzyEditDistance):
			found += weight * fuzzyWeightFactor
			matched = append(matched, keyword)
		}
	}

	return found / total, matched
}

// Rank sorts candidates best first: higher score, then higher specificity,
// then the shorter (less embellished) name.
func (s *MatchingService) Rank(candidates []domain.CandidateMatch) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if math.Abs(a.Score-b.Score) > 1e-9 {
			return a.Score > b.Score
		}
		if math.Abs(a.Specificity-b.Specificity) > 1e-9 {
			return a.Specificity > b.Specificity
		}
		return len(a.Name) < len(b.Name)
	})
}

func categoryRelevance(category domain.FoodCategory, description string) float64 {
	if category == "" || category == domain.CategoryUnknown {
		return unknownCategoryScore
	}
	if descriptionHasCategory(description, category) {
		return 1.0
	}
	return 0
}

// descriptionHasCategory reports whether any identifier of the category
// appears in the description, even when an earlier category also matches.
func descriptionHasCategory(description string, category domain.FoodCategory) bool {
	lower := strings.ToLower(description)
	tokens := tokenize(lower)
	for _, rule := range categoryRules {
		if rule.category != category {
			continue
		}
		for _, id := range rule.identifiers {
			if len(id) >= 4 && strings.Contains(lower, id) {
				return true
			}
			if len(id) < 4 && containsToken(tokens, id) {
				return true
			}
		}
	}
	return false
}

func specificityScore(descTokens []string) float64 {
	score := specificityBase
	for _, token := range descTokens {
		if cookingMethods[token] {
			score += specificityMethodBonus
		}
		if genericTerms[token] {
			score -= specificityGenericMalus
		}
	}
	return clamp01(score)
}

// containsToken matches a keyword exactly or as a simple plural ("tart" / "tarts")
func containsToken(tokens []string, keyword string) bool {
	for _, token := range tokens {
		if token == keyword || token == keyword+"s" || token == keyword+"es" || token+"s" == keyword {
			return true
		}
	}
	return false
}

func containsFuzzy(tokens []string, keyword string, threshold int) bool {
	for _, token := range tokens {
		if fuzzyTokenMatch(keyword, token, threshold) {
			return true
		}
	}
	return false
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens > 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rows instead of the full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
