package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mealmap/backend/internal/domain"
)

// Defaults for the food-identifier tier
const (
	defaultIdentifierRefresh   = 24 * time.Hour
	defaultVerifiedPrefix      = "rest_"
	verifiedScoreBoost         = 1.2
	unverifiedScoreCap         = 0.7
	defaultIdentifierMaxLookup = 3
)

// IdentifierSourceConfig holds configuration for the food-identifier tier
type IdentifierSourceConfig struct {
	RefreshInterval    time.Duration
	VerifiedPrefix     string
	MaxLookups         int
	EnableDebugLogging bool
}

// IdentifierSource fuzzy-matches terms against a proprietary food-ID list and
// fetches nutrition for the closest identifiers. The list is cached in memory
// and refreshed lazily.
type IdentifierSource struct {
	client             domain.FoodIDClient
	scorer             *MatchingService
	refreshInterval    time.Duration
	verifiedPrefix     string
	maxLookups         int
	enableDebugLogging bool
	now                func() time.Time

	mu          sync.Mutex
	identifiers []domain.FoodIdentifier
	fetchedAt   time.Time
}

// NewIdentifierSource creates the food-identifier tier
func NewIdentifierSource(client domain.FoodIDClient, scorer *MatchingService, config IdentifierSourceConfig) *IdentifierSource {
	refresh := config.RefreshInterval
	if refresh <= 0 {
		refresh = defaultIdentifierRefresh
	}
	prefix := config.VerifiedPrefix
	if prefix == "" {
		prefix = defaultVerifiedPrefix
	}
	lookups := config.MaxLookups
	if lookups <= 0 {
		lookups = defaultIdentifierMaxLookup
	}
	return &IdentifierSource{
		client:             client,
		scorer:             scorer,
		refreshInterval:    refresh,
		verifiedPrefix:     prefix,
		maxLookups:         lookups,
		enableDebugLogging: config.EnableDebugLogging,
		now:                time.Now,
	}
}

// Name implements domain.SourceAdapter
func (s *IdentifierSource) Name() string { return domain.TierIdentifier }

// Networked implements domain.SourceAdapter
func (s *IdentifierSource) Networked() bool { return true }

// Resolve implements domain.SourceAdapter
func (s *IdentifierSource) Resolve(ctx context.Context, keywords domain.KeywordSet) ([]domain.CandidateMatch, error) {
	identifiers, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []domain.CandidateMatch
	for _, id := range identifiers {
		breakdown := s.scorer.Score(id.Name, keywords, false)
		if breakdown.Coverage == 0 {
			continue
		}
		candidates = append(candidates, domain.CandidateMatch{
			Name:        id.Name,
			SourceID:    id.ID,
			Score:       s.adjust(id.ID, breakdown.Score),
			Specificity: breakdown.Specificity,
		})
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatch
	}

	s.scorer.Rank(candidates)
	if len(candidates) > s.maxLookups {
		candidates = candidates[:s.maxLookups]
	}

	resolved := candidates[:0]
	for _, c := range candidates {
		nutrients, err := s.client.GetNutrition(ctx, c.SourceID)
		if err != nil {
			if errors.Is(err, domain.ErrAuth) || ctx.Err() != nil {
				return nil, err
			}
			log.Printf("[FOODID] Skipping %s: %v", c.SourceID, err)
			continue
		}
		c.Nutrients = nutrients
		resolved = append(resolved, c)
	}
	if len(resolved) == 0 {
		return nil, domain.ErrNoMatch
	}

	if s.enableDebugLogging {
		log.Printf("[FOODID] %q -> %d identifiers (best %s %.3f)",
			keywords.Term, len(resolved), resolved[0].SourceID, resolved[0].Score)
	}

	return resolved, nil
}

// adjust boosts verified identifiers and caps unverified ones
func (s *IdentifierSource) adjust(id string, score float64) float64 {
	if strings.HasPrefix(id, s.verifiedPrefix) {
		return round3(min(maxConfidence, score*verifiedScoreBoost))
	}
	return round3(min(unverifiedScoreCap, score))
}

// list returns the identifier list, refreshing it when stale. A failed
// refresh keeps serving the previous list.
func (s *IdentifierSource) list(ctx context.Context) ([]domain.FoodIdentifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identifiers != nil && s.now().Sub(s.fetchedAt) < s.refreshInterval {
		return s.identifiers, nil
	}

	fresh, err := s.client.ListIdentifiers(ctx)
	if err != nil {
		if s.identifiers != nil && !errors.Is(err, domain.ErrAuth) {
			log.Printf("[FOODID] Refresh failed, keeping %d cached identifiers: %v", len(s.identifiers), err)
			return s.identifiers, nil
		}
		return nil, err
	}

	s.identifiers = fresh
	s.fetchedAt = s.now()
	log.Printf("[FOODID] Loaded %d identifiers", len(fresh))
	return fresh, nil
}
