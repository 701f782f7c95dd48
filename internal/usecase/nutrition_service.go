package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/cache"
)

// Default cache lifetimes
const (
	defaultTierTTL        = 72 * time.Hour
	defaultUnavailableTTL = 24 * time.Hour
	defaultMaxCandidates  = 3
)

// TierPolicy controls how one tier's candidates are accepted and reported
type TierPolicy struct {
	// MinScore is the acceptance threshold for a candidate score
	MinScore float64
	// Exclusive requires score > MinScore instead of score >= MinScore
	Exclusive bool
	// ConfidenceCap bounds the reported confidence for this tier
	ConfidenceCap float64
	// Spread widens nutrient ranges by this fraction on each side
	Spread float64
	// CacheTTL is how long results from this tier stay cached
	CacheTTL time.Duration
	// MaxCandidates bounds how many accepted candidates feed the range
	MaxCandidates int
}

// Accepts reports whether a candidate score clears the tier threshold.
// A zero score never does.
func (p TierPolicy) Accepts(score float64) bool {
	if score <= 0 {
		return false
	}
	if p.Exclusive {
		return score > p.MinScore
	}
	return score >= p.MinScore
}

// DefaultTierPolicy returns the standard policy for a built-in tier name
func DefaultTierPolicy(tier string) TierPolicy {
	switch tier {
	case domain.TierLocal:
		return TierPolicy{MinScore: 0.5, Exclusive: true, ConfidenceCap: 0.9, Spread: 0.15, CacheTTL: 168 * time.Hour, MaxCandidates: defaultMaxCandidates}
	case domain.TierUSDA:
		return TierPolicy{MinScore: 0.65, ConfidenceCap: 0.85, Spread: 0.1, CacheTTL: 168 * time.Hour, MaxCandidates: defaultMaxCandidates}
	case domain.TierExact:
		return TierPolicy{MinScore: 0, Exclusive: true, ConfidenceCap: 0.9, Spread: 0.05, CacheTTL: 72 * time.Hour, MaxCandidates: 1}
	case domain.TierPackaged:
		return TierPolicy{MinScore: 0.6, ConfidenceCap: 0.85, Spread: 0.1, CacheTTL: 72 * time.Hour, MaxCandidates: defaultMaxCandidates}
	case domain.TierIdentifier:
		return TierPolicy{MinScore: 0.5, ConfidenceCap: 0.9, Spread: 0.1, CacheTTL: 24 * time.Hour, MaxCandidates: defaultMaxCandidates}
	}
	return TierPolicy{MinScore: 0.5, ConfidenceCap: 0.85, Spread: 0.1, CacheTTL: defaultTierTTL, MaxCandidates: defaultMaxCandidates}
}

// Tier pairs a source with its acceptance policy
type Tier struct {
	Source domain.SourceAdapter
	Policy TierPolicy
}

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	UnavailableTTL     time.Duration
	EnableDebugLogging bool
	// Now overrides the clock for result timestamps
	Now func() time.Time
}

// Outcome describes how one Resolve call was served
type Outcome struct {
	Result *domain.ResolutionResult
	// FromCache is set when the result came straight from the cache
	FromCache bool
	// Networked is set when at least one networked tier was consulted
	Networked bool
}

// Resolver is the resolution entry point used by the batch runner and transports
type Resolver interface {
	Resolve(ctx context.Context, raw string) *domain.ResolutionResult
	ResolveWithOutcome(ctx context.Context, raw string) Outcome
	Stats() FallbackStats
}

// FallbackStats counts how queries were answered since startup
type FallbackStats struct {
	Requests      int64            `json:"requests"`
	CacheHits     int64            `json:"cacheHits"`
	Unavailable   int64            `json:"unavailable"`
	Cancelled     int64            `json:"cancelled"`
	TierHits      map[string]int64 `json:"tierHits"`
	TierErrors    map[string]int64 `json:"tierErrors"`
	DisabledTiers []string         `json:"disabledTiers"`
}

// NutritionService resolves raw menu text to nutrition ranges by trying
// each tier in priority order, caching every definitive answer.
type NutritionService struct {
	cache              domain.CacheRepository
	preprocessor       *QueryPreprocessor
	extractor          *KeywordExtractor
	tiers              []Tier
	unavailableTTL     time.Duration
	enableDebugLogging bool
	now                func() time.Time

	flights singleflight.Group

	mu       sync.Mutex
	disabled map[string]bool
	stats    FallbackStats
}

// NewNutritionService creates a new nutrition service with dependencies
func NewNutritionService(
	cacheRepo domain.CacheRepository,
	preprocessor *QueryPreprocessor,
	extractor *KeywordExtractor,
	tiers []Tier,
	config NutritionServiceConfig,
) *NutritionService {
	unavailableTTL := config.UnavailableTTL
	if unavailableTTL <= 0 {
		unavailableTTL = defaultUnavailableTTL
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	if preprocessor == nil {
		preprocessor = NewQueryPreprocessor(config.EnableDebugLogging)
	}
	if extractor == nil {
		extractor = NewKeywordExtractor()
	}

	return &NutritionService{
		cache:              cacheRepo,
		preprocessor:       preprocessor,
		extractor:          extractor,
		tiers:              tiers,
		unavailableTTL:     unavailableTTL,
		enableDebugLogging: config.EnableDebugLogging,
		now:                now,
		disabled:           make(map[string]bool),
		stats: FallbackStats{
			TierHits:   make(map[string]int64),
			TierErrors: make(map[string]int64),
		},
	}
}

// Resolve never fails: every query ends in either a nutrition range or an
// explicit unavailable result.
func (s *NutritionService) Resolve(ctx context.Context, raw string) *domain.ResolutionResult {
	return s.ResolveWithOutcome(ctx, raw).Result
}

// ResolveWithOutcome resolves a query and reports whether it was served from
// cache or touched the network.
// Flow: normalize -> cache -> tiers in order (terms inner) -> cache -> return
func (s *NutritionService) ResolveWithOutcome(ctx context.Context, raw string) Outcome {
	s.count(func(st *FallbackStats) { st.Requests++ })

	terms := s.preprocessor.Normalize(raw)
	key := resultKey(raw, terms)

	if cached, ok := s.getFromCache(ctx, key); ok {
		s.count(func(st *FallbackStats) { st.CacheHits++ })
		if s.enableDebugLogging {
			log.Printf("[RESOLVE] Cache hit for %q (%s)", raw, key)
		}
		return Outcome{Result: forQuery(cached, raw), FromCache: true}
	}

	v, _, _ := s.flights.Do(key, func() (interface{}, error) {
		// A concurrent flight may have filled the cache since the lookup above.
		if cached, ok := s.getFromCache(ctx, key); ok {
			return Outcome{Result: cached, FromCache: true}, nil
		}
		return s.resolveTiers(ctx, raw, terms, key), nil
	})

	// Followers share the leader's outcome, which carries the leader's query.
	out := v.(Outcome)
	out.Result = forQuery(out.Result, raw)
	return out
}

// forQuery returns result as an answer to raw. Queries that normalize to the
// same key share one stored result, so the query string is restamped on a copy.
func forQuery(result *domain.ResolutionResult, raw string) *domain.ResolutionResult {
	if result == nil || result.Query == raw {
		return result
	}
	c := *result
	c.Query = raw
	return &c
}

// resolveTiers walks the tiers and stores the definitive answer
func (s *NutritionService) resolveTiers(ctx context.Context, raw string, terms []string, key string) Outcome {
	if len(terms) == 0 {
		log.Printf("[RESOLVE] %q: %v", raw, domain.ErrInvalidInput)
		result := domain.Unavailable(raw, "", s.timestamp())
		s.count(func(st *FallbackStats) { st.Unavailable++ })
		s.setInCache(ctx, key, result, s.unavailableTTL)
		return Outcome{Result: result}
	}

	keywordSets := make([]domain.KeywordSet, len(terms))
	for i, term := range terms {
		keywordSets[i] = s.extractor.Extract(term)
	}

	networked := false
	for _, tier := range s.tiers {
		if ctx.Err() != nil {
			break
		}
		name := tier.Source.Name()
		if s.isDisabled(name) {
			continue
		}
		if tier.Source.Networked() {
			networked = true
		}

		result, err := s.tryTier(ctx, raw, tier, keywordSets)
		if err != nil {
			s.count(func(st *FallbackStats) { st.TierErrors[name]++ })
			if errors.Is(err, domain.ErrAuth) {
				s.disable(name, err)
			}
			continue
		}
		if result == nil {
			continue
		}

		s.count(func(st *FallbackStats) { st.TierHits[name]++ })
		s.setInCache(ctx, key, result, tier.Policy.CacheTTL)
		log.Printf("[RESOLVE] %q -> %q via %s (confidence %.2f, %d matches)",
			raw, result.MatchedName, name, result.Confidence, result.MatchCount)
		return Outcome{Result: result, Networked: networked}
	}

	result := domain.Unavailable(raw, terms[0], s.timestamp())
	if ctx.Err() != nil {
		// Abandoned work is reported but never cached.
		s.count(func(st *FallbackStats) { st.Cancelled++ })
		log.Printf("[RESOLVE] %q abandoned: %v", raw, ctx.Err())
		return Outcome{Result: result, Networked: networked}
	}

	s.count(func(st *FallbackStats) { st.Unavailable++ })
	s.setInCache(ctx, key, result, s.unavailableTTL)
	log.Printf("[RESOLVE] %q: no tier produced an accepted match", raw)
	return Outcome{Result: result, Networked: networked}
}

// tryTier runs one tier over every term, most specific first. It returns
// (nil, nil) when the tier answered but nothing cleared its threshold, and an
// error when the tier itself failed and the remaining terms should be skipped.
func (s *NutritionService) tryTier(ctx context.Context, raw string, tier Tier, keywordSets []domain.KeywordSet) (*domain.ResolutionResult, error) {
	name := tier.Source.Name()

	for _, ks := range keywordSets {
		candidates, err := s.attempt(ctx, tier.Source, ks)
		if err != nil {
			if errors.Is(err, domain.ErrNoMatch) {
				continue
			}
			if ctx.Err() == nil {
				log.Printf("[RESOLVE] Tier %s failed for %q: %v", name, ks.Term, err)
			}
			return nil, err
		}

		accepted := acceptCandidates(candidates, tier.Policy)
		if len(accepted) == 0 {
			if s.enableDebugLogging {
				log.Printf("[RESOLVE] Tier %s: %d candidates for %q, none above threshold %.2f",
					name, len(candidates), ks.Term, tier.Policy.MinScore)
			}
			continue
		}

		return s.buildResult(raw, ks.Term, name, accepted, tier.Policy), nil
	}
	return nil, nil
}

// attempt calls the source, retrying once when the failure is transient
func (s *NutritionService) attempt(ctx context.Context, source domain.SourceAdapter, ks domain.KeywordSet) ([]domain.CandidateMatch, error) {
	candidates, err := source.Resolve(ctx, ks)
	if err != nil && domain.IsRetryable(err) && ctx.Err() == nil {
		if s.enableDebugLogging {
			log.Printf("[RESOLVE] Retrying %s for %q after: %v", source.Name(), ks.Term, err)
		}
		candidates, err = source.Resolve(ctx, ks)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source.Name(), err)
	}
	return candidates, nil
}

func acceptCandidates(candidates []domain.CandidateMatch, policy TierPolicy) []domain.CandidateMatch {
	var accepted []domain.CandidateMatch
	for _, c := range candidates {
		if policy.Accepts(c.Score) {
			accepted = append(accepted, c)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].Score > accepted[j].Score })

	limit := policy.MaxCandidates
	if limit <= 0 {
		limit = defaultMaxCandidates
	}
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}
	return accepted
}

func (s *NutritionService) buildResult(raw, term, tier string, accepted []domain.CandidateMatch, policy TierPolicy) *domain.ResolutionResult {
	generalized := len(accepted) > 1
	for _, c := range accepted {
		generalized = generalized || c.IsGeneralized
	}

	return &domain.ResolutionResult{
		Query:         raw,
		CleanedTerm:   term,
		MatchedName:   accepted[0].Name,
		Nutrition:     AggregateRange(accepted, policy.Spread),
		Confidence:    Confidence(accepted, policy.ConfidenceCap),
		Tier:          tier,
		MatchCount:    len(accepted),
		IsAvailable:   true,
		IsGeneralized: generalized,
		Timestamp:     s.timestamp(),
	}
}

// Stats returns a snapshot of the fallback counters
func (s *NutritionService) Stats() FallbackStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.TierHits = make(map[string]int64, len(s.stats.TierHits))
	for k, v := range s.stats.TierHits {
		out.TierHits[k] = v
	}
	out.TierErrors = make(map[string]int64, len(s.stats.TierErrors))
	for k, v := range s.stats.TierErrors {
		out.TierErrors[k] = v
	}
	out.DisabledTiers = make([]string, 0, len(s.disabled))
	for name := range s.disabled {
		out.DisabledTiers = append(out.DisabledTiers, name)
	}
	sort.Strings(out.DisabledTiers)
	return out
}

// TierNames lists the configured tiers in priority order
func (s *NutritionService) TierNames() []string {
	names := make([]string, len(s.tiers))
	for i, t := range s.tiers {
		names[i] = t.Source.Name()
	}
	return names
}

func (s *NutritionService) count(update func(*FallbackStats)) {
	s.mu.Lock()
	update(&s.stats)
	s.mu.Unlock()
}

func (s *NutritionService) isDisabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled[name]
}

// disable turns a tier off for the lifetime of the service
func (s *NutritionService) disable(name string, err error) {
	s.mu.Lock()
	already := s.disabled[name]
	s.disabled[name] = true
	s.mu.Unlock()
	if !already {
		log.Printf("[RESOLVE] Disabling tier %s: %v", name, err)
	}
}

// timestamp is truncated to milliseconds in UTC so cached records round-trip exactly
func (s *NutritionService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// resultKey derives the cache key from the normalized terms, falling back
// to the raw input when nothing survived normalization.
func resultKey(raw string, terms []string) string {
	if len(terms) == 0 {
		return cache.Key("raw", raw)
	}
	return cache.Key(terms...)
}

func (s *NutritionService) getFromCache(ctx context.Context, key string) (*domain.ResolutionResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[CACHE] Get %s failed: %v", key, err)
		}
		return nil, false
	}

	var result domain.ResolutionResult
	if err := json.Unmarshal(data, &result); err != nil || result.Tier == "" {
		log.Printf("[CACHE] Dropping corrupt record %s: %v", key, domain.ErrCacheCorrupt)
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			log.Printf("[CACHE] Delete %s failed: %v", key, delErr)
		}
		return nil, false
	}
	return &result, true
}

func (s *NutritionService) setInCache(ctx context.Context, key string, result *domain.ResolutionResult, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("[CACHE] Encode %s failed: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		log.Printf("[CACHE] Set %s failed: %v", key, err)
	}
}
