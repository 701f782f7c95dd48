package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/mealmap/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	ttls     map[string]time.Duration
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockSource is a mock implementation of domain.SourceAdapter
type MockSource struct {
	mu        sync.Mutex
	name      string
	networked bool
	results   map[string][]domain.CandidateMatch
	errs      []error // returned in order, one per call, before results
	calls     int
	terms     []string
	block     chan struct{}
}

func NewMockSource(name string, networked bool) *MockSource {
	return &MockSource{name: name, networked: networked, results: make(map[string][]domain.CandidateMatch)}
}

func (m *MockSource) Name() string    { return m.name }
func (m *MockSource) Networked() bool { return m.networked }

func (m *MockSource) Resolve(ctx context.Context, keywords domain.KeywordSet) ([]domain.CandidateMatch, error) {
	m.mu.Lock()
	m.calls++
	m.terms = append(m.terms, keywords.Term)
	block := m.block
	var err error
	if len(m.errs) > 0 {
		err = m.errs[0]
		m.errs = m.errs[1:]
	}
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if c, ok := m.results[keywords.Term]; ok {
		return c, nil
	}
	return nil, domain.ErrNoMatch
}

func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockUSDAClient is a mock implementation of domain.USDAClient
type MockUSDAClient struct {
	mu           sync.Mutex
	searchResult map[string]*domain.USDASearchResponse
	searchError  error
	details      map[int]*domain.USDAFood
	detailError  error
	searches     []string
	detailCalls  int
}

func NewMockUSDAClient() *MockUSDAClient {
	return &MockUSDAClient{
		searchResult: make(map[string]*domain.USDASearchResponse),
		details:      make(map[int]*domain.USDAFood),
	}
}

func (m *MockUSDAClient) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, query)
	if m.searchError != nil {
		return nil, m.searchError
	}
	if resp, ok := m.searchResult[query]; ok {
		return resp, nil
	}
	return nil, domain.ErrNoMatch
}

func (m *MockUSDAClient) GetFoodDetails(ctx context.Context, fdcID int) (*domain.USDAFood, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailCalls++
	if m.detailError != nil {
		return nil, m.detailError
	}
	if food, ok := m.details[fdcID]; ok {
		return food, nil
	}
	return nil, domain.ErrNoMatch
}

func (m *MockUSDAClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.searches) + m.detailCalls
}

// MockExactClient is a mock implementation of domain.ExactNameClient
type MockExactClient struct {
	food  *domain.ExactFood
	err   error
	calls int
}

func (m *MockExactClient) NaturalNutrients(ctx context.Context, term string) (*domain.ExactFood, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.food, nil
}

// MockPackagedClient is a mock implementation of domain.PackagedFoodClient
type MockPackagedClient struct {
	products []domain.PackagedProduct
	err      error
}

func (m *MockPackagedClient) SearchProducts(ctx context.Context, term string) ([]domain.PackagedProduct, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

// MockFoodIDClient is a mock implementation of domain.FoodIDClient
type MockFoodIDClient struct {
	identifiers []domain.FoodIdentifier
	listError   error
	nutrition   map[string]domain.NutrientRecord
	listCalls   int
}

func (m *MockFoodIDClient) ListIdentifiers(ctx context.Context) ([]domain.FoodIdentifier, error) {
	m.listCalls++
	if m.listError != nil {
		return nil, m.listError
	}
	return m.identifiers, nil
}

func (m *MockFoodIDClient) GetNutrition(ctx context.Context, id string) (domain.NutrientRecord, error) {
	if n, ok := m.nutrition[id]; ok {
		return n, nil
	}
	return nil, domain.ErrNoMatch
}

func nutrients(cal, carbs, protein, fat float64) domain.NutrientRecord {
	return domain.NutrientRecord{
		domain.NutrientCalories:      cal,
		domain.NutrientCarbohydrates: carbs,
		domain.NutrientProtein:       protein,
		domain.NutrientFat:           fat,
	}
}
