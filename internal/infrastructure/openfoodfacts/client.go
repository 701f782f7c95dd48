// Package openfoodfacts searches the Open Food Facts product database.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
	"github.com/mealmap/backend/internal/infrastructure/sourcehttp"
)

const defaultPageSize = 10

// Client is an Open Food Facts search client
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pageSize   int
	gate       *ratelimit.Gate
}

// NewClient creates a client. Open Food Facts asks for an identifying User-Agent.
func NewClient(baseURL, userAgent string, gate *ratelimit.Gate) *Client {
	if userAgent == "" {
		userAgent = sourcehttp.UserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
		userAgent:  userAgent,
		pageSize:   defaultPageSize,
		gate:       gate,
	}
}

type searchResponse struct {
	Count    int       `json:"count"`
	Products []product `json:"products"`
}

// product is the subset of an Open Food Facts record we read
type product struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	ProductNameEn   string         `json:"product_name_en"`
	GenericName     string         `json:"generic_name"`
	Brands          string         `json:"brands"`
	ServingQuantity any            `json:"serving_quantity"`
	Nutriments      map[string]any `json:"nutriments"`
}

// name returns the best available product name
func (p *product) name() string {
	switch {
	case p.ProductName != "":
		return p.ProductName
	case p.ProductNameEn != "":
		return p.ProductNameEn
	default:
		return p.GenericName
	}
}

// SearchProducts runs a full-text product search
func (c *Client) SearchProducts(ctx context.Context, term string) ([]domain.PackagedProduct, error) {
	params := url.Values{}
	params.Add("search_terms", term)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cgi/search.pl?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	body, err := sourcehttp.Do(ctx, c.httpClient, c.gate, req)
	if err != nil {
		log.Printf("[OFF] Search %q failed: %v", term, err)
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrSourceUnavailable, err)
	}

	products := make([]domain.PackagedProduct, 0, len(sr.Products))
	for _, p := range sr.Products {
		name := strings.TrimSpace(p.name())
		if name == "" {
			continue
		}
		per100g := nutrientsPer100g(p.Nutriments)
		if _, ok := per100g[domain.NutrientCalories]; !ok {
			continue
		}
		serving, _ := toFloat(p.ServingQuantity)
		products = append(products, domain.PackagedProduct{
			Code:         p.Code,
			Name:         name,
			Brand:        p.Brands,
			ServingGrams: validate(serving, 0, 2000),
			Per100g:      per100g,
		})
	}

	if len(products) == 0 {
		return nil, domain.ErrNoMatch
	}
	return products, nil
}

// nutrientsPer100g extracts the nutrient vocabulary from a nutriments map.
// Energy prefers kcal and falls back to kJ / 4.184; sodium is converted g→mg.
// Implausible values are dropped.
func nutrientsPer100g(m map[string]any) domain.NutrientRecord {
	record := domain.NutrientRecord{}

	if v, ok := extractFloat(m, "energy-kcal_100g"); ok && inRange(v, 0, 1000) {
		record[domain.NutrientCalories] = v
	} else if v, ok := extractFloat(m, "energy-kj_100g"); ok && inRange(v/4.184, 0, 1000) {
		record[domain.NutrientCalories] = v / 4.184
	}

	grams := map[string]domain.Nutrient{
		"carbohydrates_100g": domain.NutrientCarbohydrates,
		"proteins_100g":      domain.NutrientProtein,
		"fat_100g":           domain.NutrientFat,
		"fiber_100g":         domain.NutrientFiber,
		"sugars_100g":        domain.NutrientSugar,
	}
	for key, n := range grams {
		if v, ok := extractFloat(m, key); ok && inRange(v, 0, 100) {
			record[n] = v
		}
	}

	if v, ok := extractFloat(m, "sodium_100g"); ok && inRange(v, 0, 100) {
		record[domain.NutrientSodium] = v * 1000
	}

	return record
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func validate(v, lo, hi float64) float64 {
	if !inRange(v, lo, hi) {
		return 0
	}
	return v
}

// extractFloat coerces a nutriments map value to float64
func extractFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
