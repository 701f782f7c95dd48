// Package foodid reads a proprietary food-identifier catalogue: a flat list of
// ids and names plus per-id nutrient records.
package foodid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
	"github.com/mealmap/backend/internal/infrastructure/sourcehttp"
)

// Client is the food-identifier catalogue client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	gate       *ratelimit.Gate
}

// NewClient creates a catalogue client
func NewClient(baseURL, apiKey string, gate *ratelimit.Gate) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		gate:       gate,
	}
}

type listResponse struct {
	Foods []domain.FoodIdentifier `json:"foods"`
}

type nutrientEntry struct {
	NutrientCode string  `json:"nutrientCode"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
}

type detailResponse struct {
	ID        string          `json:"id"`
	Nutrients []nutrientEntry `json:"nutrients"`
}

// nutrientCodes maps the catalogue's nutrient-code vocabulary
var nutrientCodes = map[string]domain.Nutrient{
	"energy":       domain.NutrientCalories,
	"carbohydrate": domain.NutrientCarbohydrates,
	"sugars":       domain.NutrientSugar,
	"protein":      domain.NutrientProtein,
	"fat":          domain.NutrientFat,
	"fiber":        domain.NutrientFiber,
	"sodium":       domain.NutrientSodium,
}

// ListIdentifiers fetches the full identifier list
func (c *Client) ListIdentifiers(ctx context.Context) ([]domain.FoodIdentifier, error) {
	body, err := c.get(ctx, c.baseURL+"/v1/food-ids")
	if err != nil {
		return nil, err
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("%w: decode identifier list: %v", domain.ErrSourceUnavailable, err)
	}
	return lr.Foods, nil
}

// GetNutrition fetches the nutrient record for one identifier
func (c *Client) GetNutrition(ctx context.Context, id string) (domain.NutrientRecord, error) {
	body, err := c.get(ctx, c.baseURL+"/v1/foods/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var dr detailResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("%w: decode food %s: %v", domain.ErrSourceUnavailable, id, err)
	}

	record := domain.NutrientRecord{}
	for _, entry := range dr.Nutrients {
		n, ok := nutrientCodes[strings.ToLower(entry.NutrientCode)]
		if !ok {
			continue
		}
		amount := entry.Amount
		if n == domain.NutrientSodium && strings.EqualFold(entry.Unit, "g") {
			amount *= 1000
		}
		if n == domain.NutrientCalories && strings.EqualFold(entry.Unit, "kj") {
			amount /= 4.184
		}
		record[n] = amount
	}
	if len(record) == 0 {
		return nil, domain.ErrNoMatch
	}
	return record, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return sourcehttp.Do(ctx, c.httpClient, c.gate, req)
}
