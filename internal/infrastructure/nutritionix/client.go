// Package nutritionix talks to a natural-language nutrition endpoint that
// returns one best match for a literal food name.
package nutritionix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
	"github.com/mealmap/backend/internal/infrastructure/sourcehttp"
)

// Brand types reported by the API
const (
	brandTypeRestaurant = 1
	brandTypeGrocery    = 2
)

// Client is a Nutritionix natural-language API client
type Client struct {
	httpClient *http.Client
	appID      string
	appKey     string
	baseURL    string
	gate       *ratelimit.Gate
}

// NewClient creates a client with credentials and a shared gate
func NewClient(appID, appKey, baseURL string, gate *ratelimit.Gate) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		appID:      appID,
		appKey:     appKey,
		baseURL:    baseURL,
		gate:       gate,
	}
}

type naturalRequest struct {
	Query string `json:"query"`
}

type naturalResponse struct {
	Foods []naturalFood `json:"foods"`
}

type naturalFood struct {
	FoodName           string   `json:"food_name"`
	BrandName          *string  `json:"brand_name"`
	BrandType          *int     `json:"brand_type"`
	ServingWeightGrams float64  `json:"serving_weight_grams"`
	Calories           *float64 `json:"nf_calories"`
	TotalFat           *float64 `json:"nf_total_fat"`
	TotalCarbohydrate  *float64 `json:"nf_total_carbohydrate"`
	Protein            *float64 `json:"nf_protein"`
	DietaryFiber       *float64 `json:"nf_dietary_fiber"`
	Sugars             *float64 `json:"nf_sugars"`
	Sodium             *float64 `json:"nf_sodium"`
}

// NaturalNutrients sends the literal term and returns the first food
func (c *Client) NaturalNutrients(ctx context.Context, term string) (*domain.ExactFood, error) {
	payload, err := json.Marshal(naturalRequest{Query: term})
	if err != nil {
		return nil, fmt.Errorf("marshal natural request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/natural/nutrients", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)

	body, err := sourcehttp.Do(ctx, c.httpClient, c.gate, req)
	if err != nil {
		log.Printf("[NIX] Lookup %q failed: %v", term, err)
		return nil, err
	}

	var nr naturalResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("%w: decode natural response: %v", domain.ErrSourceUnavailable, err)
	}
	if len(nr.Foods) == 0 {
		return nil, domain.ErrNoMatch
	}

	return toExactFood(nr.Foods[0]), nil
}

func toExactFood(f naturalFood) *domain.ExactFood {
	record := domain.NutrientRecord{}
	set := func(n domain.Nutrient, v *float64) {
		if v != nil {
			record[n] = *v
		}
	}
	set(domain.NutrientCalories, f.Calories)
	set(domain.NutrientFat, f.TotalFat)
	set(domain.NutrientCarbohydrates, f.TotalCarbohydrate)
	set(domain.NutrientProtein, f.Protein)
	set(domain.NutrientFiber, f.DietaryFiber)
	set(domain.NutrientSugar, f.Sugars)
	set(domain.NutrientSodium, f.Sodium)

	food := &domain.ExactFood{
		Name:         f.FoodName,
		ServingGrams: f.ServingWeightGrams,
		Nutrients:    record,
		Category:     sourceCategory(f),
	}
	if f.BrandName != nil {
		food.Brand = *f.BrandName
	}
	return food
}

func sourceCategory(f naturalFood) domain.SourceCategory {
	if f.BrandType != nil {
		switch *f.BrandType {
		case brandTypeRestaurant:
			return domain.SourceRestaurantChain
		case brandTypeGrocery:
			return domain.SourceBranded
		}
		return domain.SourceUnknown
	}
	if f.BrandName == nil || *f.BrandName == "" {
		return domain.SourceCommonFood
	}
	return domain.SourceUnknown
}
