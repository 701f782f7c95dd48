package nutritionix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient("app-id", "app-key", url, ratelimit.NewGate("nix", ratelimit.GateConfig{BackoffBase: time.Millisecond}))
}

func TestNaturalNutrients_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/natural/nutrients", r.URL.Path)
		assert.Equal(t, "app-id", r.Header.Get("x-app-id"))
		assert.Equal(t, "app-key", r.Header.Get("x-app-key"))

		var req naturalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "big mac", req.Query)

		w.Write([]byte(`{"foods": [{
			"food_name": "Big Mac",
			"brand_name": "McDonald's",
			"brand_type": 1,
			"serving_weight_grams": 219,
			"nf_calories": 563,
			"nf_total_fat": 33,
			"nf_total_carbohydrate": 44,
			"nf_protein": 26,
			"nf_sodium": 1007
		}]}`))
	}))
	defer server.Close()

	food, err := newTestClient(server.URL).NaturalNutrients(context.Background(), "big mac")

	require.NoError(t, err)
	assert.Equal(t, "Big Mac", food.Name)
	assert.Equal(t, "McDonald's", food.Brand)
	assert.Equal(t, domain.SourceRestaurantChain, food.Category)
	assert.Equal(t, 219.0, food.ServingGrams)
	assert.Equal(t, 563.0, food.Nutrients[domain.NutrientCalories])
	assert.Equal(t, 1007.0, food.Nutrients[domain.NutrientSodium])
	_, hasFiber := food.Nutrients[domain.NutrientFiber]
	assert.False(t, hasFiber)
}

func TestNaturalNutrients_EmptyFoods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"foods": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).NaturalNutrients(context.Background(), "xyzzy")
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestNaturalNutrients_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).NaturalNutrients(context.Background(), "pizza")
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestSourceCategory(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	tests := []struct {
		name string
		food naturalFood
		want domain.SourceCategory
	}{
		{"restaurant", naturalFood{BrandName: str("Chipotle"), BrandType: num(1)}, domain.SourceRestaurantChain},
		{"grocery brand", naturalFood{BrandName: str("Kraft"), BrandType: num(2)}, domain.SourceBranded},
		{"common food", naturalFood{}, domain.SourceCommonFood},
		{"unknown brand type", naturalFood{BrandName: str("X"), BrandType: num(7)}, domain.SourceUnknown},
		{"brand without type", naturalFood{BrandName: str("X")}, domain.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sourceCategory(tt.food))
		})
	}
}
