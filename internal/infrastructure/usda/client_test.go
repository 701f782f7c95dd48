package usda

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

func testGate() *ratelimit.Gate {
	return ratelimit.NewGate("usda", ratelimit.GateConfig{BackoffBase: time.Millisecond})
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", testGate())

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, DefaultPageSize, client.pageSize)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.gate)
	assert.False(t, client.debug)
}

func TestSetDebugAndPageSize(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", testGate())

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetPageSize(25)
	assert.Equal(t, 25, client.pageSize)

	client.SetPageSize(0)
	assert.Equal(t, 25, client.pageSize)
}

func TestSearchFoods_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/search", r.URL.Path)
		assert.Equal(t, "tiramisu", r.URL.Query().Get("query"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))

		response := domain.USDASearchResponse{
			TotalHits: 2,
			Foods: []domain.USDAFood{
				{FdcID: 123456, Description: "Tiramisu", DataType: "Survey (FNDDS)"},
				{FdcID: 654321, Description: "Tiramisu, frozen", DataType: "Branded"},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testGate())
	result, err := client.SearchFoods(context.Background(), "tiramisu")

	require.NoError(t, err)
	require.Len(t, result.Foods, 2)
	assert.Equal(t, 123456, result.Foods[0].FdcID)
	assert.Equal(t, "Tiramisu", result.Foods[0].Description)
}

func TestSearchFoods_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.USDASearchResponse{Foods: []domain.USDAFood{}})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testGate())
	result, err := client.SearchFoods(context.Background(), "empty-results")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestSearchFoods_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, domain.ErrNoMatch},
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuth},
		{"forbidden", http.StatusForbidden, domain.ErrAuth},
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"server error", http.StatusInternalServerError, domain.ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient("test-api-key", server.URL, testGate())
			result, err := client.SearchFoods(context.Background(), "query")

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestSearchFoods_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"foods": [`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testGate())
	_, err := client.SearchFoods(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestGetFoodDetails_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/food/123456", r.URL.Path)
		w.Write([]byte(`{
			"fdcId": 123456,
			"description": "Tiramisu",
			"dataType": "Survey (FNDDS)",
			"foodNutrients": [
				{"nutrient": {"id": 1008, "name": "Energy", "unitName": "kcal"}, "amount": 283},
				{"nutrient": {"id": 1003, "name": "Protein", "unitName": "g"}, "amount": 4.6}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testGate())
	food, err := client.GetFoodDetails(context.Background(), 123456)

	require.NoError(t, err)
	assert.Equal(t, "Tiramisu", food.Description)
	require.Len(t, food.Nutrients, 2)
	assert.Equal(t, NutrientIDEnergy, food.Nutrients[0].ID())
	assert.Equal(t, 283.0, food.Nutrients[0].Quantity())
}

func TestGetFoodDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testGate())
	food, err := client.GetFoodDetails(context.Background(), 1)

	assert.Nil(t, food)
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestSearchFoods_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient("test-api-key", server.URL, testGate())
	_, err := client.SearchFoods(ctx, "slow")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
