package foodid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealmap/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIdentifiers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/food-ids", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"foods": [{"id": "rest_001", "name": "Crispy Chicken Sandwich"}, {"id": "gen_42", "name": "Apple pie"}]}`))
	}))
	defer server.Close()

	ids, err := NewClient(server.URL, "secret", nil).ListIdentifiers(context.Background())

	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "rest_001", ids[0].ID)
	assert.Equal(t, "Apple pie", ids[1].Name)
}

func TestGetNutrition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/gen_42", r.URL.Path)
		w.Write([]byte(`{"id": "gen_42", "nutrients": [
			{"nutrientCode": "energy", "amount": 1046, "unit": "kJ"},
			{"nutrientCode": "fat", "amount": 11, "unit": "g"},
			{"nutrientCode": "sodium", "amount": 0.2, "unit": "g"},
			{"nutrientCode": "vitaminC", "amount": 3, "unit": "mg"}
		]}`))
	}))
	defer server.Close()

	record, err := NewClient(server.URL, "", nil).GetNutrition(context.Background(), "gen_42")

	require.NoError(t, err)
	assert.InDelta(t, 250.0, record[domain.NutrientCalories], 0.1)
	assert.Equal(t, 11.0, record[domain.NutrientFat])
	assert.InDelta(t, 200.0, record[domain.NutrientSodium], 0.001)
	assert.Len(t, record, 3)
}

func TestGetNutrition_EmptyRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "x", "nutrients": []}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", nil).GetNutrition(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestListIdentifiers_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad", nil).ListIdentifiers(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)
}
