package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
	"github.com/mealmap/backend/internal/infrastructure/sourcehttp"
)

// DefaultPageSize is the number of search hits requested per query
const DefaultPageSize = 10

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	pageSize   int
	gate       *ratelimit.Gate
	debug      bool
}

// NewClient creates a new USDA API client. The gate is shared with every other
// caller of the USDA API in the process.
func NewClient(apiKey, baseURL string, gate *ratelimit.Gate) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: DefaultPageSize,
		gate:     gate,
	}
}

// SetDebug enables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetPageSize overrides the number of search hits requested
func (c *Client) SetPageSize(n int) {
	if n > 0 {
		c.pageSize = n
	}
}

// SearchFoods searches for foods in the USDA database
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	if c.debug {
		log.Printf("[USDA] SearchFoods called with query: %q", query)
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Survey (FNDDS),Foundation,SR Legacy,Branded")
	params.Add("pageSize", strconv.Itoa(c.pageSize))

	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := sourcehttp.Do(ctx, c.httpClient, c.gate, req)
	if err != nil {
		log.Printf("[USDA] Search %q failed: %v", query, err)
		return nil, err
	}

	var searchResp domain.USDASearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrSourceUnavailable, err)
	}

	if len(searchResp.Foods) == 0 {
		if c.debug {
			log.Printf("[USDA] No foods found for query: %q", query)
		}
		return nil, domain.ErrNoMatch
	}

	if c.debug {
		log.Printf("[USDA] Found %d foods for query: %q", len(searchResp.Foods), query)
	}
	return &searchResp, nil
}

// GetFoodDetails retrieves detailed nutrition information for a specific food by FDC ID
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int) (*domain.USDAFood, error) {
	params := url.Values{}
	params.Add("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s/v1/food/%d?%s", c.baseURL, fdcID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := sourcehttp.Do(ctx, c.httpClient, c.gate, req)
	if err != nil {
		return nil, err
	}

	var food domain.USDAFood
	if err := json.Unmarshal(body, &food); err != nil {
		return nil, fmt.Errorf("%w: decode food %d: %v", domain.ErrSourceUnavailable, fdcID, err)
	}

	return &food, nil
}
