package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealmap/backend/internal/usecase"
)

// maxBatchItems bounds a single batch request
const maxBatchItems = 100

// Version is reported by the health endpoint and the CLI
var Version = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver       usecase.Resolver
	batch          *usecase.BatchService
	requestTimeout time.Duration
}

// NewHandler creates a new HTTP handler. A nil resolver makes the nutrition
// endpoints answer 503.
func NewHandler(resolver usecase.Resolver, batch *usecase.BatchService) *Handler {
	return &Handler{resolver: resolver, batch: batch, requestTimeout: 30 * time.Second}
}

// ResolveRequest is the body of POST /api/v1/nutrition/resolve
type ResolveRequest struct {
	Query string `json:"query"`
}

// BatchRequest is the body of POST /api/v1/nutrition/batch
type BatchRequest struct {
	Items []string `json:"items"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mealmap-backend",
		"version": Version,
	})
}

// ResolveNutrition resolves one menu item. Unavailable results are still 200.
func (h *Handler) ResolveNutrition(c *gin.Context) {
	if h.resolver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "nutrition service not configured"})
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	c.JSON(http.StatusOK, h.resolver.Resolve(ctx, req.Query))
}

// ResolveBatch resolves a list of menu items in order
func (h *Handler) ResolveBatch(c *gin.Context) {
	if h.resolver == nil || h.batch == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "nutrition service not configured"})
		return
	}

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items are required"})
		return
	}
	if len(req.Items) > maxBatchItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many items"})
		return
	}

	result, err := h.batch.ResolveAll(c.Request.Context(), req.Items)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Printf("[HTTP] Batch %s interrupted after %d items: %v", result.ID, result.Completed, err)
			c.JSON(http.StatusRequestTimeout, result)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stats returns the resolver's fallback counters
func (h *Handler) Stats(c *gin.Context) {
	if h.resolver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "nutrition service not configured"})
		return
	}
	c.JSON(http.StatusOK, h.resolver.Stats())
}
