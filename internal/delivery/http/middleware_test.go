package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{"exact match", "https://app.mealmap.io", []string{"https://app.mealmap.io"}, true},
		{"wildcard port", "http://localhost:5173", []string{"http://localhost:*"}, true},
		{"second entry", "http://localhost:3000", []string{"https://app.mealmap.io", "http://localhost:3000"}, true},
		{"no match", "http://evil.com", []string{"https://app.mealmap.io"}, false},
		{"empty origin", "", []string{"*"}, false},
		{"empty allowed list", "https://app.mealmap.io", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedOrigin(tt.origin, tt.allowedOrigins))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantCORS   bool
	}{
		{"allowed origin GET", "https://app.mealmap.io", http.MethodGet, http.StatusOK, true},
		{"allowed origin preflight", "https://app.mealmap.io", http.MethodOptions, http.StatusNoContent, true},
		{"disallowed origin", "http://evil.com", http.MethodGet, http.StatusOK, false},
		{"no origin header", "", http.MethodGet, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware([]string{"https://app.mealmap.io"}))
			router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCORS {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("assigns a new id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "menu-scan-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "menu-scan-42", w.Header().Get(RequestIDHeader))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("rejects after budget is spent", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimitMiddleware(NewIPRateLimiter(2)))
		router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		codes := make([]int, 3)
		for i := range codes {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes[i] = w.Code
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

		// Budgets are per client.
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		limiter := NewIPRateLimiter(0)
		for i := 0; i < 1000; i++ {
			if !limiter.Allow("10.0.0.1") {
				t.Fatal("expected unlimited limiter to allow")
			}
		}
	})

	t.Run("idle clients are evicted", func(t *testing.T) {
		limiter := newIPRateLimiter(1, 20*time.Millisecond, time.Hour)
		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))
		for i := 0; i < 50; i++ {
			limiter.Allow(fmt.Sprintf("10.0.1.%d", i))
		}

		time.Sleep(50 * time.Millisecond)
		limiter.limiters.DeleteExpired()
		assert.Zero(t, limiter.limiters.ItemCount())

		// A returning client starts with a fresh bucket.
		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.Equal(t, 1, limiter.limiters.ItemCount())
	})

	t.Run("active clients keep their bucket", func(t *testing.T) {
		limiter := newIPRateLimiter(1, 40*time.Millisecond, time.Hour)
		assert.True(t, limiter.Allow("10.0.0.1"))
		for i := 0; i < 4; i++ {
			time.Sleep(15 * time.Millisecond)
			assert.False(t, limiter.Allow("10.0.0.1"), "request %d", i)
		}
	})
}
