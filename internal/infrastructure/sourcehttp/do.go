// Package sourcehttp executes outbound requests to nutrition sources behind a
// rate Gate and maps HTTP outcomes onto the domain error taxonomy.
package sourcehttp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/mealmap/backend/internal/domain"
	"github.com/mealmap/backend/internal/infrastructure/ratelimit"
)

// UserAgent is sent with every outbound request
const UserAgent = "MealMap/1.0"

// maxBodyBytes bounds how much of a response we read
const maxBodyBytes = 8 << 20

// Do waits on the gate, executes req and returns the body of a 2xx response.
// 401/403 map to ErrAuth, 429 to ErrRateLimited, 404 to ErrNoMatch and
// transport errors or 5xx to ErrSourceUnavailable. 429 and 5xx open the
// gate's backoff window; 2xx resets it.
func Do(ctx context.Context, client *http.Client, gate *ratelimit.Gate, req *http.Request) ([]byte, error) {
	if gate != nil {
		if err := gate.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		penalize(gate)
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		penalize(gate)
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrSourceUnavailable, err)
	}

	if err := StatusError(resp.StatusCode, body); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := penalize(gate)
			log.Printf("[HTTP] %s answered %d, backing off %s", req.URL.Host, resp.StatusCode, delay)
		}
		return nil, err
	}

	if gate != nil {
		gate.Reset()
	}
	return body, nil
}

// StatusError maps a non-2xx status code to a wrapped domain error
func StatusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrAuth, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", domain.ErrNoMatch, status)
	case status >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, status)
	default:
		return fmt.Errorf("%w: status %d, body: %s", domain.ErrSourceUnavailable, status, truncate(body, 200))
	}
}

func penalize(gate *ratelimit.Gate) string {
	if gate == nil {
		return "0s"
	}
	return gate.Penalize().String()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
