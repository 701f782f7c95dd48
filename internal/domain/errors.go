package domain

import "errors"

var (
	// ErrInvalidInput is returned when a query is empty or nothing survives normalization
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable is returned on network failures, timeouts and 5xx responses
	ErrSourceUnavailable = errors.New("nutrition source unavailable")

	// ErrAuth is returned when a source rejects our credentials (401/403)
	ErrAuth = errors.New("nutrition source rejected credentials")

	// ErrRateLimited is returned when a source answers 429
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNoMatch is returned when a source responded but found nothing usable
	ErrNoMatch = errors.New("no match")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupt is returned when a stored record cannot be decoded
	ErrCacheCorrupt = errors.New("cache record corrupt")
)

// IsRetryable reports whether a tier error warrants one more attempt after backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrRateLimited)
}
