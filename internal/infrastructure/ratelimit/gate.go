package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBackoffBase = 1 * time.Second
	DefaultBackoffMax  = 60 * time.Second
)

// Gate guards outbound calls to a single source: a minimum interval between
// requests plus an exponential backoff window opened by 429/5xx responses.
type Gate struct {
	name    string
	limiter *rate.Limiter

	mu          sync.Mutex
	backoffBase time.Duration
	backoffMax  time.Duration
	nextBackoff time.Duration
	until       time.Time
	now         func() time.Time
}

// GateConfig configures a Gate
type GateConfig struct {
	MinInterval time.Duration
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// NewGate creates a gate for the named source
func NewGate(name string, cfg GateConfig) *Gate {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	base := cfg.BackoffBase
	if base <= 0 {
		base = DefaultBackoffBase
	}
	maxBackoff := cfg.BackoffMax
	if maxBackoff <= 0 {
		maxBackoff = DefaultBackoffMax
	}
	if maxBackoff < base {
		maxBackoff = base
	}

	return &Gate{
		name:        name,
		limiter:     rate.NewLimiter(limit, 1),
		backoffBase: base,
		backoffMax:  maxBackoff,
		nextBackoff: base,
		now:         time.Now,
	}
}

// Name returns the source this gate guards
func (g *Gate) Name() string {
	return g.name
}

// Wait blocks until the backoff window has passed and the minimum interval
// since the previous request has elapsed.
func (g *Gate) Wait(ctx context.Context) error {
	if delay := g.Remaining(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter %s: %w", g.name, err)
	}
	return nil
}

// Remaining returns how long the current backoff window still has to run
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.until.IsZero() {
		return 0
	}
	d := g.until.Sub(g.now())
	if d < 0 {
		return 0
	}
	return d
}

// Penalize opens (or extends) the backoff window and doubles the next delay,
// capped at the configured maximum. It returns the delay applied.
func (g *Gate) Penalize() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	delay := g.nextBackoff
	g.until = g.now().Add(delay)

	g.nextBackoff *= 2
	if g.nextBackoff > g.backoffMax {
		g.nextBackoff = g.backoffMax
	}
	return delay
}

// Reset clears the backoff state after a successful request
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextBackoff = g.backoffBase
	g.until = time.Time{}
}

// Registry hands out one shared Gate per source name
type Registry struct {
	mu       sync.RWMutex
	gates    map[string]*Gate
	defaults GateConfig
}

// NewRegistry creates a registry whose gates default to cfg
func NewRegistry(defaults GateConfig) *Registry {
	return &Registry{
		gates:    make(map[string]*Gate),
		defaults: defaults,
	}
}

// Gate returns the gate for name, creating it with minInterval on first use
func (r *Registry) Gate(name string, minInterval time.Duration) *Gate {
	r.mu.RLock()
	gate, exists := r.gates[name]
	r.mu.RUnlock()

	if exists {
		return gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if gate, exists := r.gates[name]; exists {
		return gate
	}

	cfg := r.defaults
	cfg.MinInterval = minInterval
	gate = NewGate(name, cfg)
	r.gates[name] = gate
	return gate
}
