package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mealmap/backend/internal/domain"
)

// defaultItemDelay spaces out items that reached the network
const defaultItemDelay = 750 * time.Millisecond

// BatchConfig holds configuration for the batch service
type BatchConfig struct {
	// ItemDelay is the pause after an item that consulted a networked tier.
	// Zero uses the default, a negative value disables pacing.
	ItemDelay time.Duration
	// Concurrency > 1 resolves items in parallel without inter-item delay
	Concurrency        int
	EnableDebugLogging bool
}

// BatchResult holds the per-item results of one batch, in input order.
// Items not processed before cancellation are nil.
type BatchResult struct {
	ID        string                     `json:"batchId"`
	Results   []*domain.ResolutionResult `json:"results"`
	Completed int                        `json:"completed"`
}

// BatchService resolves many queries, pacing requests against upstream sources
type BatchService struct {
	resolver           Resolver
	itemDelay          time.Duration
	concurrency        int
	enableDebugLogging bool
	sleep              func(ctx context.Context, d time.Duration) error
}

// NewBatchService creates a new batch service
func NewBatchService(resolver Resolver, config BatchConfig) *BatchService {
	delay := config.ItemDelay
	if delay == 0 {
		delay = defaultItemDelay
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchService{
		resolver:           resolver,
		itemDelay:          delay,
		concurrency:        concurrency,
		enableDebugLogging: config.EnableDebugLogging,
		sleep:              sleepContext,
	}
}

// ResolveAll resolves every item. On cancellation it returns the results
// gathered so far together with the context error.
func (b *BatchService) ResolveAll(ctx context.Context, items []string) (*BatchResult, error) {
	batch := &BatchResult{
		ID:      uuid.NewString(),
		Results: make([]*domain.ResolutionResult, len(items)),
	}
	log.Printf("[BATCH] %s: resolving %d items", batch.ID, len(items))

	var err error
	if b.concurrency > 1 {
		err = b.resolveParallel(ctx, items, batch)
	} else {
		err = b.resolveSequential(ctx, items, batch)
	}

	if err != nil {
		log.Printf("[BATCH] %s: stopped after %d/%d items: %v", batch.ID, batch.Completed, len(items), err)
		return batch, err
	}
	log.Printf("[BATCH] %s: done", batch.ID)
	return batch, nil
}

func (b *BatchService) resolveSequential(ctx context.Context, items []string, batch *BatchResult) error {
	pause := false
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pause && b.itemDelay > 0 {
			if err := b.sleep(ctx, b.itemDelay); err != nil {
				return err
			}
		}

		outcome := b.resolver.ResolveWithOutcome(ctx, item)
		if ctx.Err() != nil && !outcome.FromCache {
			return ctx.Err()
		}
		batch.Results[i] = outcome.Result
		batch.Completed++

		// Cache hits and local answers never touched an upstream API.
		pause = outcome.Networked
		if b.enableDebugLogging {
			log.Printf("[BATCH] %s: item %d %q tier=%s cached=%t",
				batch.ID, i, item, outcome.Result.Tier, outcome.FromCache)
		}
	}
	return nil
}

func (b *BatchService) resolveParallel(ctx context.Context, items []string, batch *BatchResult) error {
	done := make([]bool, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := b.resolver.ResolveWithOutcome(gctx, item)
			if gctx.Err() != nil && !outcome.FromCache {
				return gctx.Err()
			}
			batch.Results[i] = outcome.Result
			done[i] = true
			return nil
		})
	}

	err := g.Wait()
	for _, ok := range done {
		if ok {
			batch.Completed++
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
