package enrich

import (
	"context"
	"sync"

	"github.com/anivault/anivault/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds how many groups are enriched at once. This
// is independent of the TMDB client's own semaphore gate (default 4): it
// limits how many goroutines may be mid-Enrich, not how many may be
// mid-HTTP-request.
const DefaultBatchConcurrency = 5

// BatchOption configures EnrichAll.
type BatchOption func(*batchConfig)

type batchConfig struct {
	concurrency int
}

// WithConcurrency overrides DefaultBatchConcurrency.
func WithConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// EnrichAll enriches every group concurrently, bounded by concurrency, and
// writes each result back into the corresponding Group's Enriched field.
// A per-group failure never aborts the batch: Enrich already converts errors
// into EnrichStatusError results, so EnrichAll itself cannot fail except on
// context cancellation between dispatches.
func EnrichAll(ctx context.Context, e *Enricher, groups []model.Group, opts ...BatchOption) ([]model.Group, error) {
	cfg := batchConfig{concurrency: DefaultBatchConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]model.Group, len(groups))
	copy(out, groups)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)

	var mu sync.Mutex
	for i := range out {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			meta := e.Enrich(ctx, out[i])
			mu.Lock()
			out[i].Enriched = &meta
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
