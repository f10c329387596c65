package namespace

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Prefetcher warms an Env's cache in the background using a bounded
// pool of worker goroutines, built on golang.org/x/sync's
// errgroup+semaphore rather than a hand-rolled worker-count channel.
type Prefetcher struct {
	sem *semaphore.Weighted
}

// NewPrefetcher creates a prefetcher that resolves at most width names
// concurrently.
func NewPrefetcher(width int64) *Prefetcher {
	if width < 1 {
		width = 1
	}
	return &Prefetcher{sem: semaphore.NewWeighted(width)}
}

// Prepare asks the background to load every name in names against env,
// returning once all have been attempted. A name that fails to resolve
// is silently skipped: prepare is a cache-warming hint, not a
// correctness requirement, so it must never surface an error the
// calling step didn't itself trigger.
func (p *Prefetcher) Prepare(ctx context.Context, env *Env, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			env.Resolve(name)
			return nil
		})
	}
	return g.Wait()
}
