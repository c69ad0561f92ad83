package infrastructure

import (
	"context"
	"slices"
	"sync"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
)

// Guard serializes operations that share a key. Callers are admitted in arrival order
// and the next caller only starts after the previous operation has returned.
type Guard struct {
	mu     sync.Mutex
	queues map[string]*guardQueue
}

// guardQueue tracks the holder and the waiters of one key. A waiter is admitted when
// its channel is closed; ownership passes directly from holder to waiter.
type guardQueue struct {
	waiters []chan struct{}
}

// NewGuard creates a new Guard.
func NewGuard() *Guard {
	return &Guard{
		queues: make(map[string]*guardQueue),
	}
}

// WithExclusiveAccess runs op while holding key. The key is released when op returns,
// including when it fails or panics. A caller whose ctx ends while queued returns
// ctx.Err() without running op.
func (g *Guard) WithExclusiveAccess(
	ctx context.Context,
	key string,
	op func(ctx context.Context) error,
) error {
	if err := g.acquire(ctx, key); err != nil {
		return err
	}
	defer g.release(key)

	return op(ctx)
}

func (g *Guard) acquire(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	q, held := g.queues[key]
	if !held {
		g.queues[key] = &guardQueue{}
		g.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	q.waiters = append(q.waiters, ready)
	g.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
	}

	g.mu.Lock()
	select {
	case <-ready:
		// Handed the key while giving up; pass it on.
		g.mu.Unlock()
		g.release(key)
		return ctx.Err()
	default:
	}
	if i := slices.Index(q.waiters, ready); i >= 0 {
		q.waiters = slices.Delete(q.waiters, i, i+1)
	}
	g.mu.Unlock()

	return ctx.Err()
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	q, ok := g.queues[key]
	if !ok {
		return
	}
	if len(q.waiters) == 0 {
		delete(g.queues, key)
		return
	}

	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	close(next)
}

// queued returns the number of callers waiting on key, or -1 if key is free (for testing).
func (g *Guard) queued(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if q, ok := g.queues[key]; ok {
		return len(q.waiters)
	}
	return -1
}

// Ensure Guard implements ports.ExclusiveAccess.
var _ ports.ExclusiveAccess = (*Guard)(nil)
