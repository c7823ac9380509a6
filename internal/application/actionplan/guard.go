package actionplan

import (
	"context"
	"sync"
	"time"
)

// AckGuard suppresses duplicate acknowledgements for a key until it is
// released or its TTL lapses.
type AckGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// minSweep is the smallest map size that triggers a full expiry sweep.
const minSweep = 64

// MemoryGuard is an in-process AckGuard for single-instance deployments.
// Expiry is checked per key on Acquire; the whole map is swept only when it
// has doubled since the last sweep.
type MemoryGuard struct {
	mu      sync.Mutex
	held    map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
	sweepAt int
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{held: make(map[string]time.Time), ttl: ttl, now: time.Now, sweepAt: minSweep}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.held[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.held[key] = now.Add(g.ttl)
	if len(g.held) >= g.sweepAt {
		g.sweep(now)
	}
	return true, nil
}

func (g *MemoryGuard) sweep(now time.Time) {
	for k, exp := range g.held {
		if !now.Before(exp) {
			delete(g.held, k)
		}
	}
	g.sweepAt = max(2*len(g.held), minSweep)
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
	return nil
}
