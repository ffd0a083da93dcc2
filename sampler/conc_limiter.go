package sampler

import (
	"context"
	"sync"
)

// ConcLimiter caps the number of in-flight granule workers.
type ConcLimiter struct {
	*sync.WaitGroup
	Pool chan struct{}
}

func NewConcLimiter(cLevel int) *ConcLimiter {
	var wg sync.WaitGroup
	return &ConcLimiter{&wg, make(chan struct{}, cLevel)}
}

// Increase blocks until a worker slot is free or the context is
// cancelled. It reports whether the slot was acquired.
func (c *ConcLimiter) Increase(ctx context.Context) bool {
	select {
	case c.Pool <- struct{}{}:
		c.Add(1)
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *ConcLimiter) Decrease() {
	select {
	case <-c.Pool:
		c.Done()
	default:
	}
}
