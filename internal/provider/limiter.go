package provider

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// concurrencyLimiter bounds the number of in-flight provider requests.
// Callers that exceed the bound block (with backpressure) rather than
// queuing unboundedly, per §5.
type concurrencyLimiter struct {
	sem *semaphore.Weighted
}

func newConcurrencyLimiter(max int) *concurrencyLimiter {
	if max <= 0 {
		max = 1
	}
	return &concurrencyLimiter{sem: semaphore.NewWeighted(int64(max))}
}

// acquire blocks until a slot is free or ctx is cancelled.
func (l *concurrencyLimiter) acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *concurrencyLimiter) release() {
	l.sem.Release(1)
}
