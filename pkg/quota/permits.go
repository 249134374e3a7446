package quota

import (
	"context"
	"sync"
)

// Permits is a counting permit pool with semaphore semantics. Acquire
// takes all requested permits at once or blocks until it can; Release
// returns permits unconditionally and may push availability above the
// original capacity. Releasing without a prior acquire is legal.
type Permits struct {
	mu        sync.Mutex
	capacity  int
	available int
	waiters   []waiter
}

// waiter represents a goroutine waiting for permits
type waiter struct {
	n      int             // number of permits needed
	ready  chan struct{}   // signaled when permits are assigned
	cancel <-chan struct{} // context cancellation channel
}

// NewPermits creates a permit pool with the given capacity. All permits
// start available. Negative capacities are treated as zero.
func NewPermits(capacity int) *Permits {
	if capacity < 0 {
		capacity = 0
	}
	return &Permits{
		capacity:  capacity,
		available: capacity,
		waiters:   make([]waiter, 0),
	}
}

// TryAcquire attempts to take n permits without blocking. It returns
// true only if all n were available.
func (p *Permits) TryAcquire(n int) bool {
	if n <= 0 {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.available >= n {
		p.available -= n
		return true
	}
	return false
}

// Acquire blocks until n permits are available and takes them all at
// once. It returns an error if the context is canceled or its deadline
// exceeded before the permits were assigned. Acquiring n <= 0 is a no-op.
func (p *Permits) Acquire(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	// Check if context is already canceled
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.mu.Lock()

	// Fast path: permits available immediately
	if p.available >= n {
		p.available -= n
		p.mu.Unlock()
		return nil
	}

	// Slow path: need to wait
	ready := make(chan struct{})
	w := waiter{
		n:      n,
		ready:  ready,
		cancel: ctx.Done(),
	}
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		select {
		case <-ready:
			// Permits were assigned between cancellation and cleanup;
			// keep them so the caller's Release stays balanced.
			p.mu.Unlock()
			return nil
		default:
		}
		p.removeWaiter(ready)
		p.mu.Unlock()
		return ctx.Err()
	}
}

// Release returns n permits to the pool and wakes any waiters that can
// now be satisfied. Availability may exceed capacity; that is how the
// pool behaves when more is released than was acquired. Releasing
// n <= 0 is a no-op.
func (p *Permits) Release(n int) {
	if n <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.available += n
	p.notifyWaiters()
}

// Capacity returns the capacity the pool was created with.
func (p *Permits) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity
}

// Available returns the number of permits currently available.
func (p *Permits) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Waiting returns the number of goroutines blocked in Acquire.
func (p *Permits) Waiting() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}

// notifyWaiters wakes up waiting goroutines whose requests now fit.
// Must be called with p.mu held.
func (p *Permits) notifyWaiters() {
	var remainingWaiters []waiter

	for _, w := range p.waiters {
		// Check if waiter was canceled
		select {
		case <-w.cancel:
			// Skip canceled waiters
			continue
		default:
		}

		// Check if we can satisfy this waiter
		if p.available >= w.n {
			p.available -= w.n
			close(w.ready) // Signal waiter
		} else {
			// Keep waiter for next time
			remainingWaiters = append(remainingWaiters, w)
		}
	}

	p.waiters = remainingWaiters
}

// removeWaiter removes a waiter from the waiters list.
// Must be called with p.mu held.
func (p *Permits) removeWaiter(ready chan struct{}) {
	var remainingWaiters []waiter
	for _, w := range p.waiters {
		if w.ready != ready {
			remainingWaiters = append(remainingWaiters, w)
		}
	}
	p.waiters = remainingWaiters
}
