package executor

import (
	"context"
	"sync/atomic"
	"time"
)

// countdown tracks the outstanding tasks of one batch. Each completed
// task decrements the count; the done channel closes when it reaches
// zero. Waiters block on the channel rather than polling.
type countdown struct {
	remaining int64
	done      chan struct{}
}

// newCountdown creates a countdown for n tasks. A non-positive n yields
// a countdown that is already complete.
func newCountdown(n int) *countdown {
	c := &countdown{
		remaining: int64(n),
		done:      make(chan struct{}),
	}
	if n <= 0 {
		close(c.done)
	}
	return c
}

// taskDone records one task completion. The completion hook calls this
// exactly once per task, so the count reaches zero exactly once.
func (c *countdown) taskDone() {
	if atomic.AddInt64(&c.remaining, -1) == 0 {
		close(c.done)
	}
}

// outstanding returns the number of tasks still running or queued.
func (c *countdown) outstanding() int64 {
	return atomic.LoadInt64(&c.remaining)
}

// wait blocks until the batch completes or ctx is canceled. A positive
// heartbeat fires onBeat periodically with the outstanding count while
// waiting; tasks keep running and counting down after a canceled wait.
func (c *countdown) wait(ctx context.Context, heartbeat time.Duration, onBeat func(outstanding int64)) error {
	if heartbeat <= 0 {
		select {
		case <-c.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			onBeat(c.outstanding())
		}
	}
}
