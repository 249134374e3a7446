package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
)

// Submit adds a task to the pool for execution.
func (p *workerPool) Submit(task Task) error {
	return p.SubmitWithDone(task, nil)
}

// SubmitWithDone adds a task to the pool and registers a completion
// callback. Enqueueing never blocks: the queue has no capacity bound,
// so acceptance is immediate regardless of how busy the workers are.
func (p *workerPool) SubmitWithDone(task Task, done func(Result)) error {
	if task == nil {
		return gperrors.NewValidationError("workerpool", "task", nil, "cannot be nil")
	}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return fmt.Errorf("cannot submit task: %w", gperrors.ErrClosed)
	}
	atomic.AddInt64(&p.totalSubmitted, 1)
	p.queue = append(p.queue, submission{task: task, done: done})
	p.mu.Unlock()

	p.notEmpty.Signal()
	return nil
}

// Shutdown initiates a graceful shutdown of the pool. Workers finish
// the queued backlog before exiting.
func (p *workerPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.shutdown = true
		p.mu.Unlock()

		// Wake every idle worker so it can observe the shutdown flag
		p.notEmpty.Broadcast()

		go func() {
			p.workerWg.Wait()
			close(p.stopped)
		}()
	})

	return p.stopped
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *workerPool) ActiveWorkers() int {
	return int(atomic.LoadInt32(&p.activeWorkers))
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *workerPool) TotalSubmitted() int64 {
	return atomic.LoadInt64(&p.totalSubmitted)
}

// TotalCompleted returns the total number of tasks that finished.
func (p *workerPool) TotalCompleted() int64 {
	return atomic.LoadInt64(&p.totalCompleted)
}

// next blocks until a task is available or the pool is shut down with
// an empty queue. The backlog is drained even after shutdown begins.
func (p *workerPool) next() (submission, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 {
		if p.shutdown {
			return submission{}, false
		}
		p.notEmpty.Wait()
	}

	sub := p.queue[0]
	p.queue[0] = submission{}
	p.queue = p.queue[1:]
	if len(p.queue) == 0 {
		// Release the backing array once the backlog is drained
		p.queue = nil
	}
	return sub, true
}

// run is the main loop for a worker.
func (w *worker) run() {
	p := w.pool
	defer p.workerWg.Done()

	if p.config.OnWorkerStart != nil {
		p.config.OnWorkerStart(w.id)
	}
	if p.config.OnWorkerStop != nil {
		defer p.config.OnWorkerStop(w.id)
	}

	for {
		sub, ok := p.next()
		if !ok {
			return
		}
		w.executeTask(sub)
	}
}

// executeTask executes a single task and delivers its result to the
// completion callbacks. The per-submission callback always fires,
// including when the task panics.
func (w *worker) executeTask(sub submission) {
	p := w.pool

	atomic.AddInt32(&p.activeWorkers, 1)
	if p.config.OnTaskStart != nil {
		p.config.OnTaskStart(w.id, sub.task)
	}

	start := time.Now()
	err := w.runTask(sub.task)
	duration := time.Since(start)

	atomic.AddInt32(&p.activeWorkers, -1)
	atomic.AddInt64(&p.totalCompleted, 1)

	if err != nil {
		p.logger.Debug("task finished with error", "worker", w.id, "error", err)
	}

	result := Result{
		Task:     sub.task,
		Error:    err,
		Duration: duration,
		WorkerID: w.id,
	}

	if sub.done != nil {
		sub.done(result)
	}
	if p.config.OnTaskComplete != nil {
		p.config.OnTaskComplete(w.id, result)
	}
}

// runTask invokes the task with panic recovery. A configured
// PanicHandler consumes the panic; otherwise the recovered value and
// stack trace become the returned error.
func (w *worker) runTask(task Task) (err error) {
	p := w.pool

	defer func() {
		if r := recover(); r != nil {
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(task, r)
				return
			}
			err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
			p.logger.Error("task panicked", "worker", w.id, "panic", r)
		}
	}()

	ctx := context.Background()
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}

	return task.Execute(ctx)
}
