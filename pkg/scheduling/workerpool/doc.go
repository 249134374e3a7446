/*
Package workerpool provides a worker pool with an unbounded task queue
and per-task completion callbacks.

A pool manages a fixed number of worker goroutines draining a queue
that grows as needed. Submission never blocks and never rejects a task
while the pool is open: concurrency is limited by the worker count, not
by queue capacity. This makes the pool suitable as the execution layer
of a batch runtime, where producers must be able to enqueue arbitrarily
many tasks without risk of deadlocking against their own workers.

Basic usage:

	pool := workerpool.New(4)
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit: %v", err)
	}

Key Features:

The worker pool provides:
  - Fixed number of worker goroutines for predictable resource usage
  - Unbounded task queue: submission is always immediate
  - Per-task completion callbacks for event-driven coordination
  - Comprehensive error handling and panic recovery
  - Graceful shutdown that drains the queued backlog
  - Real-time state inspection and optional Prometheus metrics
  - Flexible configuration with lifecycle callbacks

Task Interface:

Tasks implement a simple interface:

	type Task interface {
		Execute(ctx context.Context) error
	}

The TaskFunc type provides a convenient way to create tasks from functions:

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Task implementation
		return nil
	})

Completion Callbacks:

SubmitWithDone registers a callback that fires exactly once when the
task finishes, whether it succeeded, returned an error, or panicked:

	done := make(chan workerpool.Result, 1)
	pool.SubmitWithDone(task, func(result workerpool.Result) {
		done <- result
	})

	result := <-done
	if result.Error != nil {
		log.Printf("Task failed: %v", result.Error)
	}

Callbacks run on the worker goroutine that executed the task, so they
must not block. Counting down a barrier, sending on a buffered channel,
or bumping an atomic counter are all appropriate; waiting on another
task is not.

Configuration Options:

Advanced configuration is available through the Config struct:

	config := workerpool.Config{
		WorkerCount: 8,
		Name:        "ingest",
		TaskTimeout: 30 * time.Second,
		PanicHandler: func(task Task, recovered interface{}) {
			log.Printf("Task panicked: %v", recovered)
		},
		OnTaskComplete: func(workerID int, result Result) {
			log.Printf("Worker %d finished task in %v", workerID, result.Duration)
		},
	}
	pool := workerpool.NewWithConfig(config)

Error Handling:

Task errors never propagate to the submitter; they appear in the
Result delivered to completion callbacks and in the pool's debug log.
Panics are recovered so a misbehaving task cannot kill its worker:

	// Task errors are captured in results
	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return errors.New("task failed")
	})

	// Panics are recovered; the stack trace becomes the Result error
	task := workerpool.TaskFunc(func(ctx context.Context) error {
		panic("something went wrong")
	})

When a PanicHandler is configured it receives the recovered value and
the Result carries no error.

Queue Behavior:

The queue is a FIFO with no capacity limit. Memory usage is bounded
only by the number of outstanding tasks, which callers control by
pacing their submissions or by coordinating on completion callbacks.
QueueSize reports the current backlog for monitoring:

	if pool.QueueSize() > 10000 {
		log.Printf("backlog building up: %d tasks waiting", pool.QueueSize())
	}

Graceful Shutdown:

Shutdown stops intake immediately but lets workers finish every task
already queued:

	shutdownComplete := pool.Shutdown()
	<-shutdownComplete

Submissions after Shutdown return an error wrapping errors.ErrClosed.

Monitoring:

The pool exposes its state directly:

	fmt.Printf("Pool size: %d\n", pool.Size())
	fmt.Printf("Queue size: %d\n", pool.QueueSize())
	fmt.Printf("Active workers: %d\n", pool.ActiveWorkers())
	fmt.Printf("Total submitted: %d\n", pool.TotalSubmitted())
	fmt.Printf("Total completed: %d\n", pool.TotalCompleted())

Prometheus collection is available through NewWithMetrics and
NewWithConfigAndMetrics; see the metrics package for the exported
series.

Thread Safety:

All pool operations are safe for concurrent use from multiple
goroutines. Internal synchronization ensures consistent state without
external locking.
*/
package workerpool
