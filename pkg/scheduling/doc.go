/*
Package scheduling provides task execution primitives for Go applications.

This package offers components for running tasks in parallel batches:

  - executor: Blocking batch execution over tiered worker pools with
    quota-governed resources
  - workerpool: Fixed worker pool with an unbounded queue and
    drain-on-shutdown semantics

Executor:

The executor runs batches and blocks until every task finishes:

	manager, err := executor.New(executor.Config{MaxThreads: 8})
	if err != nil {
		return err
	}
	defer manager.Close()

	err = manager.Execute(ctx, tasks)

	// Batches spawned inside tasks go to a deeper tier
	err = manager.ExecuteTier(ctx, nested, 1)

Worker Pool:

The worker pool provides controlled concurrent execution:

	pool := workerpool.New(4) // 4 workers
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	pool.Submit(task)

All components are thread-safe and integrate with context for
cancellation handling.
*/
package scheduling
