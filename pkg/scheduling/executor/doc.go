/*
Package executor provides batch task execution across tiered worker
pools with named resource quotas.

A Manager owns a list of worker pools, one per nesting tier, and a
quota table that meters shared resources by name. Execute submits a
batch of tasks to a tier's pool and blocks until every task in the
batch has finished, using an event-driven countdown rather than
polling. Tasks that need scarce resources acquire them from the quota
table and release them when done.

Basic usage:

	manager, err := executor.New(executor.Config{
		MaxThreads:  8,
		MaxMemoryMB: 4096,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer manager.Close()

	tasks := []workerpool.Task{
		workerpool.TaskFunc(func(ctx context.Context) error {
			return processChunk(0)
		}),
		workerpool.TaskFunc(func(ctx context.Context) error {
			return processChunk(1)
		}),
	}

	if err := manager.Execute(context.Background(), tasks); err != nil {
		log.Printf("batch interrupted: %v", err)
	}

Execute returns nil once all tasks have finished, regardless of their
individual outcomes: a task error or panic is logged and counted as a
completion, never propagated to the batch. The only error Execute
returns for a healthy manager is ctx.Err() when the caller abandons
the wait, and abandoning the wait does not stop the tasks.

Tiers:

Pools are arranged in tiers so that tasks can run nested batches
without deadlocking against themselves. A task running at tier 0
submits its sub-batch to tier 1, and so on:

	outer := workerpool.TaskFunc(func(ctx context.Context) error {
		// Fan out from inside a task: use the next tier down
		return manager.ExecuteTier(ctx, subTasks, 1)
	})
	manager.Execute(context.Background(), []workerpool.Task{outer})

Tier 0 is sized at 2*MaxThreads and deeper tiers at MaxThreads+1, so
even when every worker of a tier is blocked waiting on a nested batch,
the next tier has enough workers to finish it. The tier 0 pool is
created with the manager; deeper tiers are created on first use and
never removed.

Resource Quotas:

The quota table is populated from the Config: a "threads" entry sized
by MaxThreads, a "memory" entry when a memory budget is configured
(the effective limit wins over the user-supplied one), and any extra
Limits entries. Tasks meter themselves explicitly:

	unit := quota.NewUnit(quota.Memory, 512)
	if err := manager.Acquire(ctx, unit); err != nil {
		return err // interrupted while waiting
	}
	defer manager.Release(unit)

Acquisition is all-or-nothing and blocks until capacity is available;
resources with no configured quota are unlimited and acquisitions of
them succeed immediately with an informational log. SetLimit replaces
a quota's capacity wholesale at runtime.

Heartbeat:

While a batch wait is outstanding, the manager logs progress every
HeartbeatInterval (default 5s) with the outstanding task count and
pool occupancy, which makes stuck batches visible in logs without any
polling by callers.

Lifecycle:

The Manager is an explicit dependency, not a process-wide singleton.
Construct it once, pass it down, and Close it when done; Close drains
every tier pool. For observability beyond logs, enable Config.Metrics
to export quota, pool, and batch series through Prometheus, and see
the monitor package for a periodic usage reporter.
*/
package executor
