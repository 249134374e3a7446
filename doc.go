/*
Package gopar provides a Go library for parallel task execution with
resource quotas, tiered worker pools, and usage monitoring.

Resource Quotas (pkg/quota):
  - quota: Named counting quotas with blocking all-or-nothing acquisition
  - distributed: Multi-instance quotas shared through Redis

Task Scheduling (pkg/scheduling):
  - executor: Blocking batch execution over tiered worker pools
  - workerpool: Background task processing with unbounded queues

Observability:
  - metrics: Prometheus instrumentation for quotas, pools, and batches
  - monitor: Cron-scheduled quota and pool usage reporting

Example usage:

	import (
		"github.com/vnykmshr/gopar/pkg/quota"
		"github.com/vnykmshr/gopar/pkg/scheduling/executor"
	)

	manager, _ := executor.New(executor.Config{
		MaxThreads:  8,
		MaxMemoryMB: 4096,
	})
	defer manager.Close()

	unit := quota.NewUnit(quota.Memory, 256)
	if err := manager.Acquire(ctx, unit); err != nil {
		return err
	}
	defer manager.Release(unit)

	err := manager.Execute(ctx, tasks) // blocks until every task finishes
*/
package gopar
