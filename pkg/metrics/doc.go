// Package metrics provides Prometheus instrumentation for gopar components.
//
// This package enables monitoring and observability for gopar's resource
// quotas, worker pools, and batch executor through Prometheus metrics.
//
// # Overview
//
// The metrics package provides automatic instrumentation for:
//   - Resource quotas (capacity, available permits, waiters, acquire wait times)
//   - Worker pools (pool size, active workers, queued tasks)
//   - Batch execution (batches, tasks per batch, batch wait times)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	// Quota table with metrics
//	quotas, err := quota.NewTableWithMetrics(quota.TableConfig{}, metrics.DefaultConfig())
//
//	// Manager with metrics
//	mgr, err := executor.New(executor.Config{
//		MaxThreads: 8,
//		Metrics:    metrics.DefaultConfig(),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
// # Available Metrics
//
// ## Resource Quota Metrics
//
//   - gopar_quota_capacity: Configured permit capacity per resource
//   - gopar_quota_available: Permits currently available per resource
//   - gopar_quota_waiting: Goroutines currently waiting for permits
//   - gopar_quota_acquires_total: Total successful permit acquisitions
//   - gopar_quota_releases_total: Total permit releases
//   - gopar_quota_unlimited_total: Acquisitions for resources with no configured quota
//   - gopar_quota_blocked_waits_total: Acquisitions that waited longer than the blocked threshold
//   - gopar_quota_wait_duration_seconds: Time spent waiting for permit acquisition
//
// ## Worker Pool Metrics
//
//   - gopar_workerpool_size: Current worker pool size
//   - gopar_workerpool_active_workers: Number of workers currently executing tasks
//   - gopar_workerpool_queued_tasks: Number of queued tasks
//   - gopar_workerpool_tasks_submitted_total: Total tasks submitted
//   - gopar_workerpool_tasks_completed_total: Total tasks completed successfully
//   - gopar_workerpool_tasks_failed_total: Total tasks that returned an error or panicked
//   - gopar_workerpool_task_duration_seconds: Time spent executing tasks
//
// ## Batch Executor Metrics
//
//   - gopar_executor_batches_total: Total task batches executed
//   - gopar_executor_batch_tasks_total: Total tasks submitted through batches
//   - gopar_executor_batch_wait_seconds: Time spent waiting for batch completion
//
// # Labels
//
// Metrics include relevant labels for filtering and aggregation:
//
//   - resource: Resource name the quota governs (e.g. "threads", "memory")
//   - pool_name: Name of the worker pool instance (e.g. "tier0")
//   - tier: Pool tier the batch ran on
//
// # Performance
//
// Metrics collection is designed for minimal overhead:
//   - Metrics are updated only when operations occur
//   - No background goroutines or timers
//   - Conditional metrics updates based on enabled state
package metrics
