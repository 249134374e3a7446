package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/metrics"
	"github.com/vnykmshr/gopar/pkg/quota"
	"github.com/vnykmshr/gopar/pkg/scheduling/workerpool"
)

// Manager coordinates batch execution across tiered worker pools and
// governs shared resources through a named quota table. It has no
// package-level instance: construct one with New and pass it to the
// code that needs it.
type Manager struct {
	config Config
	logger *slog.Logger
	quotas quota.Table

	// registry is non-nil when metrics are enabled; it is shared by the
	// quota table, the tier pools, and the batch counters.
	registry *metrics.Registry

	mu     sync.Mutex
	pools  []workerpool.Pool
	closed bool
}

// New creates a Manager. The quota table starts with a threads entry
// sized by MaxThreads and, when a memory budget is configured, a memory
// entry sized by the effective limit. The tier 0 pool is created
// eagerly; deeper tiers appear on first use.
func New(config Config) (*Manager, error) {
	resolved, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config: resolved,
		logger: resolved.Logger,
	}

	if resolved.Metrics.Enabled {
		if resolved.Metrics.Registry != nil {
			m.registry = metrics.NewRegistry(resolved.Metrics.Registry)
		} else {
			m.registry = metrics.DefaultRegistry
		}
	}

	tableConfig := quota.TableConfig{
		Logger:               resolved.Logger,
		BlockedWarnThreshold: resolved.BlockedWarnThreshold,
	}
	if m.registry != nil {
		m.quotas, err = quota.NewTableWithRegistry(tableConfig, m.registry)
	} else {
		m.quotas, err = quota.NewTable(tableConfig)
	}
	if err != nil {
		return nil, err
	}

	if err := m.InitFromConfig(); err != nil {
		return nil, err
	}

	if _, err := m.ensurePool(0); err != nil {
		return nil, err
	}

	return m, nil
}

// InitFromConfig applies the configured quota capacities to the table:
// the threads quota from MaxThreads, the memory quota from the resolved
// memory limit when one is set, and every entry of Limits. Calling it
// again re-applies the configuration; like SetLimit, that replaces live
// pools and discards outstanding accounting.
func (m *Manager) InitFromConfig() error {
	if err := m.quotas.SetLimit(quota.Threads, m.config.MaxThreads); err != nil {
		return err
	}
	if memoryMB := m.config.memoryLimitMB(); memoryMB > 0 {
		if err := m.quotas.SetLimit(quota.Memory, memoryMB); err != nil {
			return err
		}
	}
	return m.quotas.ApplyLimits(m.config.Limits)
}

// Execute runs a batch of tasks on the tier 0 pool and blocks until
// every task has finished or ctx is canceled. See ExecuteTier.
func (m *Manager) Execute(ctx context.Context, tasks []workerpool.Task) error {
	return m.ExecuteTier(ctx, tasks, 0)
}

// ExecuteTier runs a batch of tasks on the pool at the given tier and
// blocks until every task has finished. Task errors and panics do not
// fail the batch; a task that finished badly still counts as finished.
// Cancellation abandons only the wait: returning ctx.Err() does not
// stop queued or running tasks. Code running inside a task should
// submit nested batches to a deeper tier so it cannot starve its own
// pool.
func (m *Manager) ExecuteTier(ctx context.Context, tasks []workerpool.Task, tier int) error {
	if tier < 0 {
		return gperrors.NewValidationError("executor", "tier", tier, "cannot be negative")
	}
	if len(tasks) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := m.ensurePool(tier)
	if err != nil {
		return err
	}

	batch := newCountdown(len(tasks))
	for i, task := range tasks {
		if err := pool.SubmitWithDone(task, func(workerpool.Result) {
			batch.taskDone()
		}); err != nil {
			// Count down the tasks that never made it in so the batch
			// total still reaches zero for the tasks that did.
			for j := i; j < len(tasks); j++ {
				batch.taskDone()
			}
			return fmt.Errorf("batch submission stopped after %d of %d tasks: %w", i, len(tasks), err)
		}
	}

	if m.registry != nil {
		label := strconv.Itoa(tier)
		m.registry.BatchesExecuted.WithLabelValues(label).Inc()
		m.registry.BatchTasks.WithLabelValues(label).Add(float64(len(tasks)))
	}

	start := time.Now()
	heartbeat := m.config.HeartbeatInterval
	if heartbeat < 0 {
		heartbeat = 0
	}

	err = batch.wait(ctx, heartbeat, func(outstanding int64) {
		m.logger.Info("batch still running",
			"tier", tier,
			"outstanding", outstanding,
			"active", pool.ActiveWorkers(),
			"queued", pool.QueueSize(),
		)
	})

	if m.registry != nil {
		m.registry.BatchWaitTime.WithLabelValues(strconv.Itoa(tier)).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		return err
	}

	m.logger.Debug("batch completed", "tier", tier, "tasks", len(tasks), "wait", time.Since(start))
	return nil
}

// Acquire blocks until the requested amount of the unit's resource is
// available, or ctx is canceled. Resources with no configured quota are
// unlimited.
func (m *Manager) Acquire(ctx context.Context, unit quota.Unit) error {
	return m.quotas.Acquire(ctx, unit)
}

// TryAcquire attempts a non-blocking acquisition.
func (m *Manager) TryAcquire(unit quota.Unit) bool {
	return m.quotas.TryAcquire(unit)
}

// Release returns the unit's amount to its quota pool.
func (m *Manager) Release(unit quota.Unit) {
	m.quotas.Release(unit)
}

// SetLimit replaces the named quota's capacity. Waiters on the old pool
// stay parked until their context is canceled; see quota.Table.SetLimit.
func (m *Manager) SetLimit(name string, amount int) error {
	return m.quotas.SetLimit(name, amount)
}

// Quotas exposes the underlying quota table, mainly for monitoring.
func (m *Manager) Quotas() quota.Table {
	return m.quotas
}

// Registry returns the metrics registry the Manager records to, or nil
// when metrics are disabled. Components that refresh gauges for this
// Manager, such as a usage monitor, should share it rather than build
// their own, which would register duplicate collectors.
func (m *Manager) Registry() *metrics.Registry {
	return m.registry
}

// Close shuts down every tier pool, draining queued tasks first. The
// Manager rejects new batches afterwards. Close is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	pools := make([]workerpool.Pool, len(m.pools))
	copy(pools, m.pools)
	m.mu.Unlock()

	waits := make([]<-chan struct{}, 0, len(pools))
	for _, pool := range pools {
		waits = append(waits, pool.Shutdown())
	}
	for _, wait := range waits {
		<-wait
	}

	m.logger.Info("executor closed", "tiers", len(pools))
}
