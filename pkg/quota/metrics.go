package quota

import (
	"context"
	"time"

	"github.com/vnykmshr/gopar/pkg/metrics"
)

// MetricsTable wraps a quota Table with Prometheus metrics collection.
type MetricsTable struct {
	table    Table
	registry *metrics.Registry
	enabled  bool

	blockedThreshold time.Duration
}

// NewTableWithMetrics creates a quota table with metrics collection.
func NewTableWithMetrics(config TableConfig, metricsConfig metrics.Config) (Table, error) {
	if !metricsConfig.Enabled {
		return NewTable(config)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		// Create custom registry if provided
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return NewTableWithRegistry(config, registry)
}

// NewTableWithRegistry creates a quota table recording to a prebuilt
// metrics registry. Use it when several components share one registry;
// metrics.NewRegistry must only run once per Prometheus registerer.
func NewTableWithRegistry(config TableConfig, registry *metrics.Registry) (Table, error) {
	baseTable, err := NewTable(config)
	if err != nil {
		return nil, err
	}

	mt := &MetricsTable{
		table:            baseTable,
		registry:         registry,
		enabled:          true,
		blockedThreshold: resolveWarnThreshold(config.BlockedWarnThreshold),
	}

	// Initialize gauges for the configured pools
	for name := range config.Limits {
		mt.updateGauges(name)
	}

	return mt, nil
}

// updateGauges refreshes the state gauges for one resource.
func (mt *MetricsTable) updateGauges(name string) {
	if !mt.enabled {
		return
	}

	stats, ok := mt.table.Stats(name)
	if !ok {
		return
	}
	mt.registry.QuotaCapacity.WithLabelValues(name).Set(float64(stats.Capacity))
	mt.registry.QuotaAvailable.WithLabelValues(name).Set(float64(stats.Available))
	mt.registry.QuotaWaiting.WithLabelValues(name).Set(float64(stats.Waiting))
}

// Acquire blocks until the unit can be taken, recording wait duration
// and acquisition counters.
func (mt *MetricsTable) Acquire(ctx context.Context, unit Unit) error {
	if !mt.enabled {
		return mt.table.Acquire(ctx, unit)
	}

	if unit.Amount > 0 && !mt.table.Configured(unit.Key) {
		mt.registry.QuotaUnlimited.WithLabelValues(unit.Key).Inc()
		return mt.table.Acquire(ctx, unit)
	}

	mt.registry.QuotaWaiting.WithLabelValues(unit.Key).Inc()
	start := time.Now()

	err := mt.table.Acquire(ctx, unit)

	wait := time.Since(start)
	mt.registry.QuotaWaiting.WithLabelValues(unit.Key).Dec()
	mt.registry.QuotaWaitTime.WithLabelValues(unit.Key).Observe(wait.Seconds())

	if err == nil {
		mt.registry.QuotaAcquires.WithLabelValues(unit.Key).Inc()
		if mt.blockedThreshold >= 0 && wait > mt.blockedThreshold {
			mt.registry.QuotaBlockedWaits.WithLabelValues(unit.Key).Inc()
		}
		mt.updateGauges(unit.Key)
	}
	return err
}

// TryAcquire attempts to take the unit without blocking.
func (mt *MetricsTable) TryAcquire(unit Unit) bool {
	acquired := mt.table.TryAcquire(unit)

	if mt.enabled && acquired && unit.Amount > 0 {
		if mt.table.Configured(unit.Key) {
			mt.registry.QuotaAcquires.WithLabelValues(unit.Key).Inc()
			mt.updateGauges(unit.Key)
		} else {
			mt.registry.QuotaUnlimited.WithLabelValues(unit.Key).Inc()
		}
	}
	return acquired
}

// Release returns the unit's amount to its pool.
func (mt *MetricsTable) Release(unit Unit) {
	mt.table.Release(unit)

	if mt.enabled && unit.Amount > 0 && mt.table.Configured(unit.Key) {
		mt.registry.QuotaReleases.WithLabelValues(unit.Key).Inc()
		mt.updateGauges(unit.Key)
	}
}

// SetLimit configures or replaces the pool for a resource.
func (mt *MetricsTable) SetLimit(name string, amount int) error {
	err := mt.table.SetLimit(name, amount)

	if err == nil && mt.enabled {
		mt.updateGauges(name)
	}
	return err
}

// ApplyLimits calls SetLimit for every entry of limits.
func (mt *MetricsTable) ApplyLimits(limits map[string]int) error {
	if err := mt.table.ApplyLimits(limits); err != nil {
		return err
	}

	if mt.enabled {
		for name := range limits {
			mt.updateGauges(name)
		}
	}
	return nil
}

// Configured reports whether the resource currently has a pool.
func (mt *MetricsTable) Configured(name string) bool {
	return mt.table.Configured(name)
}

// Stats returns the current pool statistics for one resource.
func (mt *MetricsTable) Stats(name string) (PoolStats, bool) {
	return mt.table.Stats(name)
}

// Snapshot returns the current statistics of every configured pool.
func (mt *MetricsTable) Snapshot() map[string]PoolStats {
	snapshot := mt.table.Snapshot()

	if mt.enabled {
		for name, stats := range snapshot {
			mt.registry.QuotaCapacity.WithLabelValues(name).Set(float64(stats.Capacity))
			mt.registry.QuotaAvailable.WithLabelValues(name).Set(float64(stats.Available))
			mt.registry.QuotaWaiting.WithLabelValues(name).Set(float64(stats.Waiting))
		}
	}
	return snapshot
}

// EnableMetrics enables metrics collection.
func (mt *MetricsTable) EnableMetrics(config metrics.Config) error {
	mt.enabled = config.Enabled

	if config.Registry != nil {
		mt.registry = metrics.NewRegistry(config.Registry)
	}

	if mt.enabled {
		for name := range mt.table.Snapshot() {
			mt.updateGauges(name)
		}
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (mt *MetricsTable) DisableMetrics() {
	mt.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mt *MetricsTable) MetricsEnabled() bool {
	return mt.enabled
}
