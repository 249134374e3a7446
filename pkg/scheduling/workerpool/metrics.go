package workerpool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopar/pkg/metrics"
)

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a new worker pool with metrics enabled.
// It panics on invalid parameters, matching New.
func NewWithMetrics(workerCount int, name string) Pool {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		WorkerCount: workerCount,
		Name:        name,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new worker pool with custom config
// and metrics. It panics on invalid configuration, matching NewWithConfig.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) Pool {
	basePool := NewWithConfig(config)

	if !metricsConfig.Enabled {
		return basePool
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		// Create custom registry if provided
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return newMetricsPool(basePool, name, registry)
}

// NewWithConfigAndRegistry creates a metrics-collecting pool recording to
// a prebuilt registry. Use it when several components share one registry;
// metrics.NewRegistry must only run once per Prometheus registerer.
func NewWithConfigAndRegistry(config Config, name string, registry *metrics.Registry) (Pool, error) {
	basePool, err := NewWithConfigSafe(config)
	if err != nil {
		return nil, err
	}
	return newMetricsPool(basePool, name, registry), nil
}

func newMetricsPool(basePool Pool, name string, registry *metrics.Registry) *MetricsPool {
	mp := &MetricsPool{
		pool:     basePool,
		name:     name,
		registry: registry,
		enabled:  true,
	}

	// Initialize metrics
	mp.updateMetrics()

	return mp
}

// updateMetrics updates the current state gauges.
func (mp *MetricsPool) updateMetrics() {
	if !mp.enabled {
		return
	}

	mp.registry.WorkerPoolSize.WithLabelValues(mp.name).Set(float64(mp.pool.Size()))
	mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(mp.pool.ActiveWorkers()))
	mp.registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(mp.pool.QueueSize()))
}

// Submit adds a task to the pool for execution.
func (mp *MetricsPool) Submit(task Task) error {
	return mp.SubmitWithDone(task, nil)
}

// SubmitWithDone adds a task with a completion callback, recording
// submission and completion metrics around it.
func (mp *MetricsPool) SubmitWithDone(task Task, done func(Result)) error {
	err := mp.pool.SubmitWithDone(task, func(result Result) {
		if mp.enabled {
			mp.registry.TaskDuration.WithLabelValues(mp.name).Observe(result.Duration.Seconds())
			if result.Error != nil {
				mp.registry.TasksFailed.WithLabelValues(mp.name).Inc()
			} else {
				mp.registry.TasksCompleted.WithLabelValues(mp.name).Inc()
			}
			mp.updateMetrics()
		}
		if done != nil {
			done(result)
		}
	})

	if err == nil && mp.enabled {
		mp.registry.TasksSubmitted.WithLabelValues(mp.name).Inc()
		mp.updateMetrics()
	}

	return err
}

// Shutdown initiates graceful shutdown of the pool.
func (mp *MetricsPool) Shutdown() <-chan struct{} {
	return mp.pool.Shutdown()
}

// Size returns the number of workers in the pool.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// QueueSize returns the current number of queued tasks.
func (mp *MetricsPool) QueueSize() int {
	queueSize := mp.pool.QueueSize()

	if mp.enabled {
		mp.registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(queueSize))
	}

	return queueSize
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (mp *MetricsPool) ActiveWorkers() int {
	activeWorkers := mp.pool.ActiveWorkers()

	if mp.enabled {
		mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(activeWorkers))
	}

	return activeWorkers
}

// TotalSubmitted returns the total number of tasks submitted.
func (mp *MetricsPool) TotalSubmitted() int64 {
	return mp.pool.TotalSubmitted()
}

// TotalCompleted returns the total number of tasks completed.
func (mp *MetricsPool) TotalCompleted() int64 {
	return mp.pool.TotalCompleted()
}

// EnableMetrics enables metrics collection.
func (mp *MetricsPool) EnableMetrics(config metrics.Config) error {
	mp.enabled = config.Enabled

	if config.Registry != nil {
		mp.registry = metrics.NewRegistry(config.Registry)
	}

	if mp.enabled {
		mp.updateMetrics()
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (mp *MetricsPool) DisableMetrics() {
	mp.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mp *MetricsPool) MetricsEnabled() bool {
	return mp.enabled
}
