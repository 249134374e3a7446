// Package metrics provides Prometheus instrumentation for gopar components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gopar components.
type Registry struct {
	// Resource Quota Metrics
	QuotaCapacity     *prometheus.GaugeVec
	QuotaAvailable    *prometheus.GaugeVec
	QuotaWaiting      *prometheus.GaugeVec
	QuotaAcquires     *prometheus.CounterVec
	QuotaReleases     *prometheus.CounterVec
	QuotaUnlimited    *prometheus.CounterVec
	QuotaBlockedWaits *prometheus.CounterVec
	QuotaWaitTime     *prometheus.HistogramVec

	// Worker Pool Metrics
	WorkerPoolSize   *prometheus.GaugeVec
	WorkerPoolActive *prometheus.GaugeVec
	WorkerPoolQueued *prometheus.GaugeVec
	TasksSubmitted   *prometheus.CounterVec
	TasksCompleted   *prometheus.CounterVec
	TasksFailed      *prometheus.CounterVec
	TaskDuration     *prometheus.HistogramVec

	// Batch Executor Metrics
	BatchesExecuted *prometheus.CounterVec
	BatchTasks      *prometheus.CounterVec
	BatchWaitTime   *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by gopar components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Resource Quota Metrics
		QuotaCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "capacity",
				Help:      "Configured permit capacity per resource",
			},
			[]string{"resource"},
		),

		QuotaAvailable: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "available",
				Help:      "Permits currently available per resource",
			},
			[]string{"resource"},
		),

		QuotaWaiting: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "waiting",
				Help:      "Goroutines currently waiting for permits",
			},
			[]string{"resource"},
		),

		QuotaAcquires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "acquires_total",
				Help:      "Total number of successful permit acquisitions",
			},
			[]string{"resource"},
		),

		QuotaReleases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "releases_total",
				Help:      "Total number of permit releases",
			},
			[]string{"resource"},
		),

		QuotaUnlimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "unlimited_total",
				Help:      "Total acquisitions for resources with no configured quota",
			},
			[]string{"resource"},
		),

		QuotaBlockedWaits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "blocked_waits_total",
				Help:      "Total acquisitions that waited longer than the blocked threshold",
			},
			[]string{"resource"},
		),

		QuotaWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gopar",
				Subsystem: "quota",
				Name:      "wait_duration_seconds",
				Help:      "Time spent waiting for permit acquisition",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource"},
		),

		// Worker Pool Metrics
		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of workers currently executing tasks",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),

		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks submitted",
			},
			[]string{"pool_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks completed successfully",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that returned an error or panicked",
			},
			[]string{"pool_name"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gopar",
				Subsystem: "workerpool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		// Batch Executor Metrics
		BatchesExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "executor",
				Name:      "batches_total",
				Help:      "Total number of task batches executed",
			},
			[]string{"tier"},
		),

		BatchTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopar",
				Subsystem: "executor",
				Name:      "batch_tasks_total",
				Help:      "Total number of tasks submitted through batches",
			},
			[]string{"tier"},
		),

		BatchWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gopar",
				Subsystem: "executor",
				Name:      "batch_wait_seconds",
				Help:      "Time spent waiting for batch completion",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tier"},
		),
	}
}
