package monitor

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/metrics"
	"github.com/vnykmshr/gopar/pkg/scheduling/executor"
)

// DefaultSchedule is the reporting cadence used when Config.Schedule is
// empty.
const DefaultSchedule = "@every 30s"

// Config holds monitor configuration.
type Config struct {
	// Schedule is a cron expression controlling how often usage is
	// reported. Six-field cron v3 format with seconds is accepted, as
	// are descriptors such as "@every 30s" or "@hourly". Empty means
	// DefaultSchedule.
	Schedule string

	// Manager is the executor whose quotas and tier pools are reported.
	// Required.
	Manager *executor.Manager

	// Logger receives the usage lines. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Registry, when set, has its quota and worker pool gauges refreshed
	// on every report. Pass the manager's own registry, typically
	// Manager.Registry(). Nil disables the gauge refresh.
	Registry *metrics.Registry
}

// Monitor periodically reports quota and tier pool usage for a Manager.
// Construct it with New, then call Start to begin scheduled reporting
// and Stop to halt it. Report can also be called directly for a single
// pass.
type Monitor struct {
	schedule cron.Schedule
	manager  *executor.Manager
	logger   *slog.Logger
	registry *metrics.Registry

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

// New creates a monitor for the given manager. It returns a validation
// error when the manager is missing or the schedule cannot be parsed.
func New(cfg Config) (*Monitor, error) {
	if cfg.Manager == nil {
		return nil, gperrors.NewValidationError("monitor", "manager", nil, "cannot be nil")
	}

	expr := cfg.Schedule
	if expr == "" {
		expr = DefaultSchedule
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, gperrors.NewValidationError("monitor", "schedule", expr,
			fmt.Sprintf("invalid cron expression: %v", err)).
			WithHint(`use six-field cron syntax or a descriptor such as "@every 30s"`)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		schedule: schedule,
		manager:  cfg.Manager,
		logger:   logger,
		registry: cfg.Registry,
	}, nil
}

// Start begins scheduled reporting in a background goroutine. It
// returns an error if the monitor is already running.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("monitor already running, call Stop first")
	}

	m.running = true
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	go m.run(m.done, m.stopped)

	return nil
}

// Stop halts scheduled reporting and waits for any in-flight report to
// finish. Stopping a monitor that is not running is a no-op; a stopped
// monitor may be started again.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	done := m.done
	stopped := m.stopped
	m.mu.Unlock()

	close(done)
	<-stopped
}

func (m *Monitor) run(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	timer := time.NewTimer(time.Until(m.schedule.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case <-timer.C:
			m.Report()
			timer.Reset(time.Until(m.schedule.Next(time.Now())))
		}
	}
}

// Report runs one usage pass: one log line per configured quota
// resource and one per tier pool, plus a gauge refresh when a registry
// is configured. Start calls it on every schedule firing.
func (m *Monitor) Report() {
	snapshot := m.manager.Quotas().Snapshot()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stats := snapshot[name]
		m.logger.Info("quota usage",
			"resource", name,
			"capacity", stats.Capacity,
			"available", stats.Available,
			"waiting", stats.Waiting)

		if m.registry != nil {
			m.registry.QuotaCapacity.WithLabelValues(name).Set(float64(stats.Capacity))
			m.registry.QuotaAvailable.WithLabelValues(name).Set(float64(stats.Available))
			m.registry.QuotaWaiting.WithLabelValues(name).Set(float64(stats.Waiting))
		}
	}

	for tier := 0; tier < m.manager.TierCount(); tier++ {
		stats, ok := m.manager.PoolStats(tier)
		if !ok {
			continue
		}

		m.logger.Info("pool usage",
			"tier", stats.Tier,
			"workers", stats.Workers,
			"active", stats.Active,
			"queued", stats.Queued,
			"submitted", stats.Submitted,
			"completed", stats.Completed)

		if m.registry != nil {
			pool := fmt.Sprintf("tier%d", stats.Tier)
			m.registry.WorkerPoolSize.WithLabelValues(pool).Set(float64(stats.Workers))
			m.registry.WorkerPoolActive.WithLabelValues(pool).Set(float64(stats.Active))
			m.registry.WorkerPoolQueued.WithLabelValues(pool).Set(float64(stats.Queued))
		}
	}
}
