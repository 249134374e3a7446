package executor

import (
	"log/slog"
	"runtime"
	"time"

	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/metrics"
	"github.com/vnykmshr/gopar/pkg/quota"
)

// DefaultHeartbeatInterval is how often a waiting Execute call logs
// batch progress when no interval is configured.
const DefaultHeartbeatInterval = 5 * time.Second

// Config holds configuration options for creating a Manager.
type Config struct {
	// MaxThreads is the baseline thread budget. It sets the capacity of
	// the threads quota and drives the tier pool sizing policy.
	// Defaults to runtime.NumCPU().
	MaxThreads int

	// MaxMemoryMB is the user-supplied memory budget in megabytes.
	// Zero means unset: no memory quota is created and memory
	// acquisitions are unlimited.
	MaxMemoryMB int

	// EffectiveMaxMemoryMB is the resolved memory budget, typically
	// derived from the host. When both memory fields are set, the
	// effective value wins.
	EffectiveMaxMemoryMB int

	// Limits holds additional named quota capacities applied at
	// construction, e.g. {"db-connections": 10}.
	Limits map[string]int

	// Tier0PoolSize overrides the sizing policy for the tier 0 pool.
	// Zero selects the default of 2*MaxThreads.
	Tier0PoolSize int

	// NestedPoolSize overrides the sizing policy for pools at tier 1
	// and deeper. Zero selects the default of MaxThreads+1.
	NestedPoolSize int

	// HeartbeatInterval is how often a waiting Execute call logs batch
	// progress. Zero selects DefaultHeartbeatInterval; a negative value
	// disables the heartbeat.
	HeartbeatInterval time.Duration

	// BlockedWarnThreshold is the acquire wait duration above which the
	// quota table logs a warning. Zero selects the table default; a
	// negative value disables the warning.
	BlockedWarnThreshold time.Duration

	// Logger receives executor events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics configures Prometheus collection for the quota table,
	// the tier pools, and batch execution.
	Metrics metrics.Config
}

// resolveConfig validates a Config and fills in defaults.
func resolveConfig(config Config) (Config, error) {
	if config.MaxThreads < 0 {
		return Config{}, gperrors.NewValidationError("executor", "maxThreads", config.MaxThreads, "cannot be negative").
			WithHint("use 0 to default to runtime.NumCPU()")
	}
	if config.MaxMemoryMB < 0 {
		return Config{}, gperrors.NewValidationError("executor", "maxMemoryMB", config.MaxMemoryMB, "cannot be negative").
			WithHint("use 0 to leave memory unlimited")
	}
	if config.EffectiveMaxMemoryMB < 0 {
		return Config{}, gperrors.NewValidationError("executor", "effectiveMaxMemoryMB", config.EffectiveMaxMemoryMB, "cannot be negative").
			WithHint("use 0 to fall back to maxMemoryMB")
	}
	if config.Tier0PoolSize < 0 {
		return Config{}, gperrors.NewValidationError("executor", "tier0PoolSize", config.Tier0PoolSize, "cannot be negative").
			WithHint("use 0 for the default of 2*maxThreads")
	}
	if config.NestedPoolSize < 0 {
		return Config{}, gperrors.NewValidationError("executor", "nestedPoolSize", config.NestedPoolSize, "cannot be negative").
			WithHint("use 0 for the default of maxThreads+1")
	}

	if config.MaxThreads == 0 {
		config.MaxThreads = runtime.NumCPU()
	}
	if config.HeartbeatInterval == 0 {
		config.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if config.BlockedWarnThreshold == 0 {
		config.BlockedWarnThreshold = quota.DefaultBlockedWarnThreshold
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	if len(config.Limits) > 0 {
		limits := make(map[string]int, len(config.Limits))
		for name, capacity := range config.Limits {
			limits[name] = capacity
		}
		config.Limits = limits
	}

	return config, nil
}

// memoryLimitMB resolves the memory quota capacity. The effective limit
// takes precedence over the user-supplied one; zero means no quota.
func (c Config) memoryLimitMB() int {
	if c.EffectiveMaxMemoryMB > 0 {
		return c.EffectiveMaxMemoryMB
	}
	return c.MaxMemoryMB
}

// tierSize resolves the worker count for a tier. Tier 0 is sized for
// the top-level workload; deeper tiers get MaxThreads+1 so that a full
// complement of parent tasks can each run a nested batch and there is
// still one worker left to make progress.
func (c Config) tierSize(tier int) int {
	if tier == 0 {
		if c.Tier0PoolSize > 0 {
			return c.Tier0PoolSize
		}
		return 2 * c.MaxThreads
	}
	if c.NestedPoolSize > 0 {
		return c.NestedPoolSize
	}
	return c.MaxThreads + 1
}
