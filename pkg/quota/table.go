package quota

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vnykmshr/gopar/pkg/common/validation"
)

// Table manages permit pools for named resources. Resources with no
// configured pool are unlimited: acquisitions succeed immediately and
// releases are ignored.
type Table interface {
	// Acquire blocks until the unit's amount can be taken from the pool
	// named by the unit's key. It returns an error only if the context
	// is canceled or its deadline exceeded. Unknown keys succeed
	// immediately.
	Acquire(ctx context.Context, unit Unit) error

	// TryAcquire attempts to take the unit without blocking, returning
	// true on success. Unknown keys always succeed.
	TryAcquire(unit Unit) bool

	// Release returns the unit's amount to its pool. Releases may push
	// availability above the configured capacity. Unknown keys are
	// ignored.
	Release(unit Unit)

	// SetLimit configures or replaces the pool for a resource with a
	// fresh pool of the given capacity. Replacement is wholesale:
	// accounting of the previous pool is discarded, goroutines still
	// blocked on it stay blocked until their context is canceled, and
	// releases after the swap credit the new pool.
	SetLimit(name string, amount int) error

	// ApplyLimits calls SetLimit for every entry of limits.
	ApplyLimits(limits map[string]int) error

	// Configured reports whether the resource currently has a pool.
	Configured(name string) bool

	// Stats returns the current pool statistics for one resource.
	Stats(name string) (PoolStats, bool)

	// Snapshot returns the current statistics of every configured pool.
	Snapshot() map[string]PoolStats
}

// PoolStats is a point-in-time view of one permit pool.
type PoolStats struct {
	Capacity  int
	Available int
	Waiting   int
}

// TableConfig holds configuration options for creating a quota Table.
type TableConfig struct {
	// Limits maps resource names to their initial permit capacities.
	// May be nil; pools can be added later with SetLimit.
	Limits map[string]int

	// Logger receives quota events. If nil, slog.Default() is used.
	Logger *slog.Logger

	// BlockedWarnThreshold is the acquire wait duration above which a
	// warning is logged. Zero means the 1s default; negative disables
	// the warnings.
	BlockedWarnThreshold time.Duration
}

// DefaultBlockedWarnThreshold is the acquire wait duration after which
// a blocked acquisition is logged when no threshold is configured.
const DefaultBlockedWarnThreshold = time.Second

type table struct {
	mu    sync.RWMutex
	pools map[string]*Permits

	logger        *slog.Logger
	warnThreshold time.Duration
	warnLimit     *rate.Limiter
}

// NewTable creates a quota table with the configured limits.
func NewTable(config TableConfig) (Table, error) {
	t := &table{
		pools:         make(map[string]*Permits),
		logger:        config.Logger,
		warnThreshold: resolveWarnThreshold(config.BlockedWarnThreshold),
		// One blocked-acquisition warning per interval keeps a
		// saturated quota from flooding the log.
		warnLimit: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if err := t.ApplyLimits(config.Limits); err != nil {
		return nil, err
	}
	return t, nil
}

func resolveWarnThreshold(configured time.Duration) time.Duration {
	if configured == 0 {
		return DefaultBlockedWarnThreshold
	}
	return configured
}

func (t *table) Acquire(ctx context.Context, unit Unit) error {
	if unit.Amount <= 0 {
		return nil
	}

	t.mu.RLock()
	p, ok := t.pools[unit.Key]
	t.mu.RUnlock()

	if !ok {
		t.logger.Info("no quota configured, treating as unlimited",
			"resource", unit.Key, "amount", unit.Amount)
		return nil
	}

	// The pool reference is held outside the table lock, so a
	// concurrent SetLimit can swap in a new pool while we block here.
	// The acquisition then completes against the pool that was current
	// when it started.
	start := time.Now()
	if err := p.Acquire(ctx, unit.Amount); err != nil {
		return err
	}

	if t.warnThreshold >= 0 {
		if wait := time.Since(start); wait > t.warnThreshold && t.warnLimit.Allow() {
			t.logger.Warn("quota acquisition blocked",
				"unit", unit.String(), "wait", wait)
		}
	}
	return nil
}

func (t *table) TryAcquire(unit Unit) bool {
	if unit.Amount <= 0 {
		return true
	}

	t.mu.RLock()
	p, ok := t.pools[unit.Key]
	t.mu.RUnlock()

	if !ok {
		return true
	}
	return p.TryAcquire(unit.Amount)
}

func (t *table) Release(unit Unit) {
	if unit.Amount <= 0 {
		return
	}

	t.mu.RLock()
	p, ok := t.pools[unit.Key]
	t.mu.RUnlock()

	if !ok {
		t.logger.Debug("no quota configured, release ignored",
			"resource", unit.Key, "amount", unit.Amount)
		return
	}
	p.Release(unit.Amount)
}

func (t *table) SetLimit(name string, amount int) error {
	if err := validation.ValidateNotEmpty("quota", "name", name); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("quota", "amount", amount); err != nil {
		return err
	}

	t.mu.Lock()
	old, existed := t.pools[name]
	t.pools[name] = NewPermits(amount)
	t.mu.Unlock()

	if existed {
		t.logger.Info("quota capacity replaced",
			"resource", name, "old", old.Capacity(), "new", amount)
	} else {
		t.logger.Info("quota configured",
			"resource", name, "capacity", amount)
	}
	return nil
}

func (t *table) ApplyLimits(limits map[string]int) error {
	names := make([]string, 0, len(limits))
	for name := range limits {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := t.SetLimit(name, limits[name]); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) Configured(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.pools[name]
	return ok
}

func (t *table) Stats(name string) (PoolStats, bool) {
	t.mu.RLock()
	p, ok := t.pools[name]
	t.mu.RUnlock()

	if !ok {
		return PoolStats{}, false
	}
	return PoolStats{
		Capacity:  p.Capacity(),
		Available: p.Available(),
		Waiting:   p.Waiting(),
	}, true
}

func (t *table) Snapshot() map[string]PoolStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]PoolStats, len(t.pools))
	for name, p := range t.pools {
		snapshot[name] = PoolStats{
			Capacity:  p.Capacity(),
			Available: p.Available(),
			Waiting:   p.Waiting(),
		}
	}
	return snapshot
}
