package executor

import (
	"fmt"

	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/scheduling/workerpool"
)

// TierStats describes the state of one tier's pool.
type TierStats struct {
	// Tier is the nesting depth this pool serves.
	Tier int

	// Workers is the pool's worker count.
	Workers int

	// Active is the number of workers currently executing tasks.
	Active int

	// Queued is the number of tasks waiting in the pool's queue.
	Queued int

	// Submitted and Completed are lifetime task totals.
	Submitted int64
	Completed int64
}

// TierCount returns the number of tier pools created so far.
func (m *Manager) TierCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pools)
}

// PoolStats returns the state of the pool at the given tier. The second
// return value is false when no pool exists at that tier yet.
func (m *Manager) PoolStats(tier int) (TierStats, bool) {
	m.mu.Lock()
	if tier < 0 || tier >= len(m.pools) {
		m.mu.Unlock()
		return TierStats{}, false
	}
	pool := m.pools[tier]
	m.mu.Unlock()

	return TierStats{
		Tier:      tier,
		Workers:   pool.Size(),
		Active:    pool.ActiveWorkers(),
		Queued:    pool.QueueSize(),
		Submitted: pool.TotalSubmitted(),
		Completed: pool.TotalCompleted(),
	}, true
}

// ensurePool returns the pool serving the given tier, creating it and
// any shallower missing tiers on first use. Tiers are never removed;
// the list only grows.
func (m *Manager) ensurePool(tier int) (workerpool.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("cannot execute batch: %w", gperrors.ErrClosed)
	}

	for len(m.pools) <= tier {
		next := len(m.pools)
		pool, err := m.newTierPool(next)
		if err != nil {
			return nil, err
		}
		m.pools = append(m.pools, pool)
		m.logger.Info("tier pool created", "tier", next, "workers", pool.Size())
	}

	return m.pools[tier], nil
}

// newTierPool builds the pool for one tier per the sizing policy.
func (m *Manager) newTierPool(tier int) (workerpool.Pool, error) {
	poolConfig := workerpool.Config{
		WorkerCount: m.config.tierSize(tier),
		Name:        fmt.Sprintf("tier%d", tier),
		Logger:      m.config.Logger,
	}

	if m.registry != nil {
		return workerpool.NewWithConfigAndRegistry(poolConfig, poolConfig.Name, m.registry)
	}
	return workerpool.NewWithConfigSafe(poolConfig)
}
