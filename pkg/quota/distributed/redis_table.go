package distributed

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/common/validation"
	"github.com/vnykmshr/gopar/pkg/quota"
	"golang.org/x/time/rate"
)

// redisTable implements Table on Redis hashes keyed by resource name,
// with Lua scripts keeping each acquire and release atomic.
type redisTable struct {
	config Config
	keys   tableKeys
	seeded int32

	fallbackWarn *rate.Limiter

	acquireScript  *redis.Script
	releaseScript  *redis.Script
	setLimitScript *redis.Script
}

// newRedisTable assembles a table; the caller seeds it via initialize.
func newRedisTable(config Config) *redisTable {
	return &redisTable{
		config: config,
		keys:   newTableKeys(config.KeyPrefix),
		// One Redis-outage warning per interval keeps a long outage
		// from flooding the log.
		fallbackWarn: rate.NewLimiter(rate.Every(30*time.Second), 1),

		acquireScript:  redis.NewScript(luaAcquire),
		releaseScript:  redis.NewScript(luaRelease),
		setLimitScript: redis.NewScript(luaSetLimit),
	}
}

// initialize seeds configured limits with HSETNX so only the first
// instance to arrive writes them, registers this instance, and sets the
// key TTLs.
func (t *redisTable) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	pipe := t.config.Redis.Pipeline()
	for name, amount := range t.config.Limits {
		pipe.HSetNX(ctx, t.keys.limits, name, amount)
		pipe.HSetNX(ctx, t.keys.avail, name, amount)
	}
	pipe.SAdd(ctx, t.keys.instances, t.config.InstanceID)
	pipe.Expire(ctx, t.keys.limits, t.config.KeyTTL)
	pipe.Expire(ctx, t.keys.avail, t.config.KeyTTL)
	pipe.Expire(ctx, t.keys.waiting, t.config.KeyTTL)
	pipe.Expire(ctx, t.keys.instances, t.config.KeyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return gperrors.NewOperationError("distributed", "initialize", err)
	}

	atomic.StoreInt32(&t.seeded, 1)
	return nil
}

// ensureSeeded retries initialization after a construction-time Redis
// outage. Errors are left for the operation that follows to surface.
func (t *redisTable) ensureSeeded(ctx context.Context) {
	if atomic.LoadInt32(&t.seeded) == 1 {
		return
	}
	_ = t.initialize(ctx)
}

func (t *redisTable) Acquire(ctx context.Context, unit quota.Unit) error {
	if unit.Amount <= 0 {
		return nil
	}
	t.ensureSeeded(ctx)

	acquired, configured, err := t.tryOnce(ctx, unit)
	if err != nil {
		if !t.config.FallbackToLocal {
			return err
		}
		t.warnFallback(err)
		return t.config.Local.Acquire(ctx, unit)
	}
	if !configured {
		t.config.Logger.Info("no quota configured, treating as unlimited",
			"resource", unit.Key, "amount", unit.Amount)
		return nil
	}
	if acquired {
		return nil
	}

	return t.waitForPermits(ctx, unit)
}

// waitForPermits polls the acquire script until the request fits. Redis
// offers no cross-process wait primitive, so blocked acquisitions retry
// at PollInterval; WaitTimeout bounds the wait independently of ctx.
func (t *redisTable) waitForPermits(ctx context.Context, unit quota.Unit) error {
	t.addWaiter(unit.Key, 1)
	defer t.addWaiter(unit.Key, -1)

	var deadline <-chan time.Time
	if t.config.WaitTimeout > 0 {
		timer := time.NewTimer(t.config.WaitTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("wait for %s exceeded %v: %w",
				unit, t.config.WaitTimeout, gperrors.ErrTimeout)
		case <-ticker.C:
			acquired, _, err := t.tryOnce(ctx, unit)
			if err != nil {
				if !t.config.FallbackToLocal {
					return err
				}
				t.warnFallback(err)
				return t.config.Local.Acquire(ctx, unit)
			}
			if acquired {
				return nil
			}
		}
	}
}

// tryOnce runs one atomic acquire attempt against Redis.
func (t *redisTable) tryOnce(ctx context.Context, unit quota.Unit) (acquired, configured bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	result, err := t.acquireScript.Run(ctx, t.config.Redis,
		[]string{t.keys.limits, t.keys.avail, t.keys.waiting},
		unit.Key, unit.Amount, t.ttlSeconds()).Result()
	if err != nil {
		return false, false, gperrors.NewOperationError("distributed", "acquire", err)
	}

	status, ok := result.(int64)
	if !ok {
		return false, false, gperrors.NewOperationError("distributed", "acquire",
			fmt.Errorf("unexpected script result %v", result))
	}

	switch status {
	case 1:
		return true, true, nil
	case 0:
		return false, true, nil
	default:
		// Unconfigured resources are unlimited.
		return true, false, nil
	}
}

func (t *redisTable) TryAcquire(ctx context.Context, unit quota.Unit) (bool, error) {
	if unit.Amount <= 0 {
		return true, nil
	}
	t.ensureSeeded(ctx)

	acquired, configured, err := t.tryOnce(ctx, unit)
	if err != nil {
		if !t.config.FallbackToLocal {
			return false, err
		}
		t.warnFallback(err)
		return t.config.Local.TryAcquire(unit), nil
	}
	if !configured {
		t.config.Logger.Info("no quota configured, treating as unlimited",
			"resource", unit.Key, "amount", unit.Amount)
		return true, nil
	}
	return acquired, nil
}

func (t *redisTable) Release(ctx context.Context, unit quota.Unit) error {
	if unit.Amount <= 0 {
		return nil
	}
	t.ensureSeeded(ctx)

	opCtx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	result, err := t.releaseScript.Run(opCtx, t.config.Redis,
		[]string{t.keys.limits, t.keys.avail, t.keys.waiting},
		unit.Key, unit.Amount, t.ttlSeconds()).Result()
	if err != nil {
		wrapped := gperrors.NewOperationError("distributed", "release", err)
		if !t.config.FallbackToLocal {
			return wrapped
		}
		t.warnFallback(wrapped)
		t.config.Local.Release(unit)
		return nil
	}

	if status, ok := result.(int64); ok && status < 0 {
		t.config.Logger.Debug("no quota configured, release ignored",
			"resource", unit.Key, "amount", unit.Amount)
	}
	return nil
}

func (t *redisTable) SetLimit(ctx context.Context, name string, amount int) error {
	if err := validation.ValidateNotEmpty("quota", "name", name); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("quota", "amount", amount); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	result, err := t.setLimitScript.Run(opCtx, t.config.Redis,
		[]string{t.keys.limits, t.keys.avail, t.keys.waiting},
		name, amount, t.ttlSeconds()).Result()
	if err != nil {
		return gperrors.NewOperationError("distributed", "set_limit", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return gperrors.NewOperationError("distributed", "set_limit",
			fmt.Errorf("unexpected script result %v", result))
	}

	if existed, _ := resultSlice[0].(int64); existed == 1 {
		old, _ := resultSlice[1].(string)
		t.config.Logger.Info("quota capacity replaced",
			"resource", name, "old", old, "new", amount)
	} else {
		t.config.Logger.Info("quota configured",
			"resource", name, "capacity", amount)
	}
	return nil
}

func (t *redisTable) ApplyLimits(ctx context.Context, limits map[string]int) error {
	names := make([]string, 0, len(limits))
	for name := range limits {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := t.SetLimit(ctx, name, limits[name]); err != nil {
			return err
		}
	}
	return nil
}

func (t *redisTable) Stats(ctx context.Context, name string) (quota.PoolStats, bool, error) {
	t.ensureSeeded(ctx)

	ctx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	pipe := t.config.Redis.Pipeline()
	capCmd := pipe.HGet(ctx, t.keys.limits, name)
	availCmd := pipe.HGet(ctx, t.keys.avail, name)
	waitCmd := pipe.HGet(ctx, t.keys.waiting, name)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return quota.PoolStats{}, false, gperrors.NewOperationError("distributed", "stats", err)
	}

	if capCmd.Err() == redis.Nil {
		return quota.PoolStats{}, false, nil
	}

	capacity, _ := strconv.Atoi(capCmd.Val())
	available, _ := strconv.Atoi(availCmd.Val())
	waiting, _ := strconv.Atoi(waitCmd.Val())

	return quota.PoolStats{
		Capacity:  capacity,
		Available: available,
		Waiting:   waiting,
	}, true, nil
}

func (t *redisTable) Snapshot(ctx context.Context) (map[string]quota.PoolStats, error) {
	t.ensureSeeded(ctx)

	ctx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	pipe := t.config.Redis.Pipeline()
	limitsCmd := pipe.HGetAll(ctx, t.keys.limits)
	availCmd := pipe.HGetAll(ctx, t.keys.avail)
	waitCmd := pipe.HGetAll(ctx, t.keys.waiting)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, gperrors.NewOperationError("distributed", "snapshot", err)
	}

	avail := availCmd.Val()
	waiting := waitCmd.Val()

	snapshot := make(map[string]quota.PoolStats, len(limitsCmd.Val()))
	for name, capStr := range limitsCmd.Val() {
		capacity, _ := strconv.Atoi(capStr)
		available, _ := strconv.Atoi(avail[name])
		waiters, _ := strconv.Atoi(waiting[name])
		snapshot[name] = quota.PoolStats{
			Capacity:  capacity,
			Available: available,
			Waiting:   waiters,
		}
	}
	return snapshot, nil
}

func (t *redisTable) Instances(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	instances, err := t.config.Redis.SMembers(ctx, t.keys.instances).Result()
	if err != nil {
		return nil, gperrors.NewOperationError("distributed", "instances", err)
	}
	return instances, nil
}

func (t *redisTable) Reset(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, t.config.RedisTimeout)
	defer cancel()

	err := t.config.Redis.Del(opCtx,
		t.keys.limits, t.keys.avail, t.keys.waiting, t.keys.instances).Err()
	if err != nil {
		return gperrors.NewOperationError("distributed", "reset", err)
	}

	atomic.StoreInt32(&t.seeded, 0)
	return t.initialize(ctx)
}

func (t *redisTable) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.RedisTimeout)
	defer cancel()

	if err := t.config.Redis.SRem(ctx, t.keys.instances, t.config.InstanceID).Err(); err != nil {
		return gperrors.NewOperationError("distributed", "close", err)
	}
	return nil
}

// addWaiter tracks blocked acquisitions in the shared waiting hash. It
// uses a fresh context because the caller's may already be canceled
// when the deferred decrement runs.
func (t *redisTable) addWaiter(name string, delta int) {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.RedisTimeout)
	defer cancel()

	if err := t.config.Redis.HIncrBy(ctx, t.keys.waiting, name, int64(delta)).Err(); err != nil {
		t.config.Logger.Debug("waiter count update failed",
			"resource", name, "error", err)
	}
}

func (t *redisTable) warnFallback(cause error) {
	if t.fallbackWarn.Allow() {
		t.config.Logger.Warn("redis unavailable, falling back to local quota",
			"error", cause)
	}
}

// ttlSeconds converts KeyTTL for EXPIRE arguments; sub-second TTLs
// would otherwise round to 0 and delete the keys outright.
func (t *redisTable) ttlSeconds() int {
	secs := int(t.config.KeyTTL / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Lua scripts for atomic operations
const luaAcquire = `
-- KEYS[1]: limits hash
-- KEYS[2]: available hash
-- KEYS[3]: waiting hash
-- ARGV[1]: resource name
-- ARGV[2]: amount requested
-- ARGV[3]: key TTL seconds
--
-- Returns 1 when the full amount was taken, 0 when availability is
-- insufficient (nothing is taken), -1 when the resource is unconfigured.

local name = ARGV[1]
local amount = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local capacity = redis.call('HGET', KEYS[1], name)
if not capacity then
    return -1
end

redis.call('EXPIRE', KEYS[1], ttl)
redis.call('EXPIRE', KEYS[2], ttl)
redis.call('EXPIRE', KEYS[3], ttl)

local available = tonumber(redis.call('HGET', KEYS[2], name) or capacity)
if available < amount then
    return 0
end

redis.call('HSET', KEYS[2], name, available - amount)
return 1
`

const luaRelease = `
-- KEYS[1]: limits hash
-- KEYS[2]: available hash
-- KEYS[3]: waiting hash
-- ARGV[1]: resource name
-- ARGV[2]: amount released
-- ARGV[3]: key TTL seconds
--
-- Returns the new availability, or -1 when the resource is
-- unconfigured. Releases are not clamped, so availability may exceed
-- the configured capacity.

local name = ARGV[1]
local amount = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

if not redis.call('HGET', KEYS[1], name) then
    return -1
end

redis.call('EXPIRE', KEYS[1], ttl)
redis.call('EXPIRE', KEYS[2], ttl)
redis.call('EXPIRE', KEYS[3], ttl)

return redis.call('HINCRBY', KEYS[2], name, amount)
`

const luaSetLimit = `
-- KEYS[1]: limits hash
-- KEYS[2]: available hash
-- KEYS[3]: waiting hash
-- ARGV[1]: resource name
-- ARGV[2]: new capacity
-- ARGV[3]: key TTL seconds
--
-- Wholesale replacement: availability resets to the new capacity and
-- prior accounting is discarded. Returns {existed, old capacity}.

local old = redis.call('HGET', KEYS[1], ARGV[1])

redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
redis.call('EXPIRE', KEYS[2], ARGV[3])
redis.call('EXPIRE', KEYS[3], ARGV[3])

if old then
    return {1, old}
end
return {0, ''}
`
