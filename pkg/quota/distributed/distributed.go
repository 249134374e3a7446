package distributed

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/common/validation"
	"github.com/vnykmshr/gopar/pkg/quota"
)

// Table coordinates named counting quotas across application instances
// using Redis as the shared backend. Operations mirror quota.Table but
// every call takes a context because each involves a network round trip.
type Table interface {
	// Acquire blocks until the unit's amount can be taken from the
	// shared pool named by the unit's key, polling Redis at the
	// configured interval. It returns the context's error on
	// cancellation and ErrTimeout when WaitTimeout elapses first.
	// Unknown keys succeed immediately.
	Acquire(ctx context.Context, unit quota.Unit) error

	// TryAcquire attempts to take the unit with a single Redis round
	// trip, reporting whether it succeeded. Unknown keys always succeed.
	TryAcquire(ctx context.Context, unit quota.Unit) (bool, error)

	// Release returns the unit's amount to its shared pool. Releases may
	// push availability above the configured capacity. Unknown keys are
	// ignored.
	Release(ctx context.Context, unit quota.Unit) error

	// SetLimit configures or replaces the shared pool for a resource.
	// Replacement is wholesale for every instance: availability resets
	// to the new capacity and permits held against the old capacity are
	// discarded, so their later releases may push availability above it.
	SetLimit(ctx context.Context, name string, amount int) error

	// ApplyLimits calls SetLimit for every entry of limits.
	ApplyLimits(ctx context.Context, limits map[string]int) error

	// Stats returns the shared pool statistics for one resource.
	Stats(ctx context.Context, name string) (quota.PoolStats, bool, error)

	// Snapshot returns the statistics of every configured shared pool.
	Snapshot(ctx context.Context) (map[string]quota.PoolStats, error)

	// Instances lists the instance IDs currently registered against
	// this table.
	Instances(ctx context.Context) ([]string, error)

	// Reset deletes the table's Redis state and reseeds it from the
	// configured limits. Useful for tests.
	Reset(ctx context.Context) error

	// Close deregisters this instance. It does not close the Redis
	// client, which the caller owns.
	Close() error
}

// Config holds configuration for a distributed quota table.
type Config struct {
	// Redis client used for coordination. Required; the caller owns it.
	Redis redis.UniversalClient

	// KeyPrefix namespaces this table's Redis keys so independent
	// tables can share one Redis. Required.
	KeyPrefix string

	// InstanceID uniquely identifies this process in the instance
	// registration set. Empty means a generated UUID.
	InstanceID string

	// Limits seeds capacities for resources not yet configured in
	// Redis. Resources already configured by another instance keep
	// their shared state; use SetLimit to replace them deliberately.
	Limits map[string]int

	// FallbackToLocal redirects acquire, try-acquire, and release to
	// Local while Redis is unavailable. Requires Local.
	FallbackToLocal bool

	// Local serves operations during Redis outages when
	// FallbackToLocal is set.
	Local quota.Table

	// Logger receives quota events. If nil, slog.Default() is used.
	Logger *slog.Logger

	// RedisTimeout bounds each Redis round trip. Zero means 500ms.
	RedisTimeout time.Duration

	// PollInterval is the retry cadence while a blocked Acquire waits
	// for permits. Zero means 100ms.
	PollInterval time.Duration

	// WaitTimeout bounds how long a blocked Acquire polls before giving
	// up with ErrTimeout. Zero means 30s; negative removes the bound,
	// leaving the context in charge.
	WaitTimeout time.Duration

	// KeyTTL is how long the table's Redis keys live without any
	// activity, so abandoned tables expire. Zero means 1 hour.
	KeyTTL time.Duration
}

// DefaultConfig returns a distributed table configuration with defaults
// applied and a generated instance ID.
func DefaultConfig() Config {
	return applyConfigDefaults(Config{})
}

func applyConfigDefaults(config Config) Config {
	if config.InstanceID == "" {
		config.InstanceID = generateInstanceID()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = 500 * time.Millisecond
	}
	if config.PollInterval == 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	if config.WaitTimeout == 0 {
		config.WaitTimeout = 30 * time.Second
	}
	if config.KeyTTL == 0 {
		config.KeyTTL = time.Hour
	}
	return config
}

func validateConfig(config Config) error {
	if config.Redis == nil {
		return gperrors.NewValidationError("distributed", "redis", nil, "cannot be nil")
	}
	if err := validation.ValidateNotEmpty("distributed", "keyPrefix", config.KeyPrefix); err != nil {
		return err
	}
	if config.FallbackToLocal && config.Local == nil {
		return gperrors.NewValidationError("distributed", "local", nil,
			"cannot be nil when fallbackToLocal is set").
			WithHint("pass a quota.Table to serve operations during Redis outages")
	}
	for name, amount := range config.Limits {
		if err := validation.ValidateNotEmpty("distributed", "limits key", name); err != nil {
			return err
		}
		if err := validation.ValidateNonNegative("distributed", "limits["+name+"]", amount); err != nil {
			return err
		}
	}
	return nil
}

// New creates a distributed quota table and seeds any configured limits
// not yet present in Redis. When Redis is unreachable at construction
// the table is still returned if FallbackToLocal is set; seeding is
// retried on later operations.
func New(config Config) (Table, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	t := newRedisTable(config)
	if err := t.initialize(context.Background()); err != nil {
		if !config.FallbackToLocal {
			return nil, err
		}
		t.config.Logger.Warn("redis unavailable at construction, operations fall back to the local table",
			"error", err)
	}
	return t, nil
}
