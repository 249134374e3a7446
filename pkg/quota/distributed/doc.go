// Package distributed provides cross-instance resource quotas using
// Redis as the coordination backend.
//
// This package extends the quota package's named counting permits to a
// fleet of processes: every instance acquires from and releases to the
// same shared pools, so a cluster-wide limit such as "gpus: 8" holds
// across machines rather than per process.
//
// # Overview
//
// Each table stores its pools in a fixed set of Redis hashes keyed by
// resource name, and acquires and releases run as Lua scripts so the
// all-or-nothing semantics of quota.Permits survive concurrency from
// any number of instances. The local quota rules carry over unchanged:
//
//   - Acquire takes the full amount or nothing, blocking while
//     availability is insufficient.
//   - Release is never clamped, so availability may exceed capacity.
//   - SetLimit is a wholesale replacement visible to all instances:
//     availability resets to the new capacity and prior accounting is
//     discarded.
//   - Resources with no configured pool are unlimited.
//
// Redis offers no cross-process wait primitive, so a blocked Acquire
// polls at PollInterval until the request fits, the context ends, or
// WaitTimeout elapses (errors.ErrTimeout).
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	table, err := distributed.New(distributed.Config{
//		Redis:     rdb,
//		KeyPrefix: "gopar:prod",
//		Limits:    map[string]int{"gpus": 8, "licenses": 25},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer table.Close()
//
//	ctx := context.Background()
//	unit := quota.NewUnit("gpus", 2)
//	if err := table.Acquire(ctx, unit); err != nil {
//		return err
//	}
//	defer table.Release(context.Background(), unit)
//
// # Multiple Instances
//
// Instances sharing a KeyPrefix share pools. Limits given to New seed
// Redis only when absent, so late joiners adopt the in-flight state
// instead of resetting it; call SetLimit to replace a capacity
// deliberately. Each instance registers a unique ID (a generated UUID
// by default) in a registration set that Instances reports, and Close
// deregisters it.
//
// # Fallback Strategy
//
// With FallbackToLocal set, acquire, try-acquire, and release ride on a
// caller-supplied local quota.Table while Redis is unreachable:
//
//	local, _ := quota.NewTable(quota.TableConfig{
//		Limits: map[string]int{"gpus": 2},
//	})
//
//	table, err := distributed.New(distributed.Config{
//		Redis:           rdb,
//		KeyPrefix:       "gopar:prod",
//		FallbackToLocal: true,
//		Local:           local,
//	})
//
// The local limits are typically this instance's fair share of the
// cluster-wide capacity. Coordination degrades to per-instance limits
// during the outage and resumes transparently when Redis returns.
//
// # Key Layout
//
// All state for one table lives under its KeyPrefix:
//
//	<prefix>:limits     hash  resource name -> configured capacity
//	<prefix>:avail      hash  resource name -> available permits
//	<prefix>:waiting    hash  resource name -> blocked acquisitions
//	<prefix>:instances  set   registered instance IDs
//
// Keys expire KeyTTL after the last acquire, release, or limit write,
// so abandoned tables clean themselves up.
package distributed
