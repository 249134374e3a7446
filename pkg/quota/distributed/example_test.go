package distributed

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/gopar/pkg/quota"
)

// Example_basicUsage demonstrates cluster-wide resource quotas.
func Example_basicUsage() {
	// Create a Redis client (in real usage, use your Redis connection)
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use a test database
	})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Println("Redis not available, skipping example")
		return
	}

	table, err := New(Config{
		Redis:     rdb,
		KeyPrefix: "gopar:example",
		Limits:    map[string]int{"gpus": 8},
	})
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}
	defer func() { _ = table.Close() }()

	// Every instance sharing this prefix draws from the same 8 gpus.
	unit := quota.NewUnit("gpus", 2)
	if err := table.Acquire(ctx, unit); err != nil {
		log.Fatalf("Acquire failed: %v", err)
	}
	fmt.Println("Holding 2 gpus across the cluster")

	if stats, ok, err := table.Stats(ctx, "gpus"); err == nil && ok {
		fmt.Printf("Capacity %d, available %d\n", stats.Capacity, stats.Available)
	}

	_ = table.Release(ctx, unit)

	// Clean up
	_ = table.Reset(ctx)
}

// Example_multipleInstances demonstrates instances sharing one pool.
func Example_multipleInstances() {
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Println("Redis not available, skipping example")
		return
	}

	base := Config{
		Redis:     rdb,
		KeyPrefix: "gopar:example:shared",
		Limits:    map[string]int{"licenses": 3},
	}

	first := base
	first.InstanceID = "server-1"
	tableA, err := New(first)
	if err != nil {
		log.Fatalf("Failed to create first table: %v", err)
	}
	defer func() { _ = tableA.Close() }()

	second := base
	second.InstanceID = "server-2"
	tableB, err := New(second)
	if err != nil {
		log.Fatalf("Failed to create second table: %v", err)
	}
	defer func() { _ = tableB.Close() }()

	// Both instances draw from the same pool of 3 licenses.
	ok, _ := tableA.TryAcquire(ctx, quota.NewUnit("licenses", 2))
	fmt.Printf("First instance took 2 licenses: %v\n", ok)

	ok, _ = tableB.TryAcquire(ctx, quota.NewUnit("licenses", 2))
	fmt.Printf("Second instance took 2 more: %v\n", ok)

	if instances, err := tableA.Instances(ctx); err == nil {
		fmt.Printf("Registered instances: %d\n", len(instances))
	}

	_ = tableA.Reset(ctx)
}

// Example_fallback demonstrates degrading to a local table during a
// Redis outage.
func Example_fallback() {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer func() { _ = rdb.Close() }()

	// The local limits are this instance's share of the cluster-wide
	// capacity.
	local, err := quota.NewTable(quota.TableConfig{
		Limits: map[string]int{"gpus": 2},
	})
	if err != nil {
		log.Fatalf("Failed to create local table: %v", err)
	}

	table, err := New(Config{
		Redis:           rdb,
		KeyPrefix:       "gopar:example:fallback",
		Limits:          map[string]int{"gpus": 8},
		FallbackToLocal: true,
		Local:           local,
	})
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}
	defer func() { _ = table.Close() }()

	// Acquires keep working against the local share while Redis is
	// unreachable, and resume shared accounting when it returns.
	ctx := context.Background()
	unit := quota.NewUnit("gpus", 1)
	if err := table.Acquire(ctx, unit); err == nil {
		fmt.Println("Acquired 1 gpu")
		_ = table.Release(ctx, unit)
	}
}
