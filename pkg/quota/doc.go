/*
Package quota provides counting permit pools for named resources.

A quota table maps resource names like "threads" or "memory" to permit
pools. Tasks acquire an amount of a resource before a protected section
and release the same amount afterwards; acquisitions block until the
full amount is available.

Basic usage:

	quotas, err := quota.NewTable(quota.TableConfig{
		Limits: map[string]int{quota.Memory: 100},
	})
	if err != nil {
		log.Fatal(err)
	}

	unit := quota.NewUnit(quota.Memory, 60)
	if err := quotas.Acquire(ctx, unit); err != nil {
		return err // context canceled while waiting
	}
	defer quotas.Release(unit)

Acquisition Semantics:

Acquire is all-or-nothing: a request for 60 permits either takes all 60
or blocks. Waiting is event-driven; blocked goroutines are woken by
releases, never by polling. A request larger than the pool's capacity
only completes once releases push availability past the requested
amount.

Release Semantics:

Release never fails and never blocks. Releasing more than was acquired
is legal and pushes availability above the configured capacity; the
pool behaves as a counter, not a ledger of who holds what. Releases for
resources with no configured pool are ignored.

Unknown Resources:

A resource with no configured pool is unlimited. Acquisitions for it
succeed immediately and are logged, so a misspelled resource name shows
up in the log rather than as a mysterious lack of throttling.

Capacity Replacement:

SetLimit replaces a resource's pool wholesale with a fresh one at the
new capacity. Permits held against the old pool are not carried over:
their releases credit the new pool, which can inflate its availability,
and goroutines still blocked on the old pool stay blocked until their
context is canceled. Replace capacities at quiet points when exact
accounting matters.

Context Integration:

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := quotas.Acquire(ctx, unit); err != nil {
		// context.Canceled or context.DeadlineExceeded
		return err
	}
	defer quotas.Release(unit)

A canceled waiter consumes nothing; its pending request is discarded.

Observability:

NewTableWithMetrics wraps a table with Prometheus instrumentation:
per-resource capacity, availability and waiter gauges, acquire and
release counters, and a wait-duration histogram. Acquisitions that wait
longer than TableConfig.BlockedWarnThreshold are additionally counted
and logged (warnings are rate limited).

Thread Safety:

All operations are safe for concurrent use. The table guards its name
to pool mapping with a read-write mutex; each pool synchronizes its own
permit accounting.
*/
package quota
