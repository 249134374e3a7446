package quota

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopar/pkg/metrics"
)

// Example_metricsBasic demonstrates metrics collection for a quota table.
func Example_metricsBasic() {
	// Create a separate registry to avoid conflicts
	customRegistry := prometheus.NewRegistry()
	metricsConfig := metrics.Config{
		Enabled:  true,
		Registry: customRegistry,
	}

	quotas, err := NewTableWithMetrics(TableConfig{
		Limits: map[string]int{Memory: 100},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, metricsConfig)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	unit := NewUnit(Memory, 40)

	if err := quotas.Acquire(ctx, unit); err != nil {
		panic(err)
	}
	fmt.Println("acquired:", unit)

	if quotas.TryAcquire(NewUnit(Memory, 80)) {
		fmt.Println("should not fit")
	} else {
		fmt.Println("denied: 80 memory")
	}

	quotas.Release(unit)
	fmt.Println("released:", unit)

	stats, _ := quotas.Stats(Memory)
	fmt.Printf("available: %d/%d\n", stats.Available, stats.Capacity)

	// Output:
	// acquired: 40 memory
	// denied: 80 memory
	// released: 40 memory
	// available: 100/100
}

// Example_metricsLifecycle demonstrates runtime enable/disable of metrics.
func Example_metricsLifecycle() {
	customRegistry := prometheus.NewRegistry()

	table, err := NewTableWithMetrics(TableConfig{
		Limits: map[string]int{"conn": 5},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, metrics.Config{Enabled: true, Registry: customRegistry})
	if err != nil {
		panic(err)
	}

	mt := table.(*MetricsTable)
	fmt.Printf("metrics enabled: %v\n", mt.MetricsEnabled())

	mt.DisableMetrics()
	fmt.Printf("metrics enabled: %v\n", mt.MetricsEnabled())

	// The table keeps working with metrics off
	fmt.Println(table.TryAcquire(NewUnit("conn", 1)))

	// Output:
	// metrics enabled: true
	// metrics enabled: false
	// true
}
