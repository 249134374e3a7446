package benchmark

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/vnykmshr/gopar/pkg/quota"
	"github.com/vnykmshr/gopar/pkg/scheduling/executor"
	"github.com/vnykmshr/gopar/pkg/scheduling/workerpool"
)

// quietLogger drops routine records so benchmarks measure the component,
// not the log handler.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newBenchManager(b *testing.B, config executor.Config) *executor.Manager {
	b.Helper()

	config.Logger = quietLogger()
	config.HeartbeatInterval = -1
	config.BlockedWarnThreshold = -1

	manager, err := executor.New(config)
	if err != nil {
		b.Fatalf("failed to create executor: %v", err)
	}
	b.Cleanup(manager.Close)
	return manager
}

func noopTasks(n int) []workerpool.Task {
	tasks := make([]workerpool.Task, n)
	for i := range tasks {
		tasks[i] = workerpool.TaskFunc(func(context.Context) error { return nil })
	}
	return tasks
}

// BenchmarkBatchExecute measures end-to-end batch completion across batch sizes.
func BenchmarkBatchExecute(b *testing.B) {
	batchSizes := []int{8, 64, 512}

	for _, size := range batchSizes {
		b.Run(batchLabel(size), func(b *testing.B) {
			manager := newBenchManager(b, executor.Config{MaxThreads: 4})
			tasks := noopTasks(size)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := manager.Execute(ctx, tasks); err != nil {
					b.Fatalf("batch failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkBatchExecuteThreads measures one batch size across thread budgets.
func BenchmarkBatchExecuteThreads(b *testing.B) {
	threadCounts := []int{2, 4, 8}

	for _, threads := range threadCounts {
		b.Run(threadLabel(threads), func(b *testing.B) {
			manager := newBenchManager(b, executor.Config{MaxThreads: threads})
			tasks := noopTasks(64)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := manager.Execute(ctx, tasks); err != nil {
					b.Fatalf("batch failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkNestedBatch measures the overhead of a two-level batch tree
// against the flat equivalent.
func BenchmarkNestedBatch(b *testing.B) {
	b.Run("flat", func(b *testing.B) {
		manager := newBenchManager(b, executor.Config{MaxThreads: 4})
		tasks := noopTasks(8)
		ctx := context.Background()

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := manager.Execute(ctx, tasks); err != nil {
				b.Fatalf("batch failed: %v", err)
			}
		}
	})

	b.Run("nested", func(b *testing.B) {
		manager := newBenchManager(b, executor.Config{MaxThreads: 4})
		leaves := noopTasks(8)
		parent := []workerpool.Task{workerpool.TaskFunc(func(ctx context.Context) error {
			return manager.ExecuteTier(ctx, leaves, 1)
		})}
		ctx := context.Background()

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := manager.Execute(ctx, parent); err != nil {
				b.Fatalf("batch failed: %v", err)
			}
		}
	})
}

// BenchmarkBatchUnderQuota measures batches whose tasks contend for a
// narrow shared quota.
func BenchmarkBatchUnderQuota(b *testing.B) {
	manager := newBenchManager(b, executor.Config{
		MaxThreads: 4,
		Limits:     map[string]int{"db-connections": 2},
	})
	ctx := context.Background()

	tasks := make([]workerpool.Task, 16)
	for i := range tasks {
		tasks[i] = workerpool.TaskFunc(func(ctx context.Context) error {
			unit := quota.NewUnit("db-connections", 1)
			if err := manager.Acquire(ctx, unit); err != nil {
				return err
			}
			manager.Release(unit)
			return nil
		})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := manager.Execute(ctx, tasks); err != nil {
			b.Fatalf("batch failed: %v", err)
		}
	}
}

// BenchmarkConcurrentBatches measures many goroutines issuing small
// batches against one manager.
func BenchmarkConcurrentBatches(b *testing.B) {
	manager := newBenchManager(b, executor.Config{MaxThreads: 8})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		tasks := noopTasks(4)
		for pb.Next() {
			_ = manager.Execute(ctx, tasks)
		}
	})
}

// BenchmarkManagerLifecycle measures construction plus drain-on-close.
func BenchmarkManagerLifecycle(b *testing.B) {
	logger := quietLogger()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		manager, err := executor.New(executor.Config{
			MaxThreads:        2,
			HeartbeatInterval: -1,
			Logger:            logger,
		})
		if err != nil {
			b.Fatalf("failed to create executor: %v", err)
		}

		_ = manager.Execute(context.Background(), noopTasks(10))
		manager.Close()
	}
}

// batchLabel returns a readable label for batch sizes.
func batchLabel(size int) string {
	if size >= 1000 {
		return strconv.Itoa(size/1000) + "k"
	}
	return strconv.Itoa(size) + "tasks"
}

// threadLabel returns a readable label for thread budgets.
func threadLabel(threads int) string {
	return strconv.Itoa(threads) + "threads"
}
