package workerpool_test

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/gopar/pkg/scheduling/workerpool"
)

// Example demonstrates basic usage of the worker pool
func Example() {
	// Create a worker pool with 3 workers
	pool := workerpool.New(3)
	defer func() { <-pool.Shutdown() }()

	// Submit a task and wait for its completion callback
	done := make(chan workerpool.Result, 1)
	task := workerpool.TaskFunc(func(ctx context.Context) error {
		fmt.Println("Task executed")
		return nil
	})

	if err := pool.SubmitWithDone(task, func(result workerpool.Result) {
		done <- result
	}); err != nil {
		log.Printf("Failed to submit task: %v", err)
		return
	}

	result := <-done
	if result.Error != nil {
		log.Printf("Task failed: %v", result.Error)
	}

	// Output: Task executed
}

// Example_burstSubmission demonstrates that submission never blocks,
// even when the backlog far exceeds the worker count
func Example_burstSubmission() {
	pool := workerpool.New(2)

	var completed int32
	const numTasks = 100

	// All submissions are accepted immediately; the two workers drain
	// the backlog behind them
	for i := 0; i < numTasks; i++ {
		task := workerpool.TaskFunc(func(ctx context.Context) error {
			return nil
		})

		if err := pool.SubmitWithDone(task, func(workerpool.Result) {
			atomic.AddInt32(&completed, 1)
		}); err != nil {
			log.Printf("Failed to submit task: %v", err)
		}
	}

	// Shutdown drains the queue before returning
	<-pool.Shutdown()

	fmt.Printf("Completed %d tasks\n", atomic.LoadInt32(&completed))

	// Output: Completed 100 tasks
}

// Example_completionCallbacks demonstrates event-driven coordination
// on task completion
func Example_completionCallbacks() {
	pool := workerpool.New(4)
	defer func() { <-pool.Shutdown() }()

	// A buffered channel collects results as tasks finish
	results := make(chan workerpool.Result, 3)

	for i := 0; i < 3; i++ {
		task := workerpool.TaskFunc(func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			return nil
		})

		pool.SubmitWithDone(task, func(result workerpool.Result) {
			results <- result
		})
	}

	succeeded := 0
	for i := 0; i < 3; i++ {
		result := <-results
		if result.Error == nil {
			succeeded++
		}
	}

	fmt.Printf("%d tasks succeeded\n", succeeded)

	// Output: 3 tasks succeeded
}

// Example_errorHandling demonstrates error handling and panic recovery
func Example_errorHandling() {
	// Configure pool with custom panic handler
	config := workerpool.Config{
		WorkerCount: 2,
		PanicHandler: func(task workerpool.Task, recovered interface{}) {
			// Custom panic handling
		},
	}

	pool := workerpool.NewWithConfig(config)
	defer func() { <-pool.Shutdown() }()

	// Submit various types of tasks
	tasks := []workerpool.Task{
		workerpool.TaskFunc(func(ctx context.Context) error {
			return nil // Success
		}),
		workerpool.TaskFunc(func(ctx context.Context) error {
			return fmt.Errorf("task error") // Error
		}),
		workerpool.TaskFunc(func(ctx context.Context) error {
			panic("task panic") // Panic
		}),
	}

	done := make(chan workerpool.Result, len(tasks))
	for _, task := range tasks {
		pool.SubmitWithDone(task, func(result workerpool.Result) {
			done <- result
		})
	}

	// Every task delivers a result, including the one that panicked
	for i := 0; i < len(tasks); i++ {
		<-done
	}

	fmt.Println("Error handling example completed")

	// Output: Error handling example completed
}

// Example_taskTimeout demonstrates bounding task execution time
func Example_taskTimeout() {
	config := workerpool.Config{
		WorkerCount: 2,
		TaskTimeout: 20 * time.Millisecond,
	}

	pool := workerpool.NewWithConfig(config)
	defer func() { <-pool.Shutdown() }()

	done := make(chan workerpool.Result, 1)
	task := workerpool.TaskFunc(func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	pool.SubmitWithDone(task, func(result workerpool.Result) {
		done <- result
	})

	result := <-done
	fmt.Printf("Task error: %v\n", result.Error)

	// Output: Task error: context deadline exceeded
}

// Example_gracefulShutdown demonstrates that shutdown drains the backlog
func Example_gracefulShutdown() {
	pool := workerpool.New(2)

	var completed int32
	for i := 0; i < 5; i++ {
		task := workerpool.TaskFunc(func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		})
		pool.SubmitWithDone(task, func(workerpool.Result) {
			atomic.AddInt32(&completed, 1)
		})
	}

	// Graceful shutdown waits for queued and running tasks to complete
	<-pool.Shutdown()

	fmt.Printf("Completed %d of 5 tasks before shutdown finished\n", atomic.LoadInt32(&completed))

	// Output: Completed 5 of 5 tasks before shutdown finished
}

// Example_monitoring demonstrates pool state inspection
func Example_monitoring() {
	pool := workerpool.New(4)

	var completed int32
	for i := 0; i < 8; i++ {
		task := workerpool.TaskFunc(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			return nil
		})
		pool.SubmitWithDone(task, func(workerpool.Result) {
			atomic.AddInt32(&completed, 1)
		})
	}

	<-pool.Shutdown()

	fmt.Printf("Pool size: %d\n", pool.Size())
	fmt.Printf("Total submitted: %d\n", pool.TotalSubmitted())
	fmt.Printf("Total completed: %d\n", pool.TotalCompleted())

	// Output:
	// Pool size: 4
	// Total submitted: 8
	// Total completed: 8
}
