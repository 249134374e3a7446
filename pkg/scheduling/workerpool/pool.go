package workerpool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gperrors "github.com/vnykmshr/gopar/pkg/common/errors"
	"github.com/vnykmshr/gopar/pkg/common/validation"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the outcome of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is the error returned by the task, or nil on success.
	// A recovered panic is reported here unless a PanicHandler is set.
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Pool manages a fixed set of worker goroutines draining an unbounded
// task queue. Submission never blocks; the queue grows as needed.
type Pool interface {
	// Submit adds a task to the pool for execution. It never blocks.
	// Returns an error if the task is nil or the pool is shut down.
	Submit(task Task) error

	// SubmitWithDone adds a task and arranges for done to be invoked
	// exactly once when the task finishes, whether it succeeded,
	// returned an error, or panicked. done runs on the worker
	// goroutine that executed the task, so it must not block.
	SubmitWithDone(task Task, done func(Result)) error

	// Shutdown initiates a graceful shutdown of the pool.
	// No new tasks are accepted, but queued tasks are completed.
	// Returns a channel that closes when shutdown is complete.
	// Subsequent calls return the same channel.
	Shutdown() <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks accepted by the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks that finished,
	// including tasks that returned errors or panicked.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// Name identifies the pool in log output. Optional.
	Name string

	// TaskTimeout is the default timeout for individual task execution.
	// Zero means no timeout.
	TaskTimeout time.Duration

	// Logger receives pool events. Defaults to slog.Default().
	Logger *slog.Logger

	// PanicHandler is called when a task panics during execution.
	// When set, the panic is considered handled and the task's Result
	// carries no error. If nil, the recovered value and stack trace
	// become the Result error and the panic is logged.
	PanicHandler func(task Task, recovered interface{})

	// OnWorkerStart is called when a worker starts.
	// Useful for per-worker initialization (e.g., database connections).
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	// Useful for per-worker cleanup.
	OnWorkerStop func(workerID int)

	// OnTaskStart is called before a task begins execution.
	OnTaskStart func(workerID int, task Task)

	// OnTaskComplete is called after every task finishes (success or
	// failure), after the per-submission done callback.
	OnTaskComplete func(workerID int, result Result)
}

// submission pairs a queued task with its completion callback, if any.
type submission struct {
	task Task
	done func(Result)
}

// workerPool implements the Pool interface.
type workerPool struct {
	config Config
	logger *slog.Logger

	// Queue state, guarded by mu. notEmpty wakes idle workers.
	mu       sync.Mutex
	notEmpty *sync.Cond
	queue    []submission
	shutdown bool

	stopped      chan struct{}
	shutdownOnce sync.Once

	// Counters, updated atomically.
	activeWorkers  int32
	totalSubmitted int64
	totalCompleted int64

	workerWg sync.WaitGroup
}

// worker represents a single worker in the pool.
type worker struct {
	id   int
	pool *workerPool
}

// New creates a new worker pool with the specified number of workers.
// It panics on invalid parameters; use NewSafe to get an error instead.
func New(workerCount int) Pool {
	pool, err := NewSafe(workerCount)
	if err != nil {
		panic(err)
	}
	return pool
}

// NewSafe creates a new worker pool with the specified number of workers,
// returning an error for invalid parameters.
func NewSafe(workerCount int) (Pool, error) {
	return NewWithConfigSafe(Config{WorkerCount: workerCount})
}

// NewWithConfig creates a new worker pool with the specified configuration.
// It panics on invalid configuration; use NewWithConfigSafe to get an
// error instead.
func NewWithConfig(config Config) Pool {
	pool, err := NewWithConfigSafe(config)
	if err != nil {
		panic(err)
	}
	return pool
}

// NewWithConfigSafe creates a new worker pool with the specified
// configuration, returning an error for invalid configuration.
func NewWithConfigSafe(config Config) (Pool, error) {
	if err := validation.ValidatePositive("workerpool", "workerCount", config.WorkerCount); err != nil {
		return nil, err
	}
	if config.TaskTimeout < 0 {
		return nil, gperrors.NewValidationError("workerpool", "taskTimeout", config.TaskTimeout, "cannot be negative").
			WithHint("use 0 to disable the task timeout")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Name != "" {
		logger = logger.With("pool", config.Name)
	}

	pool := &workerPool{
		config:  config,
		logger:  logger,
		stopped: make(chan struct{}),
	}
	pool.notEmpty = sync.NewCond(&pool.mu)

	// Create and start workers
	pool.workerWg.Add(config.WorkerCount)
	for i := 0; i < config.WorkerCount; i++ {
		w := &worker{id: i, pool: pool}
		go w.run()
	}

	return pool, nil
}
