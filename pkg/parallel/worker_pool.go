// Package parallel provides the bounded worker pool used to process the
// timesteps of one run concurrently.
package parallel

import (
	"fmt"
	"math"
	"sync"
)

// WorkerPool manages a fixed set of worker goroutines fed from a buffered
// task queue.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup // running workers
	pending   sync.WaitGroup // submitted, unfinished tasks
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	onPanic   func(recovered any)
}

// Option configures a WorkerPool.
type Option func(*WorkerPool)

// WithPanicHandler installs a handler called with the value of any panic a
// task raises. Without a handler panics are swallowed and the worker keeps
// running.
func WithPanicHandler(h func(recovered any)) Option {
	return func(wp *WorkerPool) {
		wp.onPanic = h
	}
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with specified number of workers.
// Non-positive counts mean one worker.
func NewWorkerPool(workers int, opts ...Option) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}
	for _, opt := range opts {
		opt(pool)
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

func (wp *WorkerPool) run(task func()) {
	defer wp.pending.Done()
	defer func() {
		if r := recover(); r != nil && wp.onPanic != nil {
			wp.onPanic(r)
		}
	}()
	task()
}

// Submit adds a task to the worker pool. It blocks while the queue is full
// and returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.pending.Add(1)
	wp.taskQueue <- task
	return true
}

// Drain blocks until every task submitted so far has finished. The pool
// stays open. Drain must not run concurrently with Submit.
func (wp *WorkerPool) Drain() {
	wp.pending.Wait()
}

// Close waits for queued tasks and shuts down the workers. Safe to call
// more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
