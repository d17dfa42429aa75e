// Package concurrent implements ConcurrencyCore (spec §4.8/§5): Future
// and Job handles on a bounded worker pool, per-worker child-interpreter
// isolation, and cancellation. The pool is built on golang.org/x/sync's
// errgroup and semaphore rather than a hand-rolled goroutine/WaitGroup
// pair (as the teacher's GoroutineManager does), since §4.8 asks for a
// hard concurrency bound the semaphore gives for free.
package concurrent

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// WorkerInterpreter is the narrow surface a worker needs from a per-
// thread child interpreter: running a unit of work and observing
// interruption. package interp's Interpreter satisfies this.
type WorkerInterpreter interface {
	RunTask(fn func(host values.Host, interrupt func() bool) (*values.Value, error)) (*values.Value, error)
	Interrupt()
}

// Scheduler owns the bounded worker pool and the global active-task
// counter (spec §5: "the only cross-worker shared mutable integer").
type Scheduler struct {
	sem *semaphore.Weighted
	eg  *errgroup.Group
	ctx context.Context

	activeTasks int64

	// cloneForWorker lazily creates (or returns a cached) per-worker
	// child interpreter keyed by worker slot (spec §4.8, §9).
	cloneForWorker func(slot int) WorkerInterpreter

	mu      sync.Mutex
	workers map[int]WorkerInterpreter
	nextSlot int

	maxTasks int64
}

// NewScheduler builds a Scheduler bounded at maxConcurrent tasks
// in-flight (the `max_async_tasks` policy limit, spec §6.2).
func NewScheduler(ctx context.Context, maxConcurrent int64, cloneForWorker func(slot int) WorkerInterpreter) *Scheduler {
	eg, egctx := errgroup.WithContext(ctx)
	return &Scheduler{
		sem:            semaphore.NewWeighted(maxConcurrent),
		eg:             eg,
		ctx:            egctx,
		cloneForWorker: cloneForWorker,
		workers:        make(map[int]WorkerInterpreter),
		maxTasks:       maxConcurrent,
	}
}

// ActiveTasks returns the global active-task counter's current value.
func (s *Scheduler) ActiveTasks() int64 { return atomic.LoadInt64(&s.activeTasks) }

func (s *Scheduler) acquireWorker() (int, WorkerInterpreter, func()) {
	s.mu.Lock()
	slot := s.nextSlot
	s.nextSlot++
	w, ok := s.workers[slot%runtimeWorkerCacheSize]
	if !ok {
		w = s.cloneForWorker(slot % runtimeWorkerCacheSize)
		s.workers[slot%runtimeWorkerCacheSize] = w
	}
	s.mu.Unlock()
	return slot, w, func() {}
}

// runtimeWorkerCacheSize bounds the per-worker interpreter cache; slots
// beyond this wrap around and reuse an existing child interpreter, since
// the semaphore already bounds true concurrency at maxTasks.
const runtimeWorkerCacheSize = 256

// submit increments the active-task counter (failing ResourceLimit if it
// would exceed the policy limit), acquires a semaphore slot, and runs fn
// against a per-worker child interpreter.
func (s *Scheduler) submit(fn func(w WorkerInterpreter) (*values.Value, error)) (<-chan result, error) {
	if s.maxTasks > 0 {
		current := atomic.AddInt64(&s.activeTasks, 1)
		if current > s.maxTasks {
			atomic.AddInt64(&s.activeTasks, -1)
			return nil, novaerr.New(novaerr.KindResourceLimit, "max_async_tasks (%d) exceeded", s.maxTasks)
		}
	} else {
		atomic.AddInt64(&s.activeTasks, 1)
	}

	ch := make(chan result, 1)
	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		atomic.AddInt64(&s.activeTasks, -1)
		return nil, novaerr.New(novaerr.KindInterrupted, "scheduler shutting down")
	}

	s.eg.Go(func() error {
		defer s.sem.Release(1)
		defer atomic.AddInt64(&s.activeTasks, -1)

		_, w, release := s.acquireWorker()
		defer release()

		v, err := fn(w)
		ch <- result{value: v, err: err}
		close(ch)
		return nil
	})

	return ch, nil
}

type result struct {
	value *values.Value
	err   error
}

// newTaskID mints a google/uuid identity for a Future/Job (spec §4.8's
// "debugging/log correlation").
func newTaskID() string { return uuid.NewString() }
