package concurrent

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// Future is the eagerly-submitted computation handle of spec §4.8.
type Future struct {
	ID string

	mu        sync.Mutex
	done      chan struct{}
	value     *values.Value
	err       error
	cancelled int32
}

// Launch submits work to run on the pool and returns a Future immediately
// (spec §4.8: "creation increments a global active-task counter"). work
// runs against the worker's own per-thread interpreter clone (the host
// argument), not the caller's (spec §4.8's "per-thread child interpreter
// clone"), and receives an interrupt-check closure it should consult at
// host-call boundaries.
func (s *Scheduler) Launch(work func(host values.Host, interrupt func() bool) (*values.Value, error)) (*Future, error) {
	f := &Future{ID: newTaskID(), done: make(chan struct{})}

	ch, err := s.submit(func(w WorkerInterpreter) (*values.Value, error) {
		interrupt := func() bool { return atomic.LoadInt32(&f.cancelled) != 0 }
		return w.RunTask(func(host values.Host, _ func() bool) (*values.Value, error) {
			return work(host, interrupt)
		})
	})
	if err != nil {
		return nil, err
	}

	go func() {
		r := <-ch
		f.mu.Lock()
		f.value, f.err = r.value, r.err
		f.mu.Unlock()
		close(f.done)
	}()

	return f, nil
}

// Get blocks until the future completes, returning its value or error.
// Repeated calls after completion are idempotent (spec §8.2).
func (f *Future) Get() (*values.Value, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// GetWithTimeout surfaces Timeout if the deadline passes before
// completion (spec §4.8).
func (f *Future) GetWithTimeout(d time.Duration) (*values.Value, error) {
	select {
	case <-f.done:
		return f.Get()
	case <-time.After(d):
		return nil, novaerr.New(novaerr.KindTimeout, "future %s did not complete within %s", f.ID, d)
	}
}

// Cancel requests cancellation. If the task has not started, it will not
// start (best-effort: only observed if the worker checks interrupt
// before starting real work); if running, cancellation is observed at
// the next host-call boundary (spec §5).
func (f *Future) Cancel() {
	atomic.StoreInt32(&f.cancelled, 1)
}

func (f *Future) IsCancelled() bool { return atomic.LoadInt32(&f.cancelled) != 0 }

func (f *Future) IsCompleted() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// AsValue wraps f as a values.Value of kind Future for storage in the
// ValueDomain.
func (f *Future) AsValue() *values.Value {
	return &values.Value{Kind: values.KindFuture, Ref: f}
}
