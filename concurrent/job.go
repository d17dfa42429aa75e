package concurrent

import (
	"sync"
	"sync/atomic"

	"github.com/novalang/nova/values"
)

// Job is the fire-and-forget structured-concurrency task handle of spec
// §4.8: same lifecycle as Future, but join() returns Unit and observers
// report isActive/isCompleted/isCancelled.
type Job struct {
	ID string

	mu        sync.Mutex
	done      chan struct{}
	err       error
	cancelled int32
	started   int32

	// children are Jobs launched from within this Job's body; when the
	// parent completes abnormally, un-joined children are cancelled
	// (spec §4.8's structured-concurrency requirement).
	children   []*Job
	childrenMu sync.Mutex
}

// LaunchJob starts a fire-and-forget Job on the pool. work runs against the
// worker's own per-thread interpreter clone (the host argument), not the
// caller's (spec §4.8's "per-thread child interpreter clone").
func (s *Scheduler) LaunchJob(work func(host values.Host, interrupt func() bool) (*values.Value, error)) (*Job, error) {
	j := &Job{ID: newTaskID(), done: make(chan struct{})}

	ch, err := s.submit(func(w WorkerInterpreter) (*values.Value, error) {
		atomic.StoreInt32(&j.started, 1)
		interrupt := func() bool { return atomic.LoadInt32(&j.cancelled) != 0 }
		return w.RunTask(func(host values.Host, _ func() bool) (*values.Value, error) {
			return work(host, interrupt)
		})
	})
	if err != nil {
		return nil, err
	}

	go func() {
		r := <-ch
		j.mu.Lock()
		j.err = r.err
		j.mu.Unlock()
		close(j.done)
		if r.err != nil {
			j.cancelChildren()
		}
	}()

	return j, nil
}

// Join blocks until completion and returns nil on success, or the
// captured error; the job.join native maps success to Unit.
func (j *Job) Join() error {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Job) Cancel() {
	atomic.StoreInt32(&j.cancelled, 1)
	j.cancelChildren()
}

func (j *Job) cancelChildren() {
	j.childrenMu.Lock()
	defer j.childrenMu.Unlock()
	for _, c := range j.children {
		if !c.IsCompleted() {
			c.Cancel()
		}
	}
}

// AddChild registers a Job launched from within j's body, so that if j
// exits abnormally its un-joined children are cancelled.
func (j *Job) AddChild(child *Job) {
	j.childrenMu.Lock()
	j.children = append(j.children, child)
	j.childrenMu.Unlock()
	if j.IsCompleted() && j.Join() != nil && !child.IsCompleted() {
		child.Cancel()
	}
}

func (j *Job) IsActive() bool {
	return atomic.LoadInt32(&j.started) != 0 && !j.IsCompleted()
}

func (j *Job) IsCompleted() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

func (j *Job) IsCancelled() bool { return atomic.LoadInt32(&j.cancelled) != 0 }

func (j *Job) AsValue() *values.Value {
	return &values.Value{Kind: values.KindJob, Ref: j}
}
