package concurrent_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalang/nova/concurrent"
	"github.com/novalang/nova/values"
)

// fakeWorker is a minimal concurrent.WorkerInterpreter: it runs fn directly
// against itself as the values.Host, mirroring what interp.Interpreter.RunTask
// does for a real per-worker clone, without pulling in package interp (which
// would create an import cycle back through invoke/class).
type fakeWorker struct {
	interrupted bool
}

func (w *fakeWorker) Interrupt() { w.interrupted = true }

func (w *fakeWorker) RunTask(fn func(host values.Host, interrupt func() bool) (*values.Value, error)) (*values.Value, error) {
	return fn(nil, func() bool { return w.interrupted })
}

func newScheduler(t *testing.T, maxConcurrent int64) *concurrent.Scheduler {
	t.Helper()
	return concurrent.NewScheduler(context.Background(), maxConcurrent, func(slot int) concurrent.WorkerInterpreter {
		return &fakeWorker{}
	})
}

func TestFutureLaunchAndGet(t *testing.T) {
	s := newScheduler(t, 4)
	f, err := s.Launch(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		return values.NewInt(42), nil
	})
	require.NoError(t, err)

	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.I)
	assert.True(t, f.IsCompleted())
}

func TestFutureGetWithTimeoutExpires(t *testing.T) {
	s := newScheduler(t, 4)
	started := make(chan struct{})
	release := make(chan struct{})
	f, err := s.Launch(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		close(started)
		<-release
		return values.Unit, nil
	})
	require.NoError(t, err)
	<-started

	_, err = f.GetWithTimeout(20 * time.Millisecond)
	require.Error(t, err)

	close(release)
	_, _ = f.Get()
}

func TestFutureCancelIsObservableInsideWork(t *testing.T) {
	s := newScheduler(t, 4)
	cancelSeen := make(chan bool, 1)
	started := make(chan struct{})
	f, err := s.Launch(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		close(started)
		for i := 0; i < 200; i++ {
			if interrupt() {
				cancelSeen <- true
				return values.Unit, nil
			}
			time.Sleep(time.Millisecond)
		}
		cancelSeen <- false
		return values.Unit, nil
	})
	require.NoError(t, err)
	<-started
	f.Cancel()

	assert.True(t, <-cancelSeen)
	assert.True(t, f.IsCancelled())
}

func TestSchedulerEnforcesMaxAsyncTasks(t *testing.T) {
	s := newScheduler(t, 1)
	started := make(chan struct{})
	block := make(chan struct{})

	_, err := s.Launch(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		close(started)
		<-block
		return values.Unit, nil
	})
	require.NoError(t, err)
	<-started

	_, err = s.Launch(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		return values.Unit, nil
	})
	require.Error(t, err)

	close(block)
}

func TestJobJoinReturnsCapturedError(t *testing.T) {
	s := newScheduler(t, 4)
	boom := assertableErr{"boom"}
	j, err := s.LaunchJob(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		return nil, boom
	})
	require.NoError(t, err)

	joinErr := j.Join()
	assert.Equal(t, boom, joinErr)
	assert.True(t, j.IsCompleted())
}

func TestJobCancelChildrenOnAbnormalExit(t *testing.T) {
	s := newScheduler(t, 4)

	parent, err := s.LaunchJob(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		return nil, assertableErr{"parent failed"}
	})
	require.NoError(t, err)

	childStarted := make(chan struct{})
	child, err := s.LaunchJob(func(host values.Host, interrupt func() bool) (*values.Value, error) {
		close(childStarted)
		for i := 0; i < 500; i++ {
			if interrupt() {
				return values.Unit, nil
			}
			time.Sleep(time.Millisecond)
		}
		return values.Unit, nil
	})
	require.NoError(t, err)
	parent.AddChild(child)

	<-childStarted
	require.Error(t, parent.Join())

	assert.Eventually(t, func() bool { return child.IsCancelled() }, time.Second, time.Millisecond)
}

type assertableErr struct{ msg string }

func (e assertableErr) Error() string { return e.msg }
