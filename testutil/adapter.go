// Package testutil provides helpers shared by the core/task/safety test
// suites: a RunAdapter that lets the same assertions run against either an
// inline HarmonicTaskList or a threaded Async, and a tiny deterministic
// NanoClock/EventQueue pair for exercising PollClock/TopicClock without
// real hardware.
//
// Grounded on the teacher's testutil/adapter.go, which let one test suite
// run against both the event-driven and tick-based runtimes; here the two
// variants are "runs inline, driven by the test" and "runs on its own
// Async thread", mirroring the k==1 vs k>1 split the scheduler itself
// makes.
package testutil

import (
	"time"

	"github.com/ferrodyne/rtcore/task"
)

// RunAdapter lets a test drive a HarmonicTaskList the same way regardless
// of whether the production code would run it inline or on its own thread.
type RunAdapter interface {
	Start()
	Stop()
	WaitForTicks(n uint64, timeout time.Duration) bool
	Counter() *task.Counter
}

// InlineAdapter runs the list synchronously, once per tick of the
// time.Ticker that Start's driving goroutine waits on -- it exists so tests
// can assert against the same Counter Tick/Tock bookkeeping a k==1 Periodic
// gets in production, without a task.Async thread.
type InlineAdapter struct {
	list    *task.HarmonicTaskList
	counter *task.Counter
	stop    chan struct{}
	done    chan struct{}
	period  time.Duration
}

// NewInlineAdapter creates an adapter that ticks list every period on its
// own goroutine (a test-only stand-in for the executor's main loop, not a
// production Async thread).
func NewInlineAdapter(list *task.HarmonicTaskList, periodSec float64) *InlineAdapter {
	return &InlineAdapter{
		list:    list,
		counter: task.NewCounter(periodSec),
		period:  time.Duration(periodSec * float64(time.Second)),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (a *InlineAdapter) Start() {
	go func() {
		defer close(a.done)
		t := time.NewTicker(a.period)
		defer t.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-t.C:
				a.counter.Tick()
				_ = a.list.Run()
				a.counter.Tock()
			}
		}
	}()
}

func (a *InlineAdapter) Stop() {
	close(a.stop)
	<-a.done
}

func (a *InlineAdapter) WaitForTicks(n uint64, timeout time.Duration) bool {
	return waitForTicks(a.counter, n, timeout)
}

func (a *InlineAdapter) Counter() *task.Counter { return a.counter }

// AsyncAdapter wraps a production task.Async, for tests that want to
// exercise the real threaded path (priority hook, ready barrier, Stop/Join
// semantics) rather than the simplified InlineAdapter loop.
type AsyncAdapter struct {
	async *task.Async
}

// NewAsyncAdapter wraps an already-constructed Async.
func NewAsyncAdapter(async *task.Async) *AsyncAdapter {
	return &AsyncAdapter{async: async}
}

func (a *AsyncAdapter) Start() { a.async.Start() }

func (a *AsyncAdapter) Stop() {
	a.async.Stop()
	a.async.Join()
}

func (a *AsyncAdapter) WaitForTicks(n uint64, timeout time.Duration) bool {
	return waitForTicks(a.async.Counter, n, timeout)
}

func (a *AsyncAdapter) Counter() *task.Counter { return a.async.Counter }

func waitForTicks(c *task.Counter, n uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.Snapshot().Ticks >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return c.Snapshot().Ticks >= n
}
