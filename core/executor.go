// Package core implements the scheduler: harmonic decomposition of a
// Periodic forest into one inline tick list and zero or more Async
// threads, priority assignment, external-clock synchronization, and the
// main run loop.
package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ferrodyne/rtcore/control"
	"github.com/ferrodyne/rtcore/logger"
	"github.com/ferrodyne/rtcore/task"
)

// MainTaskLike is the non-owning interface the executor drives once per
// base-period tick for a registered safety system, without importing the
// safety package (which in turn imports core.Error) -- the same
// interface-at-the-boundary shape the teacher uses to let its interpreter
// and persister collaborate without an import cycle.
type MainTaskLike interface {
	Run() error
}

type clockKind int

const (
	clockNone clockKind = iota
	clockSteady
	clockFieldbus
	clockPoll
	clockTopic
)

// Executor owns the Periodic forest, decomposes it into threads at Run
// time, and drives the inline portion plus an optional safety system from
// its own goroutine at the configured base period.
type Executor struct {
	mu sync.Mutex

	basePeriod float64
	periodSet  bool

	mainTask *task.Periodic
	tasks    []*task.Periodic
	safety   MainTaskLike

	clockKind  clockKind
	fieldbus   Fieldbus
	pollSrc    NanoClock
	pollPeriod time.Duration
	topicClock NanoClock
	topicQueue EventQueue

	log *logger.Logger

	running atomic.Bool
	threads []*task.Async
	inline  *task.HarmonicTaskList
	counter *task.Counter

	stopped chan struct{}
}

var (
	instanceOnce sync.Once
	instance     *Executor
)

// Instance returns the process-wide Executor singleton, constructing it on
// first use.
func Instance() *Executor {
	instanceOnce.Do(func() {
		instance = newExecutor()
	})
	return instance
}

// newExecutor builds an unregistered Executor. Unexported so tests can
// construct an isolated instance instead of sharing the process singleton.
func newExecutor() *Executor {
	return &Executor{
		log:     logger.Default().WithChannel("executor"),
		stopped: make(chan struct{}),
	}
}

// SetLogger overrides the executor's logger (the demo binary and tests wire
// their own configured Logger here instead of the bare default).
func (e *Executor) SetLogger(l *logger.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = l.WithChannel("executor")
}

// SetExecutorPeriod sets the base period in seconds. Every registered
// top-level Periodic's period must be a harmonic multiple of it.
func (e *Executor) SetExecutorPeriod(periodSec float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if periodSec <= 0 {
		return newErr(KindPeriodUnset, "executor period must be positive")
	}
	e.basePeriod = periodSec
	e.periodSet = true
	return nil
}

// Add registers a top-level Periodic task to be decomposed at Run time.
func (e *Executor) Add(t *task.Periodic) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.Period <= 0 {
		return newErr(KindPeriodUnset, "task '"+t.Name+"' has no period set")
	}
	e.tasks = append(e.tasks, t)
	return nil
}

// AddTimeDomain wraps a TimeDomain in a Periodic (named after the domain,
// inheriting its period and realtime flag) and registers it the same way
// Add does.
func (e *Executor) AddTimeDomain(d *control.TimeDomain) error {
	t := task.New(d.Name(), d.Period(), d.Realtime(), task.RunnableFunc(d.Run))
	return e.Add(t)
}

// SetMainTask designates the Periodic driven directly by the executor
// (typically the top of the before/after forest). Calling it twice fails
// with MainTaskAlreadySet.
func (e *Executor) SetMainTask(t *task.Periodic) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mainTask != nil {
		return newErr(KindMainTaskAlreadySet, "main task already set to '"+e.mainTask.Name+"'")
	}
	e.mainTask = t
	return e.addLocked(t)
}

func (e *Executor) addLocked(t *task.Periodic) error {
	if t.Period <= 0 {
		return newErr(KindPeriodUnset, "task '"+t.Name+"' has no period set")
	}
	e.tasks = append(e.tasks, t)
	return nil
}

// SetSafetySystem registers a safety system to be ticked once per base
// period, after the inline task list, so it evaluates transitions against
// the freshest base-period data instead of one-tick-stale outputs.
func (e *Executor) SetSafetySystem(s MainTaskLike) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.safety = s
	return nil
}

// SetFieldbus configures the fieldbus clock source. First external clock
// source configured wins; later calls are logged and ignored, per spec.
func (e *Executor) SetFieldbus(bus Fieldbus) {
	e.trySetExternalClock(clockFieldbus, func() {
		e.fieldbus = bus
	})
}

// SetPollClock configures the poll clock source.
func (e *Executor) SetPollClock(src NanoClock, period time.Duration) {
	e.trySetExternalClock(clockPoll, func() {
		e.pollSrc = src
		e.pollPeriod = period
	})
}

// SetTopicClock configures the topic clock source.
func (e *Executor) SetTopicClock(clock NanoClock, queue EventQueue) {
	e.trySetExternalClock(clockTopic, func() {
		e.topicClock = clock
		e.topicQueue = queue
	})
}

func (e *Executor) trySetExternalClock(kind clockKind, apply func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clockKind != clockNone {
		e.log.Error("external clock source already configured; ignoring second source",
			"configured", e.clockKind, "requested", kind)
		return
	}
	e.clockKind = kind
	apply()
}

func (k clockKind) String() string {
	switch k {
	case clockFieldbus:
		return "fieldbus"
	case clockPoll:
		return "poll"
	case clockTopic:
		return "topic"
	case clockSteady:
		return "steady"
	default:
		return "none"
	}
}

// Run assigns priorities, decomposes the registered Periodic forest,
// starts every Async thread, waits for them to reach their ready barrier,
// applies best-effort realtime scheduling to the calling goroutine's OS
// thread, selects the configured clock source, and drives the main loop
// until Stop is called.
func (e *Executor) Run() error {
	defer close(e.stopped)

	e.mu.Lock()
	if !e.periodSet {
		e.mu.Unlock()
		return newErr(KindPeriodUnset, "executor base period not set")
	}
	tasks := append([]*task.Periodic(nil), e.tasks...)
	basePeriod := e.basePeriod
	safety := e.safety
	e.mu.Unlock()

	assignPriorities(tasks)
	if err := checkPrioritiesAssigned(tasks); err != nil {
		return err
	}

	inline, threads, err := decompose(basePeriod, tasks)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.inline = inline
	e.threads = threads
	e.counter = task.NewCounter(basePeriod)
	e.mu.Unlock()

	var ready sync.WaitGroup
	ready.Add(len(threads))
	for _, a := range threads {
		a.OnReady(ready.Done)
		a.OnSetPriority(setRealtimePriority)
		a.OnPanic(func(r any) {
			e.log.Error("recovered panic in Async tick", "recovered", r)
		})
		a.OnError(func(err error) {
			e.log.Error("async task list failed", "error", err)
		})
		a.Start()
	}
	ready.Wait()

	e.running.Store(true)

	if err := setRealtimePriority(0); err != nil {
		e.log.Warn("realtime scheduling unavailable for main loop", "error", err)
	}
	if err := lockMemory(); err != nil {
		e.log.Warn("memory locking unavailable", "error", err)
	}
	prefaultStack()

	clock := e.selectClock(basePeriod)

	e.log.Info("executor starting", "basePeriod", basePeriod, "threads", len(threads), "clock", e.clockKindSnapshot())

	for e.running.Load() {
		clock.Wait()
		if !e.running.Load() {
			break
		}

		e.counter.Tick()
		if err := inline.Run(); err != nil {
			e.log.Error("inline task list failed", "error", err)
		}
		if safety != nil {
			if err := safety.Run(); err != nil {
				e.log.Error("safety system tick failed", "error", err)
			}
		}
		e.counter.Tock()
	}

	for _, a := range threads {
		a.Stop()
	}
	for _, a := range threads {
		a.Join()
	}

	e.log.Info("executor stopped")
	return nil
}

func (e *Executor) clockKindSnapshot() clockKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clockKind
}

func (e *Executor) selectClock(basePeriod float64) ClockSource {
	e.mu.Lock()
	defer e.mu.Unlock()
	period := time.Duration(basePeriod * float64(time.Second))
	switch e.clockKind {
	case clockFieldbus:
		return NewFieldbusClock(e.fieldbus)
	case clockPoll:
		return NewPollClock(e.pollSrc, e.pollPeriod)
	case clockTopic:
		return NewTopicClock(e.topicClock, e.topicQueue)
	default:
		return NewSteadyClock(period)
	}
}

// Stop requests the main loop and every Async thread to exit at the top of
// their next iteration. Idempotent; safe to call before Run returns.
func (e *Executor) Stop() {
	e.running.Store(false)
}

// Stopped returns a channel closed when Run returns: after all threads are
// joined, or straight away when Run fails at startup.
func (e *Executor) Stopped() <-chan struct{} {
	return e.stopped
}

// Counter returns the executor's own base-period timing counter, populated
// once Run has been called.
func (e *Executor) Counter() *task.Counter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter
}

// CounterSnapshot returns every registered task's name mapped to its
// current timing Stats, for telemetry.Server's CounterSource.
func (e *Executor) CounterSnapshot() map[string]task.Stats {
	e.mu.Lock()
	tasks := append([]*task.Periodic(nil), e.tasks...)
	e.mu.Unlock()

	out := make(map[string]task.Stats)
	traverse(tasks, func(t *task.Periodic) {
		out[t.Name] = t.Counter().Snapshot()
	})
	return out
}
