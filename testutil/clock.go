package testutil

import "sync/atomic"

// FakeNanoClock is a manually-advanced NanoClock (see core.NanoClock), for
// deterministic PollClock/TopicClock tests that would otherwise depend on
// real wall-clock timing.
type FakeNanoClock struct {
	nsec atomic.Uint64
}

// NowNsec satisfies core.NanoClock.
func (c *FakeNanoClock) NowNsec() uint64 { return c.nsec.Load() }

// Advance moves the clock forward by delta nanoseconds.
func (c *FakeNanoClock) Advance(delta uint64) { c.nsec.Add(delta) }

// FakeEventQueue is a manually-filled EventQueue (see core.EventQueue), for
// deterministic TopicClock tests.
type FakeEventQueue struct {
	available atomic.Bool
	calls     atomic.Int64
}

// IsEmpty satisfies core.EventQueue.
func (q *FakeEventQueue) IsEmpty() bool { return !q.available.Load() }

// CallAvailable satisfies core.EventQueue.
func (q *FakeEventQueue) CallAvailable() {
	q.available.Store(false)
	q.calls.Add(1)
}

// Post makes the next IsEmpty() call report false.
func (q *FakeEventQueue) Post() { q.available.Store(true) }

// Calls reports how many times CallAvailable has drained an event.
func (q *FakeEventQueue) Calls() int64 { return q.calls.Load() }
