package core

import "time"

// ClockSource drives the pacing of the executor's main loop. Wait blocks
// until the next cycle should begin; each implementation owns its own
// notion of "next cycle" internally, because the fieldbus and topic
// sources don't keep a local absolute-time target at all.
//
// Grounded on the teacher's TimerEventSource/ChannelEventSource
// poll-and-drain idiom, generalized to the four synchronization modes
// spec.md §4.4 names.
type ClockSource interface {
	Wait()
}

// SteadyClock is the default: next wake = previous wake + period, slept
// to with an absolute deadline so drift does not accumulate.
type SteadyClock struct {
	period      time.Duration
	next        time.Time
	initialized bool
}

// NewSteadyClock creates a SteadyClock for the given period.
func NewSteadyClock(period time.Duration) *SteadyClock {
	return &SteadyClock{period: period}
}

func (s *SteadyClock) Wait() {
	if !s.initialized {
		s.next = time.Now().Add(s.period)
		s.initialized = true
	}
	time.Sleep(time.Until(s.next))
	s.next = s.next.Add(s.period)
}

// Fieldbus is the external collaborator contract for a fieldbus master:
// Sync blocks until a new bus cycle is available.
type Fieldbus interface {
	Sync()
}

// FieldbusClock begins each iteration with a blocking call into the
// fieldbus master; there is no local sleep.
type FieldbusClock struct {
	bus Fieldbus
}

// NewFieldbusClock wraps a Fieldbus collaborator.
func NewFieldbusClock(bus Fieldbus) *FieldbusClock {
	return &FieldbusClock{bus: bus}
}

func (f *FieldbusClock) Wait() { f.bus.Sync() }

// NanoClock is the external collaborator contract for a time source that
// exposes a monotonically non-decreasing nanosecond counter.
type NanoClock interface {
	NowNsec() uint64
}

const pollInterval = 10 * time.Microsecond

// PollClock spin-waits in pollInterval increments until the external
// clock's nanosecond timestamp reaches the next cycle, then advances the
// next cycle by period (in nanoseconds).
type PollClock struct {
	src         NanoClock
	periodNsec  uint64
	nextNsec    uint64
	initialized bool
}

// NewPollClock wraps a NanoClock collaborator, polled at the given period.
func NewPollClock(src NanoClock, period time.Duration) *PollClock {
	return &PollClock{src: src, periodNsec: uint64(period.Nanoseconds())}
}

func (p *PollClock) Wait() {
	if !p.initialized {
		p.nextNsec = p.src.NowNsec() + p.periodNsec
		p.initialized = true
	}
	for p.src.NowNsec() < p.nextNsec {
		time.Sleep(pollInterval)
	}
	p.nextNsec += p.periodNsec
}

// EventQueue is the external collaborator contract for a topic-based event
// source: IsEmpty probes for a queued event, CallAvailable drains it.
type EventQueue interface {
	IsEmpty() bool
	CallAvailable()
}

// TopicClock spin-waits until a fresh external timestamp has been observed
// AND a queued event is available, drains the event queue, then ticks.
type TopicClock struct {
	clock       NanoClock
	queue       EventQueue
	lastNsec    uint64
	initialized bool
}

// NewTopicClock wraps a NanoClock + EventQueue pair.
func NewTopicClock(clock NanoClock, queue EventQueue) *TopicClock {
	return &TopicClock{clock: clock, queue: queue}
}

func (t *TopicClock) Wait() {
	for {
		cur := t.clock.NowNsec()
		if !t.initialized {
			t.lastNsec = cur
			t.initialized = true
		}
		if cur != t.lastNsec {
			t.lastNsec = cur
			break
		}
		time.Sleep(pollInterval)
	}
	for t.queue.IsEmpty() {
		time.Sleep(pollInterval)
	}
	t.queue.CallAvailable()
}
