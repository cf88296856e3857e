package task

import (
	"sync"
	"time"
)

// Sample is one tick/tock measurement handed to a Periodic's monitors.
type Sample struct {
	Period   time.Duration
	RunTime  time.Duration
	Jitter   time.Duration
	TickTime time.Time
	Overrun  bool
}

// Counter accumulates running timing statistics for one scheduled task:
// configured period plus min/max/mean run-time, max jitter and tick count.
// Thread-safe: Tick/Tock are called from the owning Async thread or the
// executor's inline loop, while Snapshot may be read concurrently by the
// telemetry server (via Executor.CounterSnapshot).
type Counter struct {
	mu sync.RWMutex

	period float64 // seconds, configured

	lastTick time.Time
	prevTick time.Time
	tickSet  bool

	ticks     uint64
	minRun    time.Duration
	maxRun    time.Duration
	sumRun    time.Duration
	maxJitter time.Duration

	monitors []Monitor
}

// NewCounter creates a Counter for a task with the given configured period
// in seconds.
func NewCounter(periodSec float64) *Counter {
	return &Counter{period: periodSec}
}

// SetPeriod updates the configured period (used once the executor resolves
// the actual harmonic period for a task).
func (c *Counter) SetPeriod(periodSec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.period = periodSec
}

// Tick records a wake time; the following Tock computes jitter from it and
// the previous wake.
func (c *Counter) Tick() {
	now := time.Now()
	c.mu.Lock()
	if c.tickSet {
		c.prevTick = c.lastTick
	} else {
		c.prevTick = now
		c.tickSet = true
	}
	c.lastTick = now
	c.mu.Unlock()
}

// Tock records the run time since the matching Tick, updates running
// statistics, and notifies monitors. overrun is true when the run time
// exceeded the configured period.
func (c *Counter) Tock() Sample {
	now := time.Now()

	c.mu.Lock()
	runTime := now.Sub(c.lastTick)
	var jitter time.Duration
	if c.ticks > 0 {
		expected := c.lastTick.Sub(c.prevTick)
		configured := time.Duration(c.period * float64(time.Second))
		jitter = expected - configured
		if jitter < 0 {
			jitter = -jitter
		}
		if jitter > c.maxJitter {
			c.maxJitter = jitter
		}
	}

	if c.ticks == 0 || runTime < c.minRun {
		c.minRun = runTime
	}
	if runTime > c.maxRun {
		c.maxRun = runTime
	}
	c.sumRun += runTime
	c.ticks++

	overrun := runTime > time.Duration(c.period*float64(time.Second))
	sample := Sample{
		Period:   time.Duration(c.period * float64(time.Second)),
		RunTime:  runTime,
		Jitter:   jitter,
		TickTime: c.lastTick,
		Overrun:  overrun,
	}
	monitors := append([]Monitor(nil), c.monitors...)
	c.mu.Unlock()

	for _, m := range monitors {
		m(sample)
	}
	return sample
}

// AddMonitor registers a callback invoked with a Sample on every Tock.
func (c *Counter) AddMonitor(m Monitor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monitors = append(c.monitors, m)
}

// Stats is a point-in-time snapshot of the running statistics.
type Stats struct {
	Period    float64
	Ticks     uint64
	MinRun    time.Duration
	MaxRun    time.Duration
	MeanRun   time.Duration
	MaxJitter time.Duration
}

// Snapshot returns the current running statistics.
func (c *Counter) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var mean time.Duration
	if c.ticks > 0 {
		mean = c.sumRun / time.Duration(c.ticks)
	}
	return Stats{
		Period:    c.period,
		Ticks:     c.ticks,
		MinRun:    c.minRun,
		MaxRun:    c.maxRun,
		MeanRun:   mean,
		MaxJitter: c.maxJitter,
	}
}
