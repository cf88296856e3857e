package task

import (
	"testing"
	"time"
)

func TestCounterTickTock(t *testing.T) {
	c := NewCounter(0.01)

	c.Tick()
	time.Sleep(2 * time.Millisecond)
	sample := c.Tock()

	if sample.RunTime <= 0 {
		t.Errorf("expected positive run time, got %v", sample.RunTime)
	}
	if sample.Overrun {
		t.Errorf("2ms run against a 10ms period should not overrun")
	}

	stats := c.Snapshot()
	if stats.Ticks != 1 {
		t.Errorf("expected 1 tick, got %d", stats.Ticks)
	}
	if stats.MinRun != stats.MaxRun {
		t.Errorf("single sample should have equal min/max run, got min=%v max=%v", stats.MinRun, stats.MaxRun)
	}
}

func TestCounterOverrun(t *testing.T) {
	c := NewCounter(0.001)
	c.Tick()
	time.Sleep(5 * time.Millisecond)
	sample := c.Tock()

	if !sample.Overrun {
		t.Error("5ms run against a 1ms period should overrun")
	}
}

func TestCounterMonitorsNotified(t *testing.T) {
	c := NewCounter(0.001)
	var got Sample
	called := false
	c.AddMonitor(func(s Sample) {
		called = true
		got = s
	})

	c.Tick()
	c.Tock()

	if !called {
		t.Fatal("monitor was not invoked on Tock")
	}
	if got.TickTime.IsZero() {
		t.Error("sample handed to monitor should carry a non-zero tick time")
	}
}

func TestCounterMeanAcrossMultipleTicks(t *testing.T) {
	c := NewCounter(0.01)
	for i := 0; i < 3; i++ {
		c.Tick()
		time.Sleep(time.Millisecond)
		c.Tock()
	}
	stats := c.Snapshot()
	if stats.Ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", stats.Ticks)
	}
	if stats.MeanRun <= 0 {
		t.Errorf("expected positive mean run time, got %v", stats.MeanRun)
	}
}
