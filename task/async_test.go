package task

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncRunsAtConfiguredPeriod(t *testing.T) {
	var ticks atomic.Int64
	list := NewHarmonicTaskList()
	list.Add(RunnableFunc(func() error {
		ticks.Add(1)
		return nil
	}))

	a := NewAsync(list, 0.005, false, 0)
	a.Start()
	time.Sleep(55 * time.Millisecond)
	a.Stop()
	a.Join()

	got := ticks.Load()
	if got < 5 || got > 15 {
		t.Errorf("expected roughly 10 ticks in 55ms at a 5ms period, got %d", got)
	}
}

func TestAsyncReadyCalledBeforeFirstTick(t *testing.T) {
	var readyCalled atomic.Bool
	var firstTick atomic.Bool

	list := NewHarmonicTaskList()
	list.Add(RunnableFunc(func() error {
		if !readyCalled.Load() {
			firstTick.Store(true)
		}
		return nil
	}))

	a := NewAsync(list, 0.01, false, 0)
	a.OnReady(func() { readyCalled.Store(true) })
	a.Start()
	time.Sleep(25 * time.Millisecond)
	a.Stop()
	a.Join()

	if !readyCalled.Load() {
		t.Fatal("ready callback was never invoked")
	}
	if firstTick.Load() {
		t.Error("a tick ran before the ready callback fired")
	}
}

func TestAsyncStopIsIdempotent(t *testing.T) {
	list := NewHarmonicTaskList()
	list.Add(RunnableFunc(func() error { return nil }))

	a := NewAsync(list, 0.005, false, 0)
	a.Start()
	time.Sleep(10 * time.Millisecond)

	a.Stop()
	a.Stop()
	a.Stop()
	a.Join()
}

func TestAsyncRecoversPanicAndContinues(t *testing.T) {
	var calls atomic.Int64
	var panics atomic.Int64

	list := NewHarmonicTaskList()
	list.Add(RunnableFunc(func() error {
		n := calls.Add(1)
		if n == 2 {
			panic("boom")
		}
		return nil
	}))

	a := NewAsync(list, 0.005, false, 0)
	a.OnPanic(func(r any) { panics.Add(1) })
	a.Start()
	time.Sleep(40 * time.Millisecond)
	a.Stop()
	a.Join()

	if panics.Load() != 1 {
		t.Errorf("expected exactly 1 recovered panic, got %d", panics.Load())
	}
	if calls.Load() < 3 {
		t.Errorf("loop should have continued ticking after the panic, got %d calls", calls.Load())
	}
}
