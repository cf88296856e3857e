package core

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ferrodyne/rtcore/task"
)

func TestSetExecutorPeriodRejectsNonPositive(t *testing.T) {
	e := newExecutor()
	if err := e.SetExecutorPeriod(0); !Is(err, KindPeriodUnset) {
		t.Fatalf("expected PeriodUnset, got %v", err)
	}
}

func TestSetMainTaskFailsOnSecondCall(t *testing.T) {
	e := newExecutor()
	a := task.New("a", 0.01, false, task.RunnableFunc(func() error { return nil }))
	b := task.New("b", 0.01, false, task.RunnableFunc(func() error { return nil }))

	if err := e.SetMainTask(a); err != nil {
		t.Fatalf("unexpected error on first SetMainTask: %v", err)
	}
	if err := e.SetMainTask(b); !Is(err, KindMainTaskAlreadySet) {
		t.Fatalf("expected MainTaskAlreadySet, got %v", err)
	}
}

func TestAddRejectsZeroPeriod(t *testing.T) {
	e := newExecutor()
	bad := task.New("bad", 0, false, task.RunnableFunc(func() error { return nil }))
	if err := e.Add(bad); !Is(err, KindPeriodUnset) {
		t.Fatalf("expected PeriodUnset, got %v", err)
	}
}

func TestExternalClockFirstSourceWins(t *testing.T) {
	e := newExecutor()
	e.SetFieldbus(&fakeFieldbusForExecutorTest{})
	e.SetPollClock(nil, time.Millisecond)

	if e.clockKind != clockFieldbus {
		t.Errorf("expected fieldbus to win as the first configured source, got %v", e.clockKind)
	}
}

type fakeFieldbusForExecutorTest struct{}

func (fakeFieldbusForExecutorTest) Sync() {}

func TestRunFailsFastOnPeriodDeviationBeforeAnyThreadStarts(t *testing.T) {
	e := newExecutor()
	if err := e.SetExecutorPeriod(0.01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := task.New("bad", 0.013, false, task.RunnableFunc(func() error { return nil }))
	if err := e.Add(bad); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := e.Run(); !Is(err, KindPeriodDeviation) {
		t.Fatalf("expected PeriodDeviation, got %v", err)
	}
	if len(e.threads) != 0 {
		t.Errorf("no thread should have been created for a rejected config, got %d", len(e.threads))
	}
}

func TestRunPureBaseLoopIncrementsCounterEachTick(t *testing.T) {
	e := newExecutor()
	if err := e.SetExecutorPeriod(0.002); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ticks atomic.Int64
	main := task.New("main", 0.002, false, task.RunnableFunc(func() error {
		ticks.Add(1)
		return nil
	}))
	if err := e.SetMainTask(main); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	time.Sleep(40 * time.Millisecond)
	e.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned an error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return within 1s of Stop")
	}

	if ticks.Load() < 5 {
		t.Errorf("expected at least 5 ticks in 40ms at a 2ms period, got %d", ticks.Load())
	}
}

func TestStopIsIdempotentAndJoinsAllThreads(t *testing.T) {
	e := newExecutor()
	if err := e.SetExecutorPeriod(0.002); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slow := task.New("slow", 0.008, false, task.RunnableFunc(func() error { return nil }))
	if err := e.Add(slow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run() }()
	time.Sleep(20 * time.Millisecond)

	e.Stop()
	e.Stop()
	e.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned an error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after repeated Stop calls")
	}
}
