package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ferrodyne/rtcore/task"
)

func TestInlineAdapterCountsTicks(t *testing.T) {
	var ticks atomic.Int64
	list := task.NewHarmonicTaskList()
	list.Add(task.RunnableFunc(func() error { ticks.Add(1); return nil }))

	adapter := NewInlineAdapter(list, 0.002)
	adapter.Start()
	defer adapter.Stop()

	if !adapter.WaitForTicks(5, time.Second) {
		t.Fatalf("expected at least 5 ticks, counter reports %d", adapter.Counter().Snapshot().Ticks)
	}
	if ticks.Load() < 5 {
		t.Errorf("expected the underlying list to have run at least 5 times, ran %d", ticks.Load())
	}
}

func TestInlineAdapterStopIsSynchronous(t *testing.T) {
	list := task.NewHarmonicTaskList()
	list.Add(task.RunnableFunc(func() error { return nil }))
	adapter := NewInlineAdapter(list, 0.001)
	adapter.Start()
	adapter.WaitForTicks(1, time.Second)
	adapter.Stop()

	snap := adapter.Counter().Snapshot().Ticks
	time.Sleep(10 * time.Millisecond)
	if adapter.Counter().Snapshot().Ticks != snap {
		t.Error("ticking should have stopped once Stop returned")
	}
}

func TestAsyncAdapterWrapsRealAsync(t *testing.T) {
	var ticks atomic.Int64
	list := task.NewHarmonicTaskList()
	list.Add(task.RunnableFunc(func() error { ticks.Add(1); return nil }))
	async := task.NewAsync(list, 0.002, false, 0)

	adapter := NewAsyncAdapter(async)
	adapter.Start()
	defer adapter.Stop()

	if !adapter.WaitForTicks(3, time.Second) {
		t.Fatalf("expected at least 3 ticks, counter reports %d", adapter.Counter().Snapshot().Ticks)
	}
}
