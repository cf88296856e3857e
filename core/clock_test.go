package core_test

import (
	"testing"
	"time"

	"github.com/ferrodyne/rtcore/core"
	"github.com/ferrodyne/rtcore/testutil"
)

func TestSteadyClockAdvancesByPeriod(t *testing.T) {
	clock := core.NewSteadyClock(5 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 5; i++ {
		clock.Wait()
	}
	elapsed := time.Since(start)
	if elapsed < 20*time.Millisecond {
		t.Errorf("5 waits of 5ms should take at least 20ms, took %v", elapsed)
	}
}

func TestPollClockWaitsForNanoClock(t *testing.T) {
	fake := &testutil.FakeNanoClock{}
	clock := core.NewPollClock(fake, 2*time.Millisecond)

	done := make(chan struct{})
	go func() {
		clock.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before the clock reached the next cycle")
	case <-time.After(10 * time.Millisecond):
	}

	fake.Advance(uint64(2 * time.Millisecond))

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Fatal("Wait did not return after the clock advanced past the next cycle")
	}
}

func TestTopicClockDrainsQueueAfterTimestampAdvances(t *testing.T) {
	fakeClock := &testutil.FakeNanoClock{}
	fakeQueue := &testutil.FakeEventQueue{}
	clock := core.NewTopicClock(fakeClock, fakeQueue)

	done := make(chan struct{})
	go func() {
		clock.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Wait returned before the timestamp advanced")
	default:
	}

	fakeClock.Advance(1)
	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Wait returned before an event was posted")
	default:
	}

	fakeQueue.Post()
	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Fatal("Wait did not return after an event was posted")
	}
	if fakeQueue.Calls() != 1 {
		t.Errorf("expected CallAvailable to be invoked once, got %d", fakeQueue.Calls())
	}
}

type fakeFieldbus struct {
	synced int
}

func (f *fakeFieldbus) Sync() { f.synced++ }

func TestFieldbusClockDelegatesToSync(t *testing.T) {
	bus := &fakeFieldbus{}
	clock := core.NewFieldbusClock(bus)
	clock.Wait()
	clock.Wait()
	if bus.synced != 2 {
		t.Errorf("expected 2 Sync calls, got %d", bus.synced)
	}
}
