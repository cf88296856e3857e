package core

import (
	"fmt"
	"math"

	"github.com/ferrodyne/rtcore/task"
)

// decompose computes, for every Periodic in nodes, the integer harmonic
// ratio k = round(period(t) / parentPeriod). k == 1 means t runs inline
// with its parent: its flattened before/self/after runnables are appended
// to the returned inline list as one entry that ticks and tocks t's own
// Counter around them. k > 1 means t becomes its own thread,
// sampled every k parent ticks; that thread (and any threads spawned by
// t's own before/after subtrees) is returned in threads instead.
//
// Grounded on the teacher's traverse/createThreads recursion (originally
// walking nested statechart regions; here walking the Periodic
// before/after forest), adapted to the spec's inline-vs-thread split
// instead of wrapping every node in a thread unconditionally.
func decompose(parentPeriod float64, nodes []*task.Periodic) (*task.HarmonicTaskList, []*task.Async, error) {
	list := task.NewHarmonicTaskList()
	var threads []*task.Async

	for _, t := range nodes {
		k := int(math.Round(t.Period / parentPeriod))
		if k < 1 {
			k = 1
		}
		actual := float64(k) * parentPeriod
		deviation := math.Abs(t.Period-actual) / t.Period
		if deviation > 0.01 {
			return nil, nil, wrapErr(KindPeriodDeviation, fmt.Sprintf(
				"task %q period %.6fs deviates %.2f%% from nearest harmonic multiple %.6fs (k=%d)",
				t.Name, t.Period, deviation*100, actual, k), nil)
		}
		t.Counter().SetPeriod(actual)
		for _, m := range t.Monitors {
			t.Counter().AddMonitor(m)
		}

		beforeList, beforeThreads, err := decompose(actual, t.Before)
		if err != nil {
			return nil, nil, err
		}
		afterList, afterThreads, err := decompose(actual, t.After)
		if err != nil {
			return nil, nil, err
		}

		own := task.NewHarmonicTaskList()
		own.AddAll(beforeList)
		if t.Runnable != nil {
			own.Add(t.Runnable)
		}
		own.AddAll(afterList)
		if own.Len() == 0 {
			return nil, nil, newErr(KindEmptyTaskList, fmt.Sprintf("periodic %q has no runnable and no children", t.Name))
		}

		// Priority assignment is checked once, up front, by
		// checkPrioritiesAssigned (called by Executor.Run before
		// decompose); by the time a node reaches thread creation here its
		// Nice is already valid.

		threads = append(threads, beforeThreads...)
		threads = append(threads, afterThreads...)

		if k == 1 {
			counter := t.Counter()
			list.Add(task.RunnableFunc(func() error {
				counter.Tick()
				err := own.Run()
				counter.Tock()
				return err
			}))
		} else {
			async := task.NewAsync(own, actual, t.Realtime, t.Nice)
			async.Counter = t.Counter()
			threads = append(threads, async)
		}
	}

	return list, threads, nil
}
