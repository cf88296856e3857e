package core

import (
	"sort"

	"github.com/ferrodyne/rtcore/task"
)

// basePriority is the platform realtime priority given to nice == 0; a
// realtime thread's OS priority is basePriority - nice. It must stay high
// enough that basePriority - maxNice remains a valid realtime priority on
// the host scheduler (Linux SCHED_FIFO priorities run 1..99).
const basePriority = 90

// traverse visits every Periodic in the forest (the top-level tasks plus,
// recursively, all of their Before/After subtrees) in depth-first,
// before-self-after order, calling fn once per node.
func traverse(tasks []*task.Periodic, fn func(*task.Periodic)) {
	for _, t := range tasks {
		traverse(t.Before, fn)
		fn(t)
		traverse(t.After, fn)
	}
}

// assignPriorities collects every registered Periodic (including nested
// Before/After children), sorts them stably by realtime-first then
// ascending period, and assigns each realtime task a nice value equal to
// its 1-based rank among realtime tasks. Non-realtime tasks keep nice == 0.
func assignPriorities(tasks []*task.Periodic) {
	var all []*task.Periodic
	traverse(tasks, func(t *task.Periodic) {
		all = append(all, t)
	})

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Realtime != b.Realtime {
			return a.Realtime // realtime tasks sort first
		}
		return a.Period < b.Period
	})

	nice := 1
	for _, t := range all {
		if t.Realtime {
			t.Nice = nice
			nice++
		}
	}
}

// checkPrioritiesAssigned fails with PriorityUnset if any realtime task in
// the forest still has Nice == 0, which would only happen if
// assignPriorities was skipped.
func checkPrioritiesAssigned(tasks []*task.Periodic) error {
	var failure *task.Periodic
	traverse(tasks, func(t *task.Periodic) {
		if failure == nil && t.Realtime && t.Nice == 0 {
			failure = t
		}
	})
	if failure != nil {
		return newErr(KindPriorityUnset, "realtime task '"+failure.Name+"' reached thread creation with nice=0")
	}
	return nil
}
