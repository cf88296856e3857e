// Package task defines the schedulable unit of the executor: a Periodic
// descriptor, its flattened HarmonicTaskList, the Async thread that drives
// one at a sub-base-period rate, and the Counter that instruments it.
package task

import (
	"github.com/google/uuid"
)

// Runnable is anything the scheduler can invoke once per tick.
type Runnable interface {
	Run() error
}

// RunnableFunc adapts a plain function to Runnable.
type RunnableFunc func() error

func (f RunnableFunc) Run() error { return f() }

// Monitor receives a timing Sample every tick of the Periodic it is
// registered on.
type Monitor func(Sample)

// Periodic is the descriptor of a schedulable unit: a name, a period, a
// realtime flag, a priority ("nice"), the work to run, and ordered
// before/after subtrees of finer- or coarser-grained Periodics.
//
// Every before/after child's period must be an integer multiple of this
// Periodic's period (deviation tolerance <= 1%); that invariant is checked
// by the executor at harmonic-tree build time, not here.
type Periodic struct {
	ID       uuid.UUID
	Name     string
	Period   float64 // seconds
	Realtime bool
	Nice     int // 0 == unassigned
	Runnable Runnable
	Before   []*Periodic
	After    []*Periodic
	Monitors []Monitor

	counter *Counter
}

// New constructs a Periodic. nice is left at 0 (unassigned); the executor's
// priority-assignment pass fills it in for realtime tasks.
func New(name string, period float64, realtime bool, r Runnable) *Periodic {
	return &Periodic{
		ID:       uuid.New(),
		Name:     name,
		Period:   period,
		Realtime: realtime,
		Runnable: r,
		counter:  NewCounter(period),
	}
}

// Counter returns the timing counter backing this Periodic. It is created by
// New with the configured period; once the Periodic has been wired into a
// harmonic tree, the executor ticks it from the Async thread or inline loop
// that drives it.
func (p *Periodic) Counter() *Counter {
	return p.counter
}

