// Package telemetry provides the executor's optional long-run instrumentation:
// a BoltDB-backed archive of per-tick timing samples and an HTTP+WebSocket
// status server. The SQLite-backed safety audit log lives in package safety
// (see safety.SQLiteAuditLog).
package telemetry

import (
	"time"

	"github.com/asdine/storm/v3"

	"github.com/ferrodyne/rtcore/task"
)

// ArchivedSample is one tick's timing Sample, tagged with the name of the
// task it was measured on, durably stored for later analysis (jitter
// trends, overrun frequency) beyond what the in-memory Counter.Snapshot
// keeps.
type ArchivedSample struct {
	ID       int `storm:"id,increment"`
	TaskName string `storm:"index"`
	Period   time.Duration
	RunTime  time.Duration
	Jitter   time.Duration
	TickTime time.Time
	Overrun  bool
}

// Archive is a BoltDB-backed (via storm) append-only log of ArchivedSamples.
type Archive struct {
	db *storm.DB
}

// OpenArchive opens (or creates) the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database handle.
func (a *Archive) Close() error { return a.db.Close() }

// Monitor adapts Archive.record into a task.Monitor, so it can be
// registered directly on a Periodic/Counter via AddMonitor. A failed write
// is dropped: archiving never holds up a tick.
func (a *Archive) Monitor(taskName string) task.Monitor {
	return func(sample task.Sample) {
		_ = a.record(taskName, sample)
	}
}

func (a *Archive) record(taskName string, sample task.Sample) error {
	rec := ArchivedSample{
		TaskName: taskName,
		Period:   sample.Period,
		RunTime:  sample.RunTime,
		Jitter:   sample.Jitter,
		TickTime: sample.TickTime,
		Overrun:  sample.Overrun,
	}
	return a.db.Save(&rec)
}

// Recent returns the n most recently archived samples for taskName, newest
// first.
func (a *Archive) Recent(taskName string, n int) ([]ArchivedSample, error) {
	var out []ArchivedSample
	err := a.db.Find("TaskName", taskName, &out, storm.Limit(n), storm.Reverse())
	if err != nil && err != storm.ErrNotFound {
		return nil, err
	}
	return out, nil
}
