package task

// HarmonicTaskList is an ordered list of Runnables executed together at one
// harmonic tick. It is used both inside an Async thread and inside the
// executor's own inline loop.
type HarmonicTaskList struct {
	tasks []Runnable
}

// NewHarmonicTaskList creates an empty list.
func NewHarmonicTaskList() *HarmonicTaskList {
	return &HarmonicTaskList{}
}

// Add appends a Runnable to the end of the list.
func (l *HarmonicTaskList) Add(r Runnable) {
	l.tasks = append(l.tasks, r)
}

// AddAll appends every runnable of other, in order, to l. A nil other is a
// no-op.
func (l *HarmonicTaskList) AddAll(other *HarmonicTaskList) {
	if other == nil {
		return
	}
	l.tasks = append(l.tasks, other.tasks...)
}

// Len reports how many runnables are in the list.
func (l *HarmonicTaskList) Len() int {
	return len(l.tasks)
}

// Run invokes every runnable in insertion order, stopping at (and
// returning) the first error.
func (l *HarmonicTaskList) Run() error {
	for _, t := range l.tasks {
		if err := t.Run(); err != nil {
			return err
		}
	}
	return nil
}
