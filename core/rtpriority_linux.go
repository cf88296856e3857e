//go:build linux

package core

import "golang.org/x/sys/unix"

// setRealtimePriority switches the calling OS thread to SCHED_FIFO at the
// priority derived from nice (basePriority - nice), matching the platform
// binding the spec leaves unspecified beyond "a realtime scheduling class".
func setRealtimePriority(nice int) error {
	prio := basePriority - nice
	return unix.SchedSetAttr(0, &unix.SchedAttr{Policy: unix.SCHED_FIFO, Priority: uint32(prio)}, 0)
}

// lockMemory pins the process's current and future pages, avoiding page
// faults inside a realtime tick.
func lockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}

// prefaultStack touches a few pages of stack up front so the first realtime
// tick doesn't take a page fault growing the goroutine stack.
func prefaultStack() {
	var buf [8192]byte
	for i := range buf {
		buf[i] = 0
	}
	_ = buf
}
