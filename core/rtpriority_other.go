//go:build !linux

package core

// setRealtimePriority is a no-op outside Linux. It returns nil, so the
// executor logs nothing about it and proceeds at default priority.
func setRealtimePriority(nice int) error { return nil }

// lockMemory is a no-op outside Linux.
func lockMemory() error { return nil }

// prefaultStack is a no-op outside Linux.
func prefaultStack() {}
