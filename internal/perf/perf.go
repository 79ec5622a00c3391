// Package perf reads hardware performance counters for the calling thread.
package perf

import "errors"

// ErrUnsupported is returned where perf_event_open is not available.
var ErrUnsupported = errors.New("perf: hardware counters not supported on this platform")

// Event is a hardware counter.
type Event int

const (
	CacheReferences Event = iota
	CacheMisses
	BranchMisses
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case CacheReferences:
		return "cache-references"
	case CacheMisses:
		return "cache-misses"
	case BranchMisses:
		return "branch-misses"
	default:
		return "unknown"
	}
}

// Counts maps each opened event to its value.
type Counts map[Event]uint64
